// Package dom provides a small mutable element model on top of golang.org/x/net/html.
//
// A Document is parsed once from the rendered page and then mutated by server-side
// widgets (validators, popups, submit controls). Every mutation marks the touched
// element dirty; TakeDirty collapses the dirty set into id-addressed patches that can
// be streamed to the browser, for example as Datastar element patches.
//
// Basic usage:
//
//	doc, err := dom.ParseString(page)
//	if err != nil {
//		return err
//	}
//	form := doc.Form("signup")
//	email := form.Find("email")
//	email.AddClass("error")
//
//	for _, p := range doc.TakeDirty() {
//		sse.PatchElements(p.HTML)
//	}
//
// Document is not safe for concurrent use; callers serialize access.
package dom
