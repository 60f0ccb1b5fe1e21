// Package cache provides a generic, size-bounded LRU cache.
//
// The signup service keeps one live form per visitor in it; when the cache is
// full the least recently active visitor's form is closed through the evict
// callback:
//
//	forms := cache.NewLRUCache[string, *formvalidator.Form](1024)
//	forms.SetEvictCallback(func(_ string, f *formvalidator.Form) {
//		_ = f.Close()
//	})
//
//	forms.Put(visitorID, form)
//	form, ok := forms.Get(visitorID)
package cache
