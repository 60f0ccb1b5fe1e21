package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
)

type statusResponse int

func (s statusResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(int(s))
	return nil
}

// Empty answers 204 No Content.
func Empty() Response { return statusResponse(http.StatusNoContent) }

// Status answers with code and no body.
func Status(code int) Response { return statusResponse(code) }

type redirectResponse string

// Render redirects through the event stream for DataStar requests and with a
// 303 otherwise.
func (u redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		return datastar.NewSSE(w, r).Redirect(string(u))
	}
	http.Redirect(w, r, string(u), http.StatusSeeOther)
	return nil
}

func Redirect(url string) Response { return redirectResponse(url) }

// TemplComponent is satisfied by templ.Component.
type TemplComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

type templResponse struct {
	component TemplComponent
	options   []TemplOption
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		return datastar.NewSSE(w, r).PatchElementTempl(t.component, t.options...)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.component.Render(r.Context(), w)
}

// Templ renders component as a page, or as an element patch for DataStar
// requests.
func Templ(component TemplComponent, opts ...TemplOption) Response {
	return templResponse{component: component, options: opts}
}
