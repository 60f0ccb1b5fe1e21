package signup

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/liveform/handler"
	"github.com/dmitrymomot/liveform/pkg/formvalidator"
)

const toastContainerID = "toast-container"

// formView renders the whole page holding form.
func formView(form *formvalidator.Form) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return form.Render(w)
	})
}

func staticView(page []byte) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := w.Write(page)
		return err
	})
}

// statusPage renders an HTML page with a status other than 200.
type statusPage struct {
	component templ.Component
	status    int
}

func (p statusPage) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(p.status)
	return p.component.Render(r.Context(), w)
}

// toastView shows a failed event request on the page.
func toastView(p handler.ErrorToastParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="toast toast-%s" role="alert">%s</div>`,
			html.EscapeString(p.Type), html.EscapeString(p.Message))
		return err
	})
}
