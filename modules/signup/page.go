package signup

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/liveform/handler"
	"github.com/dmitrymomot/liveform/pkg/cookie"
	"github.com/dmitrymomot/liveform/pkg/csrf"
	"github.com/dmitrymomot/liveform/pkg/dom"
	"github.com/dmitrymomot/liveform/pkg/formvalidator"
	"github.com/dmitrymomot/liveform/pkg/logger"
)

const (
	pageID      = "signup-page"
	csrfInputID = "csrf-token"
	csrfSignal  = "data-signals-_csrf"
)

// showPage builds a fresh live form for the visitor, replacing any previous
// one, and renders it.
func (s *Service) showPage(ctx handler.Context, _ struct{}) handler.Response {
	w, r := ctx.ResponseWriter(), ctx.Request()

	visitor, err := s.visitor(r)
	if err != nil {
		visitor = uuid.NewString()
		if err := s.cookies.SetSigned(w, s.cfg.VisitorCookie, visitor,
			cookie.WithHTTPOnly(true),
			cookie.WithSameSite(http.SameSiteLaxMode),
		); err != nil {
			return handler.Error(err)
		}
	}

	form, err := s.newForm(csrf.TokenFromContext(r.Context()))
	if err != nil {
		return handler.Error(err)
	}
	if old, ok := s.forms.Put(visitor, form); ok && old != form {
		_ = old.Close()
	}
	s.logger.DebugContext(ctx, "live form created", logger.SessionID(visitor), logger.FormID(form.ID()))

	return handler.Templ(formView(form))
}

// newForm parses the page, stamps the anti-forgery token into it and binds the
// definition.
func (s *Service) newForm(token string) (*formvalidator.Form, error) {
	doc, err := dom.Parse(bytes.NewReader(s.page))
	if err != nil {
		return nil, fmt.Errorf("signup: parse page: %w", err)
	}

	if token != "" {
		if el := doc.ByID(csrfInputID); el != nil {
			el.SetAttr("value", token)
		}
		if el := doc.ByID(pageID); el != nil {
			el.SetAttr(csrfSignal, "'"+token+"'")
		}
	}

	opts := append([]formvalidator.Option{
		formvalidator.WithConfirmer(s.confirmer),
		formvalidator.WithLogger(s.logger),
	}, s.formOpts...)

	form, err := s.def.Build(doc, opts...)
	if err != nil {
		return nil, errors.Join(handler.ErrInternalServerError, err)
	}
	return form, nil
}

func (s *Service) welcome(_ handler.Context, _ struct{}) handler.Response {
	return handler.Templ(staticView(welcomePage))
}
