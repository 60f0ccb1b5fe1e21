package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/liveform/handler"
	"github.com/dmitrymomot/liveform/pkg/ajax"
	"github.com/dmitrymomot/liveform/pkg/binder"
	"github.com/dmitrymomot/liveform/pkg/logger"
	"github.com/dmitrymomot/liveform/pkg/uniqueness"
	"github.com/dmitrymomot/liveform/pkg/validator"
)

// SubmitRequest is the final form submission, posted as form data by the
// page or as JSON by API clients.
type SubmitRequest struct {
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Email2    string `form:"email2" json:"email2"`
	Password  string `form:"password" json:"password"`
	Password2 string `form:"password2" json:"password2"`
}

func (r SubmitRequest) values() map[string]string {
	return map[string]string{
		"username":  r.Username,
		"email":     r.Email,
		"email2":    r.Email2,
		"password":  r.Password,
		"password2": r.Password2,
	}
}

var (
	formBinder = binder.Form()
	jsonBinder = binder.JSON()
)

func submitBinder(r *http.Request, v any) error {
	if isJSON(r) {
		return jsonBinder(r, v)
	}
	return formBinder(r, v)
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// submit revalidates the values with the live form rules, confirms uniqueness
// against the store and creates the account.
func (s *Service) submit(ctx handler.Context, req SubmitRequest) handler.Response {
	r := ctx.Request()
	isAjax := ajax.IsAjax(r) || isJSON(r)
	values := req.values()

	checkCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()

	err := s.def.ValidateValues(checkCtx, values, uniqueness.NewStoreConfirmer(s.store))
	var ruleErrs validator.ValidationErrors
	switch {
	case errors.As(err, &ruleErrs):
		return s.rejected(ctx, values, handler.ValidationErrorFrom(ruleErrs), isAjax)
	case err != nil:
		return handler.Error(err)
	}

	account, err := s.register(ctx, req)
	switch {
	case errors.Is(err, ErrAccountExists):
		if isAjax {
			return handler.JSONError(errors.Join(handler.ErrConflict, err))
		}
		return handler.Error(errors.Join(handler.ErrConflict, err))
	case err != nil:
		return handler.Error(err)
	}

	if visitor, err := s.visitor(r); err == nil {
		s.release(visitor)
	}
	s.logger.InfoContext(ctx, "account created",
		logger.Event("signup"),
		slog.String("account_id", account.ID.String()),
	)

	if isAjax {
		return handler.JSON(map[string]string{
			"id":       account.ID.String(),
			"redirect": s.cfg.WelcomePath,
		}, handler.WithJSONStatus(http.StatusCreated))
	}
	return handler.Redirect(s.cfg.WelcomePath)
}

// rejected answers a failed submission. Page submissions get the live form back
// with the submitted values applied so every message is shown in place.
func (s *Service) rejected(ctx handler.Context, values map[string]string, verr handler.ValidationError, isAjax bool) handler.Response {
	if isAjax {
		return handler.JSONError(verr)
	}

	form, _, err := s.form(ctx.Request())
	if err != nil {
		return handler.Error(verr)
	}
	for _, fd := range s.def.Fields {
		if _, err := form.Input(ctx, fd.ID, values[fd.ID]); err != nil {
			return handler.Error(errors.Join(verr, err))
		}
	}
	return statusPage{component: formView(form), status: http.StatusUnprocessableEntity}
}

func (s *Service) register(ctx context.Context, req SubmitRequest) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return Account{}, fmt.Errorf("signup: hash password: %w", err)
	}

	a := Account{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return Account{}, err
	}

	// Stores backed by the accounts table see the new row already.
	if adder, ok := s.store.(uniqueness.Adder); ok {
		for field, value := range map[string]string{"username": a.Username, "email": a.Email} {
			if err := adder.Add(ctx, field, value); err != nil {
				s.logger.WarnContext(ctx, "recording taken value failed", logger.FieldID(field), logger.Error(err))
			}
		}
	}
	return a, nil
}
