package ajax

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/liveform/pkg/formvalidator"
)

const (
	// FieldIDParam and FieldValueParam are the form keys of a confirmation request.
	FieldIDParam    = "field_id"
	FieldValueParam = "field_value"

	defaultCSRFCookie = "csrftoken"
	defaultCSRFHeader = "X-CSRFToken"
)

// Confirmer asks the page at a fixed URL whether a field value is in use. It
// posts field_id and field_value form-encoded and copies the anti-forgery token
// from the client's cookie jar into a header.
type Confirmer struct {
	client     *http.Client
	page       *url.URL
	cookieName string
	headerName string
}

var _ formvalidator.Confirmer = (*Confirmer)(nil)

// ConfirmerOption configures a Confirmer.
type ConfirmerOption func(*Confirmer)

// WithCSRF overrides the cookie holding the token and the header carrying it.
func WithCSRF(cookieName, headerName string) ConfirmerOption {
	return func(c *Confirmer) {
		if cookieName != "" {
			c.cookieName = cookieName
		}
		if headerName != "" {
			c.headerName = headerName
		}
	}
}

// NewConfirmer returns a confirmer posting to pageURL through client. The client
// should carry a cookie jar holding the page's cookies.
func NewConfirmer(client *http.Client, pageURL string, opts ...ConfirmerOption) (*Confirmer, error) {
	page, err := url.ParseRequestURI(pageURL)
	if err != nil {
		return nil, ErrInvalidTarget
	}
	if client == nil {
		client = http.DefaultClient
	}

	c := &Confirmer{
		client:     client,
		page:       page,
		cookieName: defaultCSRFCookie,
		headerName: defaultCSRFHeader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Confirm implements formvalidator.Confirmer. A non-2xx or empty response yields
// ErrNoConfirmation; an unexpected payload yields
// formvalidator.ErrMalformedResponse.
func (c *Confirmer) Confirm(ctx context.Context, fieldID, value string) (formvalidator.Confirmation, error) {
	form := url.Values{}
	form.Set(FieldIDParam, fieldID)
	form.Set(FieldValueParam, value)

	var (
		res      formvalidator.Confirmation
		answered bool
	)
	err := Request(ctx, c.client, http.MethodPost, c.page.String(), strings.NewReader(form.Encode()),
		func(body []byte) error {
			var err error
			res, err = formvalidator.DecodeConfirmation(body)
			answered = err == nil
			return err
		},
		WithHeader("Content-Type", "application/x-www-form-urlencoded"),
		WithHeader(c.headerName, c.csrfToken()),
	)
	if err != nil {
		return formvalidator.Confirmation{}, err
	}
	if !answered {
		return formvalidator.Confirmation{}, ErrNoConfirmation
	}
	return res, nil
}

func (c *Confirmer) csrfToken() string {
	if c.client.Jar == nil {
		return ""
	}
	for _, ck := range c.client.Jar.Cookies(c.page) {
		if ck.Name == c.cookieName {
			return ck.Value
		}
	}
	return ""
}
