// Package ajax issues the programmatic requests a live form makes back to its
// page: a generic request helper that only reports successful non-empty
// responses, and a formvalidator.Confirmer speaking the field confirmation
// protocol.
package ajax

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	// HeaderRequestedWith marks a request as programmatic.
	HeaderRequestedWith = "X-Requested-With"
	// RequestedWithXHR is the HeaderRequestedWith value.
	RequestedWithXHR = "XMLHttpRequest"

	maxBodySize = 64 * 1024
)

// IsAjax reports whether r was sent by a programmatic client.
func IsAjax(r *http.Request) bool {
	return r.Header.Get(HeaderRequestedWith) == RequestedWithXHR
}

type requestOptions struct {
	headers map[string]string
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithHeader sets a request header. Empty values are ignored.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if key != "" && value != "" {
			o.headers[key] = value
		}
	}
}

// Request sends method to target and calls onSuccess with the response body only
// when the status is 2xx and the body is not empty. Other responses are
// ignored. Errors come from building or sending the request, or from onSuccess.
func Request(ctx context.Context, client *http.Client, method, target string, body io.Reader, onSuccess func([]byte) error, opts ...RequestOption) error {
	if client == nil {
		client = http.DefaultClient
	}
	if _, err := url.ParseRequestURI(target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	options := &requestOptions{headers: map[string]string{
		HeaderRequestedWith: RequestedWithXHR,
	}}
	for _, opt := range opts {
		opt(options)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range options.headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(data) == 0 || onSuccess == nil {
		return nil
	}
	return onSuccess(data)
}
