package handler

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/starfederation/datastar-go/datastar"
)

// StreamContext is the Context of a long-lived DataStar event stream.
type StreamContext interface {
	Context

	// SendElements patches pre-rendered HTML. Without a target, elements are
	// morphed into the page by their id.
	SendElements(html string, opts ...TemplOption) error
	SendComponent(component TemplComponent, opts ...TemplOption) error
	SendSignals(signals map[string]any) error
}

// SSEHandler runs until the stream should end. The stream also ends when
// the client goes away, which cancels the StreamContext.
type SSEHandler func(stream StreamContext) error

type sseResponse SSEHandler

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return ErrNotDataStar
	}
	return s(&streamContext{
		Context: NewContext(w, r),
		sse:     datastar.NewSSE(w, r),
	})
}

// SSE opens an event stream and hands it to fn.
func SSE(fn SSEHandler) Response { return sseResponse(fn) }

type streamContext struct {
	Context
	sse *datastar.ServerSentEventGenerator
}

func (c *streamContext) SendElements(html string, opts ...TemplOption) error {
	return c.sse.PatchElements(html, opts...)
}

func (c *streamContext) SendComponent(component TemplComponent, opts ...TemplOption) error {
	return c.sse.PatchElementTempl(component, opts...)
}

func (c *streamContext) SendSignals(signals map[string]any) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return c.sse.PatchSignals(data)
}
