package signup

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/liveform/handler"
	"github.com/dmitrymomot/liveform/pkg/binder"
	"github.com/dmitrymomot/liveform/pkg/dom"
	"github.com/dmitrymomot/liveform/pkg/formvalidator"
	"github.com/dmitrymomot/liveform/pkg/logger"
)

// Event kinds accepted by the events endpoint.
const (
	EventInput  = "input"
	EventChange = "change"
	EventClick  = "click"
)

// EventRequest is a browser event forwarded to the live form. Signals holds the
// page signal store, keyed by field id.
type EventRequest struct {
	Kind    string         `path:"kind"`
	Target  string         `path:"target"`
	Signals map[string]any `path:"-"`
}

func (r EventRequest) value() string {
	switch v := r.Signals[r.Target].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

var eventPathBinder = binder.Path(chi.URLParam)

func eventSignalsBinder(r *http.Request, v any) error {
	req, ok := v.(*EventRequest)
	if !ok {
		return binder.ErrInvalidSignals
	}
	if r.ContentLength == 0 {
		return binder.ErrBinderNotApplicable
	}
	if err := binder.Signals()(r, &req.Signals); err != nil {
		return errors.Join(handler.ErrBadRequest, err)
	}
	return nil
}

// event applies a browser event to the visitor's live form. DOM changes reach
// the page through the stream, so the response itself is empty. Events on
// elements the form does not track are ignored.
func (s *Service) event(ctx handler.Context, req EventRequest) handler.Response {
	form, visitor, err := s.form(ctx.Request())
	if err != nil {
		return handler.Error(errors.Join(handler.ErrGone, err))
	}

	switch req.Kind {
	case EventInput:
		_, err = form.Input(ctx, req.Target, req.value())
	case EventChange:
		_, err = form.Change(ctx, req.Target, req.value())
	case EventClick:
		_, err = form.Click(ctx, req.Target)
	default:
		return handler.Error(errors.Join(handler.ErrNotFound, fmt.Errorf("%w: %q", ErrUnknownEvent, req.Kind)))
	}

	switch {
	case err == nil:
		return handler.Empty()
	case errors.Is(err, formvalidator.ErrUnknownField), errors.Is(err, formvalidator.ErrUnknownTarget):
		s.logger.DebugContext(ctx, "event ignored",
			logger.SessionID(visitor),
			logger.Event(req.Kind),
			logger.ElementID(req.Target),
		)
		return handler.Empty()
	case errors.Is(err, formvalidator.ErrFormClosed):
		return handler.Error(errors.Join(handler.ErrGone, err))
	default:
		return handler.Error(err)
	}
}

// stream sends a snapshot of the visitor's live form, then every patch batch,
// until the client disconnects or the form is released. A subscriber dropped
// for falling behind is replaced by a fresh one, starting from a new snapshot.
func (s *Service) stream(ctx handler.Context, _ struct{}) handler.Response {
	form, visitor, err := s.form(ctx.Request())
	if err != nil {
		return handler.Error(errors.Join(handler.ErrGone, err))
	}

	return handler.SSE(func(stream handler.StreamContext) error {
		s.logger.DebugContext(stream, "patch stream opened", logger.SessionID(visitor))
		defer s.logger.DebugContext(stream, "patch stream closed", logger.SessionID(visitor))

		for stream.Err() == nil && !form.Closed() {
			if err := s.forward(stream, form); err != nil {
				return err
			}
		}
		return nil
	})
}

// forward runs one subscription: the snapshot first, then batches until the
// subscriber is released.
func (s *Service) forward(stream handler.StreamContext, form *formvalidator.Form) error {
	sub, snapshot := form.Subscribe(stream)
	defer sub.Close()

	if err := sendPatches(stream, snapshot); err != nil {
		return err
	}
	for msg := range sub.Receive(stream) {
		if err := sendPatches(stream, msg.Data); err != nil {
			return err
		}
	}
	return nil
}

func sendPatches(stream handler.StreamContext, patches []dom.Patch) error {
	for _, p := range patches {
		if err := stream.SendElements(p.HTML); err != nil {
			return err
		}
	}
	return nil
}
