package formvalidator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmitrymomot/liveform/pkg/async"
	"github.com/dmitrymomot/liveform/pkg/logger"
)

// Mode selects which server answer fails a remote check.
type Mode string

const (
	// ModeExists fails when the value is already in use.
	ModeExists Mode = "exists"
	// ModeNotExists fails when the value is not in use.
	ModeNotExists Mode = "not-exists"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExists, ModeNotExists:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// RemoteCheck configures server confirmation for a field.
type RemoteCheck struct {
	Mode             Mode
	ExistsMessage    string
	NotExistsMessage string
}

// Outcome maps a server answer to the failure message, or ok when the field is
// valid.
func (c RemoteCheck) Outcome(res Confirmation) (message string, ok bool) {
	switch c.Mode {
	case ModeExists:
		if res.ValueInUse {
			return c.ExistsMessage, false
		}
	case ModeNotExists:
		if !res.ValueInUse {
			return c.NotExistsMessage, false
		}
	}
	return "", true
}

// Confirmation is the server answer to a remote check.
type Confirmation struct {
	ValueInUse bool `json:"value_in_use"`
}

// DecodeConfirmation parses a confirmation response body. A body without a
// boolean value_in_use key is malformed.
func DecodeConfirmation(data []byte) (Confirmation, error) {
	var raw struct {
		ValueInUse *bool `json:"value_in_use"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Confirmation{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if raw.ValueInUse == nil {
		return Confirmation{}, fmt.Errorf("%w: missing value_in_use", ErrMalformedResponse)
	}
	return Confirmation{ValueInUse: *raw.ValueInUse}, nil
}

// Confirmer asks the server whether a field value is already in use.
type Confirmer interface {
	Confirm(ctx context.Context, fieldID, value string) (Confirmation, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, fieldID, value string) (Confirmation, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, fieldID, value string) (Confirmation, error) {
	return f(ctx, fieldID, value)
}

type confirmRequest struct {
	fieldID string
	value   string
}

type pendingCheck struct {
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// RemoteChecker debounces confirmation requests per field. Each schedule bumps the
// field's sequence number; a response is applied only while its sequence number
// is still current, so a late answer to an older value is discarded.
type RemoteChecker struct {
	confirmer Confirmer
	debounce  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	dispatch  func(func())

	mu      sync.Mutex
	pending map[string]*pendingCheck
	seq     map[string]uint64
	stopped bool
	wg      sync.WaitGroup
}

// NewRemoteChecker creates a checker. dispatch runs result callbacks; the form
// passes a function that serializes them with user events.
func NewRemoteChecker(confirmer Confirmer, debounce, timeout time.Duration, log *slog.Logger, dispatch func(func())) *RemoteChecker {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RemoteChecker{
		confirmer: confirmer,
		debounce:  debounce,
		timeout:   timeout,
		logger:    log,
		dispatch:  dispatch,
		pending:   make(map[string]*pendingCheck),
		seq:       make(map[string]uint64),
	}
}

// Schedule cancels any pending check for fieldID and arms a new one that sends
// value after the debounce delay. apply receives the server answer.
func (c *RemoteChecker) Schedule(fieldID, value string, apply func(Confirmation)) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return 0
	}

	c.cancelLocked(fieldID)
	seq := c.seq[fieldID]
	p := &pendingCheck{seq: seq}
	p.timer = time.AfterFunc(c.debounce, func() {
		c.fire(confirmRequest{fieldID: fieldID, value: value}, seq, apply)
	})
	c.pending[fieldID] = p
	return seq
}

// Cancel drops any pending or in-flight check for fieldID.
func (c *RemoteChecker) Cancel(fieldID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(fieldID)
}

// Pending reports whether fieldID has a check that has not resolved yet.
func (c *RemoteChecker) Pending(fieldID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[fieldID]
	return ok
}

// Stop cancels every pending check and waits for in-flight requests to return.
// Results arriving after Stop are discarded.
func (c *RemoteChecker) Stop() {
	c.mu.Lock()
	c.stopped = true
	for id := range c.pending {
		c.cancelLocked(id)
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *RemoteChecker) cancelLocked(fieldID string) {
	c.seq[fieldID]++
	p, ok := c.pending[fieldID]
	if !ok {
		return
	}
	p.timer.Stop()
	if p.cancel != nil {
		p.cancel()
	}
	delete(c.pending, fieldID)
}

func (c *RemoteChecker) fire(req confirmRequest, seq uint64, apply func(Confirmation)) {
	c.mu.Lock()
	p, ok := c.pending[req.fieldID]
	if c.stopped || !ok || p.seq != seq {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	p.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	defer c.wg.Done()
	defer cancel()

	c.logger.Debug("sending confirmation request",
		logger.FieldID(req.fieldID),
		logger.Sequence(seq),
	)

	started := time.Now()
	res, err := async.Async(ctx, req, func(ctx context.Context, r confirmRequest) (Confirmation, error) {
		return c.confirmer.Confirm(ctx, r.fieldID, r.value)
	}).AwaitContext(ctx)

	c.dispatch(func() {
		c.resolve(req.fieldID, seq, res, err, time.Since(started), apply)
	})
}

func (c *RemoteChecker) resolve(fieldID string, seq uint64, res Confirmation, err error, took time.Duration, apply func(Confirmation)) {
	c.mu.Lock()
	current := !c.stopped && c.seq[fieldID] == seq
	if current {
		delete(c.pending, fieldID)
	}
	c.mu.Unlock()

	if !current {
		c.logger.Debug("discarding stale confirmation",
			logger.FieldID(fieldID),
			logger.Sequence(seq),
		)
		return
	}

	if err != nil {
		// Failed checks leave the field's validity unchanged.
		c.logger.Warn("confirmation request failed",
			logger.FieldID(fieldID),
			logger.Sequence(seq),
			logger.Duration(took),
			logger.Error(err),
		)
		return
	}

	apply(res)
}
