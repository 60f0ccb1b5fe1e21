package formvalidator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/liveform/pkg/broadcast"
	"github.com/dmitrymomot/liveform/pkg/dom"
	"github.com/dmitrymomot/liveform/pkg/logger"
)

// Validatable is anything the aggregator can poll for validity.
type Validatable interface {
	ID() string
	Valid() bool
}

type fieldHandler interface {
	Validatable
	binding() *Binding
	onInput()
	onChange()
}

// Form owns the validators of one form element of a document. Every event, timer
// result and mutation runs under a single lock, so validators never observe each
// other mid-update. DOM changes made while handling an event are returned as
// patches and published to subscribers.
type Form struct {
	mu          sync.Mutex
	doc         *dom.Document
	el          *dom.Element
	id          string
	display     Display
	messages    Messages
	confirmer   Confirmer
	cfg         Config
	logger      *slog.Logger
	patches     broadcast.Broadcaster[[]dom.Patch]
	remote      *RemoteChecker
	fields      map[string]fieldHandler
	order       []fieldHandler
	clicks      map[string]func()
	aggregators []*Aggregator
	syncIDs     []string
	closed      bool
}

// Option configures a Form.
type Option func(*Form)

// WithDisplay replaces the default DOM display.
func WithDisplay(d Display) Option {
	return func(f *Form) { f.display = d }
}

// WithMessages sets the message strategy. English is the default.
func WithMessages(m Messages) Option {
	return func(f *Form) { f.messages = m }
}

// WithConfirmer sets the client used by remote checks.
func WithConfirmer(c Confirmer) Option {
	return func(f *Form) { f.confirmer = c }
}

// WithConfig applies loaded engine settings.
func WithConfig(cfg Config) Option {
	return func(f *Form) {
		if cfg.Debounce > 0 {
			f.cfg.Debounce = cfg.Debounce
		}
		if cfg.ConfirmTimeout > 0 {
			f.cfg.ConfirmTimeout = cfg.ConfirmTimeout
		}
		if cfg.PatchBuffer > 0 {
			f.cfg.PatchBuffer = cfg.PatchBuffer
		}
	}
}

// WithDebounce overrides the quiet period before a confirmation request.
func WithDebounce(d time.Duration) Option {
	return func(f *Form) { f.cfg.Debounce = d }
}

// WithConfirmTimeout bounds each confirmation request.
func WithConfirmTimeout(d time.Duration) Option {
	return func(f *Form) { f.cfg.ConfirmTimeout = d }
}

// WithLogger sets the logger. Log output is discarded otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) { f.logger = l }
}

// WithBroadcaster publishes patches through b instead of a private in-memory
// broadcaster.
func WithBroadcaster(b broadcast.Broadcaster[[]dom.Patch]) Option {
	return func(f *Form) { f.patches = b }
}

// WithSnapshotIDs adds elements outside the form, such as a popup container,
// to the snapshot sent to new subscribers. Missing elements are skipped.
func WithSnapshotIDs(ids ...string) Option {
	return func(f *Form) { f.syncIDs = append(f.syncIDs, ids...) }
}

// NewForm binds the form element with id formID.
func NewForm(doc *dom.Document, formID string, opts ...Option) (*Form, error) {
	el := doc.Form(formID)
	if el == nil {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, formID)
	}

	f := &Form{
		doc:      doc,
		el:       el,
		id:       formID,
		messages: EnglishMessages{},
		cfg: Config{
			Debounce:       DefaultDebounce,
			ConfirmTimeout: DefaultConfirmTimeout,
			PatchBuffer:    DefaultPatchBuffer,
		},
		fields: make(map[string]fieldHandler),
		clicks: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.display == nil {
		f.display = NewDOMDisplay()
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	f.logger = f.logger.With(logger.Component("formvalidator"), logger.FormID(formID))
	if f.patches == nil {
		f.patches = broadcast.NewMemoryBroadcaster[[]dom.Patch](f.cfg.PatchBuffer)
	}
	if f.confirmer != nil {
		f.remote = NewRemoteChecker(f.confirmer, f.cfg.Debounce, f.cfg.ConfirmTimeout, f.logger, f.dispatch)
	}

	return f, nil
}

// ID returns the form element id.
func (f *Form) ID() string { return f.id }

// Field registers a validator for fieldID. When the field already holds a value
// it is validated immediately.
func (f *Form) Field(fieldID string, subject Subject, rules Rules, opts ...FieldOption) (*FieldValidator, error) {
	var fv *FieldValidator
	_, err := f.exec(func() error {
		if _, ok := f.fields[fieldID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateField, fieldID)
		}
		b, err := Bind(f.el, fieldID)
		if err != nil {
			return err
		}

		fv = &FieldValidator{form: f, bind: b, subject: subject, rules: rules}
		for _, opt := range opts {
			opt(fv)
		}
		if fv.remote != nil {
			if f.remote == nil {
				return fmt.Errorf("%w: %q", ErrNoConfirmer, fieldID)
			}
			if _, err := ParseMode(string(fv.remote.Mode)); err != nil {
				return err
			}
		}
		if fv.help != nil {
			fv.helpLinkID = f.doc.UniqueID(fieldID + "-help")
			f.clicks[fv.helpLinkID] = fv.help.Toggle
		}

		f.register(fieldID, fv)
		if b.Value() != "" {
			fv.validate()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fv, nil
}

// Confirmation registers a validator for fieldID whose value must equal the value
// of the already registered field primaryID.
func (f *Form) Confirmation(fieldID string, subject Subject, primaryID string) (*ConfirmationFieldValidator, error) {
	var cv *ConfirmationFieldValidator
	_, err := f.exec(func() error {
		if _, ok := f.fields[fieldID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateField, fieldID)
		}
		primary, ok := f.fields[primaryID].(*FieldValidator)
		if !ok {
			return fmt.Errorf("%w: primary %q", ErrUnknownField, primaryID)
		}
		b, err := Bind(f.el, fieldID)
		if err != nil {
			return err
		}

		cv = newConfirmationFieldValidator(f, b, subject, primary)
		f.register(fieldID, cv)
		if b.Value() != "" {
			cv.validate()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cv, nil
}

// Attach disables the submit control until every listed field is valid. The
// state is computed once immediately and again after every event.
func (f *Form) Attach(submitID string, fieldIDs ...string) (*Aggregator, error) {
	var agg *Aggregator
	_, err := f.exec(func() error {
		submit := f.el.Find(submitID)
		if submit == nil {
			return fmt.Errorf("%w: %q", ErrSubmitNotFound, submitID)
		}
		fields := make([]Validatable, 0, len(fieldIDs))
		for _, id := range fieldIDs {
			h, ok := f.fields[id]
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownField, id)
			}
			fields = append(fields, h)
		}
		agg = NewAggregator(submit, fields...)
		f.aggregators = append(f.aggregators, agg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// OnClick binds fn to clicks on elementID.
func (f *Form) OnClick(elementID string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks[elementID] = fn
}

// Input records value as the current content of fieldID and handles an input
// event on it.
func (f *Form) Input(ctx context.Context, fieldID, value string) ([]dom.Patch, error) {
	return f.event(ctx, "input", fieldID, value, fieldHandler.onInput)
}

// Change handles a change event on fieldID.
func (f *Form) Change(ctx context.Context, fieldID, value string) ([]dom.Patch, error) {
	return f.event(ctx, "change", fieldID, value, fieldHandler.onChange)
}

// Click runs the action bound to elementID, such as toggling a help popup.
func (f *Form) Click(ctx context.Context, elementID string) ([]dom.Patch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.exec(func() error {
		fn, ok := f.clicks[elementID]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTarget, elementID)
		}
		f.logger.Debug("click", logger.Event("click"), logger.ElementID(elementID))
		fn()
		return nil
	})
}

func (f *Form) event(ctx context.Context, name, fieldID, value string, handle func(fieldHandler)) ([]dom.Patch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.exec(func() error {
		h, ok := f.fields[fieldID]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, fieldID)
		}
		f.logger.Debug("field event", logger.Event(name), logger.FieldID(fieldID))
		h.binding().Field.SyncValue(value)
		handle(h)
		return nil
	})
}

// Valid reports whether every registered field is valid.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.order {
		if !h.Valid() {
			return false
		}
	}
	return true
}

// Values returns the current value of every registered field.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	values := make(map[string]string, len(f.order))
	for _, h := range f.order {
		values[h.ID()] = h.binding().Value()
	}
	return values
}

// Inspect runs fn under the form lock, for reading the document while
// confirmation results may be arriving. fn must not call other Form methods.
func (f *Form) Inspect(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

// Subscribe returns a subscriber receiving every patch batch produced by events
// and confirmation results, and a snapshot of the current form state. Both are
// taken under the form lock, so the snapshot followed by the subscriber's
// batches leaves no gap. The subscriber is released when ctx is done.
func (f *Form) Subscribe(ctx context.Context) (broadcast.Subscriber[[]dom.Patch], []dom.Patch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.patches.Subscribe(ctx), f.snapshot()
}

// Closed reports whether Close has been called.
func (f *Form) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Form) snapshot() []dom.Patch {
	patches := []dom.Patch{{ID: f.id, HTML: f.el.OuterHTML()}}
	for _, id := range f.syncIDs {
		if el := f.doc.ByID(id); el != nil {
			patches = append(patches, dom.Patch{ID: id, HTML: el.OuterHTML()})
		}
	}
	return patches
}

// Render writes the whole document. Pending patches are discarded since the
// rendered page already contains them.
func (f *Form) Render(w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc.TakeDirty()
	return f.doc.Render(w)
}

// Close stops pending confirmation checks and the patch broadcaster. Events
// after Close return ErrFormClosed.
func (f *Form) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	if f.remote != nil {
		f.remote.Stop()
	}
	return f.patches.Close()
}

func (f *Form) register(id string, h fieldHandler) {
	f.fields[id] = h
	f.order = append(f.order, h)
}

// exec runs fn under the form lock, refreshes every aggregator and flushes the
// resulting DOM changes.
func (f *Form) exec(fn func() error) ([]dom.Patch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFormClosed
	}
	err := fn()
	for _, agg := range f.aggregators {
		agg.Check()
	}
	return f.flush(), err
}

// dispatch is the entry point for confirmation results.
func (f *Form) dispatch(fn func()) {
	_, err := f.exec(func() error {
		fn()
		return nil
	})
	if err != nil && !errors.Is(err, ErrFormClosed) {
		f.logger.Error("dispatch failed", logger.Error(err))
	}
}

func (f *Form) flush() []dom.Patch {
	patches := f.doc.TakeDirty()
	if len(patches) == 0 {
		return nil
	}
	if err := f.patches.Broadcast(context.Background(), broadcast.Message[[]dom.Patch]{Data: patches}); err != nil {
		f.logger.Warn("publishing patches failed", logger.Error(err))
	}
	return patches
}
