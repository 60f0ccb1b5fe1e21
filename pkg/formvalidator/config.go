package formvalidator

import "time"

const (
	// DefaultDebounce is the quiet period before a confirmation request is sent.
	DefaultDebounce = 750 * time.Millisecond

	// DefaultConfirmTimeout bounds a single confirmation request.
	DefaultConfirmTimeout = 10 * time.Second

	// DefaultPatchBuffer is the per-subscriber buffer of patch batches.
	DefaultPatchBuffer = 32
)

// Config holds engine tunables loadable from the environment with pkg/config.
type Config struct {
	Debounce       time.Duration `env:"LIVEFORM_DEBOUNCE" envDefault:"750ms"`
	ConfirmTimeout time.Duration `env:"LIVEFORM_CONFIRM_TIMEOUT" envDefault:"10s"`
	PatchBuffer    int           `env:"LIVEFORM_PATCH_BUFFER" envDefault:"32"`
}
