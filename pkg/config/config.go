package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer    = errors.New("config: nil pointer")
	ErrParsingConfig = errors.New("config: parse environment")
)

type loaded struct {
	once  sync.Once
	value any
	err   error
}

var (
	dotenv sync.Once
	cache  sync.Map // reflect.Type -> *loaded
)

// Load fills v from environment variables using its env struct tags. A .env
// file in the working directory, if present, is read on first use. Each
// config type is parsed once per process; later calls copy the cached value,
// including a cached error.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenv.Do(func() { _ = godotenv.Load() })

	e, _ := cache.LoadOrStore(reflect.TypeFor[T](), &loaded{})
	entry := e.(*loaded)
	entry.once.Do(func() {
		var cfg T
		if err := env.Parse(&cfg); err != nil {
			entry.err = errors.Join(ErrParsingConfig, err)
			return
		}
		entry.value = cfg
	})
	if entry.err != nil {
		return entry.err
	}
	*v = entry.value.(T)
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
