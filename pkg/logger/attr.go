package logger

import (
	"log/slog"
	"time"
)

// Error returns an empty Attr for a nil error, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func RequestID(id string) slog.Attr { return slog.String("request_id", id) }

// SessionID identifies the visitor owning a live form.
func SessionID(id string) slog.Attr { return slog.String("session_id", id) }

func Component(name string) slog.Attr { return slog.String("component", name) }

func FormID(id string) slog.Attr { return slog.String("form_id", id) }

func FieldID(id string) slog.Attr { return slog.String("field_id", id) }

// ElementID names the clicked element, which need not be a field.
func ElementID(id string) slog.Attr { return slog.String("element_id", id) }

func Event(name string) slog.Attr { return slog.String("event", name) }

// Sequence is the per-field remote confirmation counter.
func Sequence(seq uint64) slog.Attr { return slog.Uint64("seq", seq) }

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }
