package wish

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Fallback wraps a Generator so callers always get a usable wish. Any
// error, panic or blank answer from the wrapped generator is logged and
// replaced by a fixed text.
type Fallback struct {
	next     Generator
	fallback string
	logger   *zap.Logger
}

func NewFallback(next Generator, fallback string, logger *zap.Logger) *Fallback {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{next: next, fallback: fallback, logger: logger}
}

// Compose returns a wish for the envelope. It never fails.
func (f *Fallback) Compose(ctx context.Context, amount int, label string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("wish generator panicked",
				zap.Int("amount", amount),
				zap.String("label", label),
				zap.String("panic", fmt.Sprint(r)),
			)
			text = f.fallback
		}
	}()

	if f.next == nil {
		return f.fallback
	}

	text, err := f.next.Wish(ctx, amount, label)
	if err != nil {
		f.logger.Warn("wish generation failed, using fallback",
			zap.Int("amount", amount),
			zap.String("label", label),
			zap.Error(err),
		)
		return f.fallback
	}

	text = strings.TrimSpace(text)
	if text == "" {
		f.logger.Warn("wish generator returned blank text, using fallback",
			zap.Int("amount", amount),
			zap.String("label", label),
		)
		return f.fallback
	}
	return text
}

// Text returns the fallback wish
func (f *Fallback) Text() string {
	return f.fallback
}
