package engine

import (
	"go.uber.org/zap"

	"github.com/dshills/typographic/internal/engine/diff"
	"github.com/dshills/typographic/internal/engine/scan"
	"github.com/dshills/typographic/internal/metrics"
)

// DefaultWindow is the default look-ahead of the change detector.
const DefaultWindow = diff.DefaultWindow

// Option configures an Engine during creation.
type Option func(*Engine)

// WithConfig sets the scanner configuration.
func WithConfig(cfg *scan.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.scanner = scan.New(cfg)
		}
	}
}

// WithWindow sets the change detector look-ahead.
func WithWindow(window int) Option {
	return func(e *Engine) {
		if window > 0 {
			e.window = window
		}
	}
}

// WithLogger sets the logger. Cycles are logged at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics sets the collectors updated after every cycle.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}
