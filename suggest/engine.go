package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/redlinehq/redline/ledger"
)

// Config holds engine tuning.
type Config struct {
	// Delay is the pause between checker calls.
	Delay time.Duration

	// KeepClean also writes records where the checker found nothing
	// wrong. Off by default so the review set stays small.
	KeepClean bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{Delay: time.Second}
}

// Stats summarizes one engine run. On early return they cover the
// records handled so far.
type Stats struct {
	Processed int // records taken from the change set
	Written   int // suggestion lines written
	Clean     int // records skipped because nothing was wrong
	Failed    int // checker errors, logged and skipped
}

// Engine drives a Suggester over a change set and writes the suggestion
// ledger one line at a time.
type Engine struct {
	suggester Suggester
	config    Config
	gate      *Gate
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGate installs a shared pause gate.
func WithGate(g *Gate) Option {
	return func(e *Engine) {
		e.gate = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine around a Suggester.
func NewEngine(suggester Suggester, cfg Config, opts ...Option) *Engine {
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	e := &Engine{
		suggester: suggester,
		config:    cfg,
		gate:      NewGate(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run checks every record in order and writes kept suggestions to w as
// they arrive, so an interrupted run loses at most the record in
// flight. Checker failures are logged and skipped; only write errors
// and cancellation abort the run. Cancellation and pause both take
// effect at record boundaries.
func (e *Engine) Run(ctx context.Context, records []ledger.ChangeRecord, w io.Writer) (Stats, error) {
	var stats Stats
	e.logger.Info("checking records", "count", len(records))

	for i, rec := range records {
		if i > 0 {
			if err := sleep(ctx, e.config.Delay); err != nil {
				return stats, err
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := e.gate.Wait(ctx); err != nil {
			return stats, err
		}

		stats.Processed++
		payload, err := e.suggester.Suggest(ctx, rec.Text)
		if err != nil {
			stats.Failed++
			e.logger.Warn("checker failed, record skipped", "tag", rec.Tag, "error", err)
			continue
		}

		if !e.config.KeepClean && clean(payload) {
			stats.Clean++
			e.logger.Debug("no issues found", "tag", rec.Tag)
			continue
		}

		line := rec.Tag + " " + sanitize(payload) + "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return stats, fmt.Errorf("write suggestion for %s: %w", rec.Tag, err)
		}
		stats.Written++
	}

	return stats, nil
}

// clean reports whether payload is a schema object with an empty error
// type. Unparsable payloads are never clean; they pass through so the
// reviewer sees them.
func clean(payload string) bool {
	var p ledger.Payload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return false
	}
	return strings.TrimSpace(p.ErrorType) == ""
}

// sanitize keeps a payload on one line even if a Suggester misbehaves.
func sanitize(payload string) string {
	if !strings.ContainsAny(payload, "\r\n") {
		return payload
	}
	return flatten(payload)
}

// sleep waits d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
