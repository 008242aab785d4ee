package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const runKey key = 0

// RunContext identifies one pipeline run (a scrape or an enrichment pass)
type RunContext struct {
	RunID     string
	Stage     string
	StartTime time.Time
}

// WithRun attaches a fresh RunContext for the given stage
func WithRun(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     generateID(),
		Stage:     stage,
		StartTime: time.Now(),
	})
}

// GetRun returns the RunContext stored in ctx, or a placeholder
func GetRun(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns the global logger annotated with the run ID and stage
func Logger(ctx context.Context) zerolog.Logger {
	rc := GetRun(ctx)
	l := log.With().Str("run_id", rc.RunID)
	if rc.Stage != "" {
		l = l.Str("stage", rc.Stage)
	}
	return l.Logger()
}

// Elapsed returns the time since the run started
func Elapsed(ctx context.Context) time.Duration {
	return time.Since(GetRun(ctx).StartTime)
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RunError wraps an error with the run it happened in
type RunError struct {
	RunID string
	Stage string
	Err   error
}

func (e *RunError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("[%s %s] %v", e.Stage, e.RunID, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// WrapError annotates err with the run stored in ctx
func WrapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	rc := GetRun(ctx)
	return &RunError{RunID: rc.RunID, Stage: rc.Stage, Err: err}
}
