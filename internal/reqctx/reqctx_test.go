package reqctx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWithRun(t *testing.T) {
	ctx := WithRun(context.Background(), "scrape")
	rc := GetRun(ctx)

	if len(rc.RunID) != 16 {
		t.Errorf("expected 16 hex chars, got %q", rc.RunID)
	}
	if rc.Stage != "scrape" {
		t.Errorf("expected stage scrape, got %q", rc.Stage)
	}
	if GetRun(context.Background()).RunID != "unknown" {
		t.Error("expected placeholder run for bare context")
	}
}

func TestWrapError(t *testing.T) {
	ctx := WithRun(context.Background(), "nlp")
	base := errors.New("boom")

	err := WrapError(ctx, base)
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the original")
	}
	if !strings.HasPrefix(err.Error(), "[nlp ") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if WrapError(ctx, nil) != nil {
		t.Error("nil error should stay nil")
	}
}
