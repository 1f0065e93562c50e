package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestContextRoundTrip(t *testing.T) {
	base := zap.NewNop().With(zap.String("request_id", "r1"))
	ctx := ContextWithLogger(context.Background(), base)

	if got := FromContext(ctx); got != base {
		t.Error("FromContext must return the stored logger")
	}

	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext without a stored logger must return a usable no-op logger")
	}
}
