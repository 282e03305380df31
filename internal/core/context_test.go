package core

import (
	"context"
	"testing"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if ClientIPFromContext(ctx) != "" || OriginFromContext(ctx) != "" {
		t.Fatal("empty context should yield empty values")
	}

	ctx = ContextWithClientIP(ctx, "10.0.0.7")
	ctx = ContextWithOrigin(ctx, OriginCLI)

	if got := ClientIPFromContext(ctx); got != "10.0.0.7" {
		t.Errorf("ClientIPFromContext = %q", got)
	}
	if got := OriginFromContext(ctx); got != OriginCLI {
		t.Errorf("OriginFromContext = %q", got)
	}
}
