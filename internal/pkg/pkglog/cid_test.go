package pkglog

import (
	"context"
	"testing"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelationID(ctx); got != MissingCorrelationID {
		t.Fatalf("expected missing correlation id, got %q", got)
	}
	if _, ok := LookupCorrelationID(ctx); ok {
		t.Fatalf("expected no correlation id on a bare context")
	}

	ctx = SetCorrelationID(ctx, "cid-123")
	if got := GetCorrelationID(ctx); got != "cid-123" {
		t.Fatalf("expected cid-123, got %q", got)
	}
}

func TestCorrelationIDEmptyCountsAsMissing(t *testing.T) {
	ctx := SetCorrelationID(context.Background(), "")
	if _, ok := LookupCorrelationID(ctx); ok {
		t.Fatalf("expected empty correlation id to be reported as missing")
	}
	if got := GetCorrelationID(ctx); got != MissingCorrelationID {
		t.Fatalf("expected missing correlation id, got %q", got)
	}
}
