package salesync

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHTTPSourceHonorsContextCancellation(t *testing.T) {
	t.Setenv("SOURCE_API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("SOURCE_API_KEY", "test-key")
	// One request per minute: the ticker cannot fire during the test, so a
	// canceled context must win the rate-limit wait.
	t.Setenv("SOURCE_RATE_LIMIT_PER_MIN", "1")

	source, err := NewHTTPSource()
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.FetchSaleItems(ctx, day(2025, time.September, 13), day(2025, time.September, 13))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestNewHTTPSourceRequiresBaseURLAndKey(t *testing.T) {
	t.Setenv("SOURCE_API_BASE_URL", "")
	t.Setenv("SOURCE_API_KEY", "test-key")
	if _, err := NewHTTPSource(); err == nil {
		t.Fatal("expected error without base URL")
	}

	t.Setenv("SOURCE_API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("SOURCE_API_KEY", "")
	if _, err := NewHTTPSource(); err == nil {
		t.Fatal("expected error without api key")
	}
}
