package idempotency

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore()
	ctx := context.Background()

	entry := Entry{StatusCode: 202, Body: []byte(`{"id":"run_1"}`)}
	if err := store.Save(ctx, "order-123", entry, time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, found, err := store.Get(ctx, "order-123")
	if err != nil || !found {
		t.Fatalf("Get = %v, %v", found, err)
	}
	if got.StatusCode != 202 || string(got.Body) != `{"id":"run_1"}` {
		t.Fatalf("entry = %+v", got)
	}

	// The stored body must not alias the caller's slice.
	got.Body[0] = 'X'
	again, _, err := store.Get(ctx, "order-123")
	if err != nil {
		t.Fatal(err)
	}
	if string(again.Body) != `{"id":"run_1"}` {
		t.Fatalf("stored body mutated: %s", again.Body)
	}
}

func TestInMemoryStoreMiss(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore()
	_, found, err := store.Get(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatal("Get reported a hit for an unknown key")
	}
}

func TestInMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, "order-123", Entry{StatusCode: 202}, 5*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	_, found, err := store.Get(ctx, "order-123")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expired entry still served")
	}
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	a, err := NormalizeKey("  order-123 ")
	if err != nil {
		t.Fatalf("NormalizeKey returned error: %v", err)
	}
	b, err := NormalizeKey("order-123")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("normalization not stable under trimming: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("digest length = %d, want 64", len(a))
	}

	if _, err := NormalizeKey("   "); err == nil {
		t.Fatal("NormalizeKey accepted a blank key")
	}
}
