package lease

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryManagerAcquireRelease(t *testing.T) {
	t.Parallel()

	m := NewInMemoryManager()
	ctx := context.Background()

	acquired, err := m.Acquire(ctx, "mch_1", "run_a", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("Acquire = %v, %v", acquired, err)
	}

	acquired, err = m.Acquire(ctx, "mch_1", "run_b", time.Minute)
	if err != nil || acquired {
		t.Fatalf("second owner acquired a held lease: %v, %v", acquired, err)
	}

	// Distinct resources never contend.
	acquired, err = m.Acquire(ctx, "mch_2", "run_b", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("Acquire on free resource = %v, %v", acquired, err)
	}

	if err := m.Release(ctx, "mch_1", "run_a"); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	acquired, err = m.Acquire(ctx, "mch_1", "run_b", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("Acquire after release = %v, %v", acquired, err)
	}
}

func TestInMemoryManagerReentrantForOwner(t *testing.T) {
	t.Parallel()

	m := NewInMemoryManager()
	ctx := context.Background()

	if acquired, _ := m.Acquire(ctx, "mch_1", "run_a", time.Minute); !acquired {
		t.Fatal("initial acquire failed")
	}
	if acquired, _ := m.Acquire(ctx, "mch_1", "run_a", time.Minute); !acquired {
		t.Fatal("same owner could not refresh its lease")
	}
}

func TestInMemoryManagerExpiry(t *testing.T) {
	t.Parallel()

	m := NewInMemoryManager()
	ctx := context.Background()

	if acquired, _ := m.Acquire(ctx, "mch_1", "run_a", 5*time.Millisecond); !acquired {
		t.Fatal("initial acquire failed")
	}
	time.Sleep(20 * time.Millisecond)

	acquired, err := m.Acquire(ctx, "mch_1", "run_b", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("Acquire after expiry = %v, %v", acquired, err)
	}
}

func TestInMemoryManagerReleaseIgnoresWrongOwner(t *testing.T) {
	t.Parallel()

	m := NewInMemoryManager()
	ctx := context.Background()

	if acquired, _ := m.Acquire(ctx, "mch_1", "run_a", time.Minute); !acquired {
		t.Fatal("initial acquire failed")
	}
	if err := m.Release(ctx, "mch_1", "run_b"); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}

	acquired, _ := m.Acquire(ctx, "mch_1", "run_c", time.Minute)
	if acquired {
		t.Fatal("lease dropped by a non-owner release")
	}
}

func TestInMemoryManagerValidation(t *testing.T) {
	t.Parallel()

	m := NewInMemoryManager()
	ctx := context.Background()

	if _, err := m.Acquire(ctx, "", "run_a", time.Minute); err == nil {
		t.Fatal("Acquire accepted an empty resource")
	}
	if _, err := m.Acquire(ctx, "mch_1", " ", time.Minute); err == nil {
		t.Fatal("Acquire accepted an empty owner")
	}
}
