package run

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/asaply/orderflow/internal/engine"
	"github.com/asaply/orderflow/internal/plan"
)

func testPlan() plan.Plan {
	return plan.Plan{Items: []plan.Item{{Name: "latte"}}}
}

func TestInMemoryServiceLifecycle(t *testing.T) {
	t.Parallel()

	svc := NewInMemoryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{MerchantID: "mch_1", Plan: testPlan()})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Status != StatusQueued {
		t.Fatalf("status = %s, want %s", created.Status, StatusQueued)
	}
	if !strings.HasPrefix(created.ID, "run_") {
		t.Fatalf("id = %q, want run_ prefix", created.ID)
	}

	started, err := svc.Start(ctx, created.ID, time.Now())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if started.Status != StatusRunning || started.StartedAt.IsZero() {
		t.Fatalf("started = %+v", started)
	}

	completed, err := svc.Complete(ctx, CompleteInput{
		RunID: created.ID,
		Outcome: engine.Outcome{
			OK:       true,
			Verified: true,
			Log:      []string{"[verify] RESULT: PASS"},
		},
		ScreenshotURL: "/artifacts/screenshots/run.png",
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completed.Status != StatusPassed || !completed.Verified {
		t.Fatalf("completed = %+v", completed)
	}
	if completed.ScreenshotURL == "" || completed.CompletedAt.IsZero() {
		t.Fatalf("completed = %+v", completed)
	}

	fetched, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if fetched.Status != StatusPassed {
		t.Fatalf("fetched = %+v", fetched)
	}
}

func TestInMemoryServiceCompleteMapsVerdict(t *testing.T) {
	t.Parallel()

	svc := NewInMemoryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{MerchantID: "mch_1", Plan: testPlan()})
	if err != nil {
		t.Fatal(err)
	}

	completed, err := svc.Complete(ctx, CompleteInput{
		RunID: created.ID,
		Outcome: engine.Outcome{
			OK:         false,
			Verified:   true,
			Mismatches: []string{"missing size 'large' in summary"},
		},
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completed.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", completed.Status, StatusFailed)
	}
	if len(completed.Mismatches) != 1 {
		t.Fatalf("mismatches = %v", completed.Mismatches)
	}
}

func TestInMemoryServiceFail(t *testing.T) {
	t.Parallel()

	svc := NewInMemoryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{MerchantID: "mch_1", Plan: testPlan()})
	if err != nil {
		t.Fatal(err)
	}

	failed, err := svc.Fail(ctx, FailInput{
		RunID: created.ID,
		Error: `missing selector for "button.checkout"`,
		Log:   []string{"[executor] Add latte"},
	})
	if err != nil {
		t.Fatalf("Fail returned error: %v", err)
	}
	if failed.Status != StatusErrored || failed.Error == "" {
		t.Fatalf("failed = %+v", failed)
	}
	if len(failed.Log) != 1 {
		t.Fatalf("log = %v", failed.Log)
	}
}

func TestInMemoryServiceValidation(t *testing.T) {
	t.Parallel()

	svc := NewInMemoryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Plan: testPlan()}); err == nil {
		t.Fatal("Create accepted an empty merchant id")
	}
	if _, err := svc.Create(ctx, CreateInput{MerchantID: "mch_1"}); err == nil {
		t.Fatal("Create accepted an empty plan")
	}
	if _, err := svc.Get(ctx, "run_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Start(ctx, "run_missing", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Start err = %v, want ErrNotFound", err)
	}
}

func TestInMemoryServiceListNewestFirst(t *testing.T) {
	t.Parallel()

	svc := NewInMemoryService()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		created, err := svc.Create(ctx, CreateInput{MerchantID: "mch_1", Plan: testPlan()})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, created.ID)
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs", len(runs))
	}
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Fatalf("runs not newest-first: %v", []string{runs[0].ID, runs[1].ID, runs[2].ID})
	}
}
