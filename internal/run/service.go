// Package run records order executions: what was asked, what the engine did,
// and how verification settled. Records let the caller decide whether to
// persist an order and give operators an audit trail of every automation run.
package run

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asaply/orderflow/internal/engine"
	"github.com/asaply/orderflow/internal/plan"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	// StatusPassed and StatusFailed reflect the engine's verification
	// verdict; StatusErrored means the run aborted on a fatal fault
	// (missing required selector, driver timeout) before settling.
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
)

var ErrNotFound = errors.New("run not found")

type Run struct {
	ID            string               `json:"id"`
	MerchantID    string               `json:"merchant_id"`
	Plan          plan.Plan            `json:"plan"`
	Status        Status               `json:"status"`
	Verified      bool                 `json:"verified"`
	MissingItems  []engine.MissingItem `json:"missing_items,omitempty"`
	Mismatches    []string             `json:"mismatches,omitempty"`
	Log           []string             `json:"log,omitempty"`
	ScreenshotURL string               `json:"screenshot_url,omitempty"`
	Error         string               `json:"error,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	StartedAt     time.Time            `json:"started_at,omitempty"`
	CompletedAt   time.Time            `json:"completed_at,omitempty"`
}

type CreateInput struct {
	MerchantID string
	Plan       plan.Plan
}

type CompleteInput struct {
	RunID         string
	Completed     time.Time
	Outcome       engine.Outcome
	ScreenshotURL string
}

type FailInput struct {
	RunID     string
	Completed time.Time
	Error     string
	Log       []string
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (Run, error)
	Start(ctx context.Context, runID string, started time.Time) (Run, error)
	Complete(ctx context.Context, input CompleteInput) (Run, error)
	Fail(ctx context.Context, input FailInput) (Run, error)
	Get(ctx context.Context, runID string) (Run, error)
	List(ctx context.Context) ([]Run, error)
}

type InMemoryService struct {
	mu    sync.RWMutex
	items map[string]Run
}

func NewInMemoryService() *InMemoryService {
	return &InMemoryService{items: make(map[string]Run)}
}

func (s *InMemoryService) Create(_ context.Context, input CreateInput) (Run, error) {
	if strings.TrimSpace(input.MerchantID) == "" {
		return Run{}, errors.New("merchant id is required")
	}
	if err := input.Plan.Validate(); err != nil {
		return Run{}, err
	}

	created := Run{
		ID:         NewID(),
		MerchantID: input.MerchantID,
		Plan:       input.Plan,
		Status:     StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.items[created.ID] = created
	s.mu.Unlock()
	return created, nil
}

func (s *InMemoryService) Start(_ context.Context, runID string, started time.Time) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[runID]
	if !ok {
		return Run{}, ErrNotFound
	}
	record.Status = StatusRunning
	record.StartedAt = normalizeTime(started)
	s.items[runID] = record
	return record, nil
}

func (s *InMemoryService) Complete(_ context.Context, input CompleteInput) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[input.RunID]
	if !ok {
		return Run{}, ErrNotFound
	}
	record.Status = StatusFailed
	if input.Outcome.OK {
		record.Status = StatusPassed
	}
	record.Verified = input.Outcome.Verified
	record.MissingItems = input.Outcome.MissingItems
	record.Mismatches = input.Outcome.Mismatches
	record.Log = input.Outcome.Log
	record.ScreenshotURL = input.ScreenshotURL
	record.CompletedAt = normalizeTime(input.Completed)
	s.items[input.RunID] = record
	return record, nil
}

func (s *InMemoryService) Fail(_ context.Context, input FailInput) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[input.RunID]
	if !ok {
		return Run{}, ErrNotFound
	}
	record.Status = StatusErrored
	record.Error = input.Error
	if len(input.Log) > 0 {
		record.Log = input.Log
	}
	record.CompletedAt = normalizeTime(input.Completed)
	s.items[input.RunID] = record
	return record, nil
}

func (s *InMemoryService) Get(_ context.Context, runID string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.items[runID]
	if !ok {
		return Run{}, ErrNotFound
	}
	return record, nil
}

func (s *InMemoryService) List(_ context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.items))
	for _, record := range s.items {
		runs = append(runs, record)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// NewID mints a run identifier.
func NewID() string {
	return "run_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func normalizeTime(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now().UTC()
	}
	return value.UTC()
}
