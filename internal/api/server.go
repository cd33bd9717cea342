// Package api exposes the order execution service over HTTP: submit a plan
// for a stored merchant, watch the run settle, and manage the merchant
// catalog. Payment is never part of the surface; runs stop at checkout.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asaply/orderflow/internal/idempotency"
	"github.com/asaply/orderflow/internal/merchant"
	"github.com/asaply/orderflow/internal/run"
	"github.com/asaply/orderflow/pkg/httpx"
)

const maxBodyBytes = 1 << 20

// RunQueue is the slice of the runner the server needs.
type RunQueue interface {
	Enqueue(ctx context.Context, runID string) error
}

type Options struct {
	Runs           run.Service
	Merchants      merchant.Store
	Queue          RunQueue
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
	Logger         *log.Logger
	// ArtifactDir, when set, is served read-only under ArtifactPath.
	ArtifactDir  string
	ArtifactPath string
}

type Server struct {
	runs           run.Service
	merchants      merchant.Store
	queue          RunQueue
	idem           idempotency.Store
	idempotencyTTL time.Duration
	logger         *log.Logger
	artifactDir    string
	artifactPath   string
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ttl := opts.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Server{
		runs:           opts.Runs,
		merchants:      opts.Merchants,
		queue:          opts.Queue,
		idem:           opts.Idempotency,
		idempotencyTTL: ttl,
		logger:         logger,
		artifactDir:    opts.ArtifactDir,
		artifactPath:   opts.ArtifactPath,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/runs", s.handleSubmitRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)

		r.Post("/merchants", s.handleCreateMerchant)
		r.Get("/merchants", s.handleListMerchants)
		r.Post("/merchants/validate", s.handleValidateMerchant)
		r.Get("/merchants/{merchantID}", s.handleGetMerchant)
		r.Put("/merchants/{merchantID}", s.handleUpdateMerchant)
		r.Delete("/merchants/{merchantID}", s.handleDeleteMerchant)
	})

	if s.artifactDir != "" && s.artifactPath != "" {
		fileServer := http.StripPrefix(s.artifactPath, http.FileServer(http.Dir(s.artifactDir)))
		r.Get(s.artifactPath+"/*", fileServer.ServeHTTP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// internalError logs the cause and hides it from the client.
func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Printf("api error: %v", err)
	httpx.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
}

func isNotFound(err error) bool {
	return errors.Is(err, run.ErrNotFound) || errors.Is(err, merchant.ErrNotFound)
}
