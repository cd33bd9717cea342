package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/asaply/orderflow/internal/idempotency"
	"github.com/asaply/orderflow/internal/plan"
	"github.com/asaply/orderflow/internal/run"
	"github.com/asaply/orderflow/pkg/httpx"
)

type submitRunRequest struct {
	MerchantID string    `json:"merchant_id"`
	Plan       plan.Plan `json:"plan"`
}

func (s *Server) handleSubmitRun(w http.ResponseWriter, r *http.Request) {
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey != "" && s.idem != nil {
		entry, found, err := s.idem.Get(r.Context(), idemKey)
		if err != nil {
			s.internalError(w, err)
			return
		}
		if found {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotency-Replayed", "true")
			w.WriteHeader(entry.StatusCode)
			_, _ = w.Write(entry.Body)
			return
		}
	}

	var req submitRunRequest
	if err := httpx.DecodeJSON(r, maxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if strings.TrimSpace(req.MerchantID) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "merchant_id is required")
		return
	}
	if err := req.Plan.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	cfg, err := s.merchants.Get(r.Context(), req.MerchantID)
	if err != nil {
		if isNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "merchant_not_found", err.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	if missing := cfg.Validate(); len(missing) > 0 {
		httpx.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    "merchant_config_incomplete",
			"missing": missing,
		})
		return
	}

	record, err := s.runs.Create(r.Context(), run.CreateInput{
		MerchantID: req.MerchantID,
		Plan:       req.Plan,
	})
	if err != nil {
		s.internalError(w, err)
		return
	}

	if err := s.queue.Enqueue(r.Context(), record.ID); err != nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "queue_full", err.Error())
		return
	}

	if idemKey != "" && s.idem != nil {
		body, marshalErr := json.Marshal(record)
		if marshalErr == nil {
			if saveErr := s.idem.Save(r.Context(), idemKey, idempotency.Entry{
				StatusCode: http.StatusAccepted,
				Body:       body,
			}, s.idempotencyTTL); saveErr != nil {
				s.logger.Printf("idempotency save failed: %v", saveErr)
			}
		}
	}

	httpx.WriteJSON(w, http.StatusAccepted, record)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	record, err := s.runs.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if isNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "run_not_found", err.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, record)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	records, err := s.runs.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"runs": records})
}
