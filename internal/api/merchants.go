package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/asaply/orderflow/internal/merchant"
	"github.com/asaply/orderflow/pkg/httpx"
)

func (s *Server) handleCreateMerchant(w http.ResponseWriter, r *http.Request) {
	var cfg merchant.Config
	if err := httpx.DecodeJSON(r, maxBodyBytes, &cfg); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if strings.TrimSpace(cfg.Name) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "merchant name is required")
		return
	}

	created, err := s.merchants.Create(r.Context(), &cfg)
	if err != nil {
		s.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListMerchants(w http.ResponseWriter, r *http.Request) {
	configs, err := s.merchants.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"merchants": configs})
}

func (s *Server) handleGetMerchant(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.merchants.Get(r.Context(), chi.URLParam(r, "merchantID"))
	if err != nil {
		if isNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "merchant_not_found", err.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateMerchant(w http.ResponseWriter, r *http.Request) {
	var cfg merchant.Config
	if err := httpx.DecodeJSON(r, maxBodyBytes, &cfg); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	cfg.ID = chi.URLParam(r, "merchantID")

	updated, err := s.merchants.Update(r.Context(), &cfg)
	if err != nil {
		if isNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "merchant_not_found", err.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMerchant(w http.ResponseWriter, r *http.Request) {
	if err := s.merchants.Delete(r.Context(), chi.URLParam(r, "merchantID")); err != nil {
		if isNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "merchant_not_found", err.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidateMerchant checks config completeness without storing anything,
// mirroring the pre-flight the execute path performs.
func (s *Server) handleValidateMerchant(w http.ResponseWriter, r *http.Request) {
	var cfg merchant.Config
	if err := httpx.DecodeJSON(r, maxBodyBytes, &cfg); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	missing := cfg.Validate()
	if missing == nil {
		missing = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      len(missing) == 0,
		"missing": missing,
	})
}
