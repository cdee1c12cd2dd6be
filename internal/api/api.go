// Package api provides the operator REST endpoints of the module server.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
	"github.com/pzverkov/quantum-go-fips/pkg/fips"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
)

// CredentialHeader carries the Crypto Officer credential of privileged
// requests.
const CredentialHeader = "X-FIPS-Credential"

// Handler serves the module endpoints.
type Handler struct {
	module *fips.Module
	logger *metrics.Logger
}

// NewHandler creates a Handler for m.
func NewHandler(m *fips.Module, logger *metrics.Logger) *Handler {
	if logger == nil {
		logger = metrics.NullLogger()
	}
	return &Handler{module: m, logger: logger.Named("api")}
}

// Routes returns the router, to be mounted under a version prefix:
//
//	GET  /state              module state and last POST report
//	POST /selftest           run the POST on demand (Crypto Officer)
//	POST /unlock/{role}      release a login lockout (Crypto Officer)
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/state", h.State)
	r.Group(func(r chi.Router) {
		r.Use(h.requireOfficer)
		r.Post("/selftest", h.SelfTest)
		r.Post("/unlock/{role}", h.Unlock)
	})
	return r
}

// State handles GET /state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newStateResponse(h.module.Status()))
}

// SelfTest handles POST /selftest. A failed POST is reported with 503 and
// the failing report.
func (h *Handler) SelfTest(w http.ResponseWriter, r *http.Request) {
	err := h.module.RunPOST(r.Context())
	resp := newStateResponse(h.module.Status())
	if err != nil {
		h.logger.Warn("on-demand self-test failed", metrics.Fields{"error": err.Error()})
		if qerrors.IsSelfTestFailure(err) {
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Unlock handles POST /unlock/{role}.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	role, err := fips.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		respondError(w, http.StatusBadRequest, &APIError{Code: CodeInvalidRequest, Message: err.Error()})
		return
	}
	if err := h.module.Unlock(role); err != nil {
		respondMapped(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireOfficer logs the Crypto Officer in with the credential header for
// the duration of the request.
func (h *Handler) requireOfficer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := r.Header.Get(CredentialHeader)
		if credential == "" {
			respondError(w, http.StatusUnauthorized, &APIError{
				Code:    CodeUnauthorized,
				Message: "missing " + CredentialHeader + " header",
			})
			return
		}
		if err := h.module.Login(fips.RoleCryptoOfficer, []byte(credential)); err != nil {
			respondMapped(w, err)
			return
		}
		defer h.module.Logout()
		next.ServeHTTP(w, r)
	})
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErr)
}

func respondMapped(w http.ResponseWriter, err error) {
	status, apiErr := MapError(err)
	respondError(w, status, apiErr)
}
