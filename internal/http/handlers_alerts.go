package http

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"insights/internal/core"
)

// handleListAlerts returns every alert, disabled ones included.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Alerts())
}

// handleUpsertAlert creates the alert for a category or replaces its limit.
func (s *Server) handleUpsertAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := req.draft()
	if err != nil {
		writeError(w, r, err)
		return
	}

	alert, err := s.engine.UpsertAlert(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleToggleAlert(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Enabled == nil {
		writeError(w, r, &badRequestError{field: "enabled", msg: "enabled is required"})
		return
	}

	id := chi.URLParam(r, "id")
	alerts, err := s.engine.SetAlertEnabled(r.Context(), id, *req.Enabled)
	if err != nil {
		writeError(w, r, err)
		return
	}

	idx := slices.IndexFunc(alerts, func(a core.SpendingAlert) bool { return a.ID == id })
	if idx < 0 {
		writeError(w, r, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, alerts[idx])
}

// handleAlertStatus evaluates enabled alerts against all transactions.
func (s *Server) handleAlertStatus(w http.ResponseWriter, r *http.Request) {
	txs, err := s.source.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.EvaluateAlerts(txs))
}
