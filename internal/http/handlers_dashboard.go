package http

import (
	"net/http"

	"insights/internal/aggregate"
	applog "insights/internal/log"
	"insights/internal/personalization"
)

// handleDashboard serves the chart view for ?window=7d|30d|90d. Views are
// cached per window until the cache TTL expires.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, hit, err := s.views.GetOrLoad(window.String(), func() (aggregate.View, error) {
		txs, err := s.source.ListTransactions(r.Context())
		if err != nil {
			return aggregate.View{}, err
		}
		return aggregate.BuildView(txs, window, s.now()), nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger := applog.FromContext(r.Context())
	logger.DebugContext(r.Context(), "Dashboard view served",
		applog.FieldWindow, window,
		applog.FieldCacheHit, hit)
	if len(view.FallbackIDs) > 0 && !hit {
		logger.WarnContext(r.Context(), "Transactions with unparseable dates placed on today",
			"ids", view.FallbackIDs)
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, view)
}

// handleCategories lists the categories a user can set alerts for.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	txs, err := s.source.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, personalization.Categories(txs))
}
