package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"insights/internal/personalization"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GoalStatuses())
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := req.draft()
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := s.engine.CreateGoal(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, personalization.GoalStatus{Goal: goal, Progress: personalization.GoalProgress(goal)})
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := req.draft()
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, found, err := s.engine.UpdateGoal(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, personalization.GoalStatus{Goal: goal, Progress: personalization.GoalProgress(goal)})
}
