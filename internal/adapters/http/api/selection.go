package api

import (
	"net/http"

	"github.com/okian/scout/internal/domain/model"
)

type selectionResponse struct {
	Owner   string                 `json:"owner"`
	Entries []model.SelectionEntry `json:"entries"`
}

// handleGetSelection handles GET /selection/{owner}.
func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	entries, err := s.deps.GetSelection(r.Context(), owner)
	if err != nil {
		s.fail(w, r, Wrap("api.get_selection", err))
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Owner: owner, Entries: entries})
}

// handlePutSelection handles PUT /selection/{owner}.
func (s *Server) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_selection"
	var req playerIDsRequest
	if err := decodeBody(r, maxRequestBodyBytes, &req); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	owner := r.PathValue("owner")
	entries, err := s.deps.PutSelection(r.Context(), owner, req.PlayerIDs)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Owner: owner, Entries: entries})
}

// handleDeleteSelection handles DELETE /selection/{owner}.
func (s *Server) handleDeleteSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteSelection(r.Context(), r.PathValue("owner")); err != nil {
		s.fail(w, r, Wrap("api.delete_selection", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type watchRequest struct {
	PlayerID int64 `json:"player_id"`
}

// handleWatchlist handles GET /watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Watchlist(r.Context())
	if err != nil {
		s.fail(w, r, Wrap("api.watchlist", err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleWatch handles POST /watchlist.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.watch_player"
	var req watchRequest
	if err := decodeBody(r, maxRequestBodyBytes, &req); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if req.PlayerID <= 0 {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}
	added, err := s.deps.Watch(r.Context(), req.PlayerID)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"player_id": req.PlayerID, "added": added})
}

// handleUnwatch handles DELETE /watchlist/{id}.
func (s *Server) handleUnwatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.unwatch_player"
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if err := s.deps.Unwatch(r.Context(), id); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
