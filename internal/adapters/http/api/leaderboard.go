package api

import (
	"fmt"
	"net/http"
)

// handleLeaderboard handles GET /leaderboard?limit=N&position=P.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n, err := queryInt(r, "limit", min(DefaultLimit, s.maxLimit))
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if n > s.maxLimit {
		s.fail(w, r, WrapKind(op, ErrLimitExceeded, fmt.Errorf("limit %d > %d", n, s.maxLimit)))
		return
	}
	pos, err := queryPosition(r)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	entries, err := s.deps.Leaderboard(r.Context(), n, pos)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handlePositionsSummary handles GET /positions/summary.
func (s *Server) handlePositionsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.PositionsSummary(r.Context())
	if err != nil {
		s.fail(w, r, Wrap("api.positions_summary", err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleTeams handles GET /teams.
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.deps.Teams(r.Context())
	if err != nil {
		s.fail(w, r, Wrap("api.list_teams", err))
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// handleTeam handles GET /teams/{club}.
func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.deps.Team(r.Context(), r.PathValue("club"))
	if err != nil {
		s.fail(w, r, Wrap("api.get_team", err))
		return
	}
	writeJSON(w, http.StatusOK, team)
}
