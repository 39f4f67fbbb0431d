package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/scout/internal/adapters/repository"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/normalize"
)

type ingestEnvelope struct {
	Items []normalize.Raw `json:"items"`
}

type ingestResponse struct {
	Status string `json:"status"`
	service.IngestResult
}

// decodeRecords accepts a bare array of records or an {"items": [...]} envelope.
func decodeRecords(r *http.Request) ([]normalize.Raw, error) {
	var body json.RawMessage
	if err := decodeBody(r, maxIngestBodyBytes, &body); err != nil {
		return nil, err
	}

	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(body))
		d.UseNumber()
		return d.Decode(v)
	}

	var records []normalize.Raw
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := dec(&records); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
	} else {
		var env ingestEnvelope
		if err := dec(&env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		records = env.Items
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrBadRequest)
	}
	return records, nil
}

// handleIngest handles POST /players.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest_players"
	records, err := decodeRecords(r)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}

	res, err := s.deps.Ingest(r.Context(), records, service.SourceAPI)
	if err != nil {
		if errors.Is(err, service.ErrBackpressure) {
			writeJSON(w, http.StatusTooManyRequests, ingestResponse{Status: "backpressure", IngestResult: res})
			return
		}
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ingestResponse{Status: "accepted", IngestResult: res})
}

// handleListPlayers handles GET /players.
func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	q := r.URL.Query()

	page, err := queryInt(r, "page", 1)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	perPage, err := queryInt(r, "per_page", DefaultPerPage)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if perPage > MaxPerPage {
		s.fail(w, r, WrapKind(op, ErrLimitExceeded, fmt.Errorf("per_page > %d", MaxPerPage)))
		return
	}
	pos, err := queryPosition(r)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}

	f := repository.Filter{
		Position: pos,
		Club:     strings.TrimSpace(q.Get("club")),
		Season:   strings.TrimSpace(q.Get("season")),
		Query:    strings.TrimSpace(q.Get("q")),
	}
	result, err := s.deps.Players(r.Context(), f, page, perPage)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetPlayer handles GET /players/{id}.
func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	view, err := s.deps.Player(r.Context(), id)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleSimilar handles GET /players/{id}/similar.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	const op = "api.similar_players"
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	similar, err := s.deps.Similar(r.Context(), id)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player_id": id, "similar": similar})
}

// handleShotMap handles GET /players/{id}/shotmap.
func (s *Server) handleShotMap(w http.ResponseWriter, r *http.Request) {
	const op = "api.shot_map"
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	shots, err := s.deps.ShotMap(r.Context(), id)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

// handleReport handles GET /players/{id}/report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.scouting_report"
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	report, err := s.deps.Report(r.Context(), id)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type playerIDsRequest struct {
	PlayerIDs []int64 `json:"player_ids"`
}

// handleCompare handles POST /compare.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare_players"
	var req playerIDsRequest
	if err := decodeBody(r, maxRequestBodyBytes, &req); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	cmp, err := s.deps.Compare(r.Context(), req.PlayerIDs)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
