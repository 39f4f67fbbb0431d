// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/scout/internal/adapters/repository"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/internal/domain/scouting"
	"github.com/okian/scout/pkg/logger"
)

// Defaults for query parameters.
const (
	DefaultMaxLimit     = 100
	DefaultLimit        = 10
	DefaultPerPage      = 20
	MaxPerPage          = 100
	maxIngestBodyBytes  = 16 << 20
	maxRequestBodyBytes = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	Ingest(ctx context.Context, raws []normalize.Raw, source string) (service.IngestResult, error)

	Player(ctx context.Context, id int64) (service.PlayerView, error)
	Players(ctx context.Context, f repository.Filter, page, perPage int) (service.Page, error)
	Similar(ctx context.Context, id int64) ([]model.ComparisonEntry, error)
	ShotMap(ctx context.Context, id int64) (service.ShotMap, error)
	Report(ctx context.Context, id int64) (scouting.Report, error)
	Compare(ctx context.Context, ids []int64) (service.Comparison, error)

	Leaderboard(ctx context.Context, limit int, position model.Position) ([]repository.Entry, error)
	PositionsSummary(ctx context.Context) (map[model.Position][]model.Player, error)
	Teams(ctx context.Context) ([]scouting.TeamListing, error)
	Team(ctx context.Context, club string) (scouting.TeamSummary, error)

	GetSelection(ctx context.Context, owner string) ([]model.SelectionEntry, error)
	PutSelection(ctx context.Context, owner string, ids []int64) ([]model.SelectionEntry, error)
	DeleteSelection(ctx context.Context, owner string) error

	Watch(ctx context.Context, id int64) (bool, error)
	Unwatch(ctx context.Context, id int64) error
	Watchlist(ctx context.Context) ([]service.WatchedPlayer, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps        Dependencies
	maxLimit    int
	corsOrigins []string
	log         logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:        deps,
		maxLimit:    DefaultMaxLimit,
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("api")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /players", MetricsMiddleware(s.handleIngest, "players_ingest"))
	mux.HandleFunc("GET /players", MetricsMiddleware(s.handleListPlayers, "players_list"))
	mux.HandleFunc("GET /players/{id}", MetricsMiddleware(s.handleGetPlayer, "player"))
	mux.HandleFunc("GET /players/{id}/similar", MetricsMiddleware(s.handleSimilar, "player_similar"))
	mux.HandleFunc("GET /players/{id}/shotmap", MetricsMiddleware(s.handleShotMap, "player_shotmap"))
	mux.HandleFunc("GET /players/{id}/report", MetricsMiddleware(s.handleReport, "player_report"))
	mux.HandleFunc("POST /compare", MetricsMiddleware(s.handleCompare, "compare"))

	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.handleLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /positions/summary", MetricsMiddleware(s.handlePositionsSummary, "positions_summary"))
	mux.HandleFunc("GET /teams", MetricsMiddleware(s.handleTeams, "teams"))
	mux.HandleFunc("GET /teams/{club}", MetricsMiddleware(s.handleTeam, "team"))

	mux.HandleFunc("GET /selection/{owner}", MetricsMiddleware(s.handleGetSelection, "selection"))
	mux.HandleFunc("PUT /selection/{owner}", MetricsMiddleware(s.handlePutSelection, "selection"))
	mux.HandleFunc("DELETE /selection/{owner}", MetricsMiddleware(s.handleDeleteSelection, "selection"))

	mux.HandleFunc("GET /watchlist", MetricsMiddleware(s.handleWatchlist, "watchlist"))
	mux.HandleFunc("POST /watchlist", MetricsMiddleware(s.handleWatch, "watchlist"))
	mux.HandleFunc("DELETE /watchlist/{id}", MetricsMiddleware(s.handleUnwatch, "watchlist"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err and writes the matching error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", w.Header().Get(RequestIDHeader)),
			logger.Error(err))
	}
	writeError(w, status, code, err)
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid player id %q", ErrBadRequest, raw)
	}
	return id, nil
}

// queryInt reads a positive integer parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrBadRequest, name)
	}
	return n, nil
}

// queryPosition reads an optional position filter.
func queryPosition(r *http.Request) (model.Position, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("position"))
	if raw == "" {
		return "", nil
	}
	pos := normalize.ParsePosition(raw)
	if pos == model.PositionUnknown && !strings.EqualFold(raw, string(model.PositionUnknown)) {
		return "", fmt.Errorf("%w: unknown position %q", ErrBadRequest, raw)
	}
	return pos, nil
}

func decodeBody(r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limit))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
