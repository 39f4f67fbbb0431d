// Package mcpserver exposes the scouting queries as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/scout/internal/adapters/repository"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/internal/domain/scouting"
)

// Defaults for the top_prospects tool.
const (
	DefaultTopLimit = 10
	DefaultMaxLimit = 100
)

// Dependencies are the queries the tools call.
type Dependencies interface {
	Player(ctx context.Context, id int64) (service.PlayerView, error)
	Similar(ctx context.Context, id int64) ([]model.ComparisonEntry, error)
	ShotMap(ctx context.Context, id int64) (service.ShotMap, error)
	Report(ctx context.Context, id int64) (scouting.Report, error)
	Compare(ctx context.Context, ids []int64) (service.Comparison, error)
	Leaderboard(ctx context.Context, limit int, position model.Position) ([]repository.Entry, error)
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PlayerArgs is the input schema for single-player tools.
type PlayerArgs struct {
	PlayerID int64 `json:"player_id" jsonschema:"Player id (required)"`
}

// CompareArgs is the input schema for compare_players.
type CompareArgs struct {
	PlayerIDs []int64 `json:"player_ids" jsonschema:"One to four distinct player ids"`
}

// TopArgs is the input schema for top_prospects.
type TopArgs struct {
	Limit    int    `json:"limit,omitempty" jsonschema:"How many players to return (default 10)"`
	Position string `json:"position,omitempty" jsonschema:"Optional position filter: FW, MF, DF or GK"`
}

// Server holds the MCP server and its tool registry.
type Server struct {
	deps     Dependencies
	mcp      *mcp.Server
	registry []ToolInfo
	maxLimit int
}

// New registers every tool on a fresh MCP server.
func New(deps Dependencies, version string, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		maxLimit: DefaultMaxLimit,
		mcp:      mcp.NewServer(&mcp.Implementation{Name: "scout-mcp", Version: version}, nil),
	}
	for _, opt := range opts {
		opt(s)
	}

	addTool(s, &mcp.Tool{
		Name:        "get_player",
		Description: "Normalized player with leaderboard rank and every recorded season",
	}, s.GetPlayer)
	addTool(s, &mcp.Tool{
		Name:        "similar_players",
		Description: "Up to five same-position players with the closest peak potential",
	}, s.SimilarPlayers)
	addTool(s, &mcp.Tool{
		Name:        "shot_map",
		Description: "Deterministic synthetic goals, misses and key passes for a player",
	}, s.ShotMap)
	addTool(s, &mcp.Tool{
		Name:        "compare_players",
		Description: "Compare one to four players and pick the matching narrative",
	}, s.ComparePlayers)
	addTool(s, &mcp.Tool{
		Name:        "scouting_report",
		Description: "Tier, growth trajectory, strengths, recommendation and season change",
	}, s.ScoutingReport)
	addTool(s, &mcp.Tool{
		Name:        "top_prospects",
		Description: "Top prospects by peak potential, optionally for one position",
	}, s.TopProspects)
	return s
}

func addTool[T any](s *Server, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	s.registry = append(s.registry, ToolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(s.mcp, tool, handler)
}

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []ToolInfo {
	return append([]ToolInfo(nil), s.registry...)
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server { return s.mcp }

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// GetPlayer implements get_player.
func (s *Server) GetPlayer(ctx context.Context, _ *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return toolError(fmt.Errorf("player_id is required")), nil, nil
	}
	return toolJSON(s.deps.Player(ctx, args.PlayerID))
}

// SimilarPlayers implements similar_players.
func (s *Server) SimilarPlayers(ctx context.Context, _ *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return toolError(fmt.Errorf("player_id is required")), nil, nil
	}
	return toolJSON(s.deps.Similar(ctx, args.PlayerID))
}

// ShotMap implements shot_map.
func (s *Server) ShotMap(ctx context.Context, _ *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return toolError(fmt.Errorf("player_id is required")), nil, nil
	}
	return toolJSON(s.deps.ShotMap(ctx, args.PlayerID))
}

// ComparePlayers implements compare_players.
func (s *Server) ComparePlayers(ctx context.Context, _ *mcp.CallToolRequest, args CompareArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(s.deps.Compare(ctx, args.PlayerIDs))
}

// ScoutingReport implements scouting_report.
func (s *Server) ScoutingReport(ctx context.Context, _ *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return toolError(fmt.Errorf("player_id is required")), nil, nil
	}
	return toolJSON(s.deps.Report(ctx, args.PlayerID))
}

// TopProspects implements top_prospects.
func (s *Server) TopProspects(ctx context.Context, _ *mcp.CallToolRequest, args TopArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	limit = min(limit, s.maxLimit)

	var pos model.Position
	if raw := strings.TrimSpace(args.Position); raw != "" {
		pos = normalize.ParsePosition(raw)
		if pos == model.PositionUnknown && !strings.EqualFold(raw, string(model.PositionUnknown)) {
			return toolError(fmt.Errorf("unknown position %q", raw)), nil, nil
		}
	}
	return toolJSON(s.deps.Leaderboard(ctx, limit, pos))
}

func toolJSON[T any](v T, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
