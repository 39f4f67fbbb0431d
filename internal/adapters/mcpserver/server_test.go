package mcpserver_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scout/internal/adapters/mcpserver"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func text(res *mcp.CallToolResult) string {
	if res == nil || len(res.Content) == 0 {
		return ""
	}
	if tc, ok := res.Content[0].(*mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func loadedService(t *testing.T) *service.Service {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc := service.New(service.WithWorkerCount(2))
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	raws := []normalize.Raw{
		{"id": 1, "name": "Ada", "position": "FW", "season": "2024-2025", "current_rating": 72, "peak_potential": 91, "matches": 20, "goals": 9},
		{"id": 2, "name": "Ben", "position": "MF", "season": "2024-2025", "current_rating": 70, "peak_potential": 84, "matches": 18, "goals": 3},
		{"id": 3, "name": "Cy", "position": "FW", "season": "2024-2025", "current_rating": 69, "peak_potential": 88, "matches": 16, "goals": 5},
	}
	if _, err := svc.Ingest(ctx, raws, service.SourceAPI); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := svc.WaitIdle(ctx); err != nil {
		t.Fatalf("wait idle: %v", err)
	}
	return svc
}

func TestTools(t *testing.T) {
	Convey("Given MCP tools over a loaded roster", t, func() {
		svc := loadedService(t)
		Reset(func() { _ = svc.Stop(context.Background()) })
		srv := mcpserver.New(svc, "test", mcpserver.WithMaxLimit(2))
		ctx := context.Background()

		Convey("Then every tool is registered", func() {
			names := make([]string, 0)
			for _, tool := range srv.Tools() {
				names = append(names, tool.Name)
			}
			So(names, ShouldResemble, []string{
				"get_player", "similar_players", "shot_map", "compare_players", "scouting_report", "top_prospects",
			})
			So(srv.MCP(), ShouldNotBeNil)
			So(srv.Handler(), ShouldNotBeNil)
		})

		Convey("When getting a player", func() {
			res, _, err := srv.GetPlayer(ctx, nil, mcpserver.PlayerArgs{PlayerID: 1})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)

			var view service.PlayerView
			So(json.Unmarshal([]byte(text(res)), &view), ShouldBeNil)
			So(view.Player.Name, ShouldEqual, "Ada")
			So(view.Rank, ShouldEqual, 1)
		})

		Convey("When the player is missing or unknown", func() {
			res, _, err := srv.GetPlayer(ctx, nil, mcpserver.PlayerArgs{})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)

			res, _, _ = srv.ScoutingReport(ctx, nil, mcpserver.PlayerArgs{PlayerID: 404})
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldContainSubstring, "not found")
		})

		Convey("When asking for similar players and a shot map", func() {
			res, _, _ := srv.SimilarPlayers(ctx, nil, mcpserver.PlayerArgs{PlayerID: 1})
			So(res.IsError, ShouldBeFalse)
			So(text(res), ShouldContainSubstring, `"name": "Cy"`)

			res, _, _ = srv.ShotMap(ctx, nil, mcpserver.PlayerArgs{PlayerID: 1})
			var shots service.ShotMap
			So(json.Unmarshal([]byte(text(res)), &shots), ShouldBeNil)
			So(shots.Goals, ShouldEqual, 9)
		})

		Convey("When comparing players", func() {
			res, _, _ := srv.ComparePlayers(ctx, nil, mcpserver.CompareArgs{PlayerIDs: []int64{1, 2}})
			So(res.IsError, ShouldBeFalse)
			So(text(res), ShouldContainSubstring, "attacking_variance")

			res, _, _ = srv.ComparePlayers(ctx, nil, mcpserver.CompareArgs{})
			So(res.IsError, ShouldBeTrue)
		})

		Convey("When listing top prospects", func() {
			res, _, _ := srv.TopProspects(ctx, nil, mcpserver.TopArgs{Limit: 50})
			var entries []map[string]any
			So(json.Unmarshal([]byte(text(res)), &entries), ShouldBeNil)
			So(len(entries), ShouldEqual, 2)

			res, _, _ = srv.TopProspects(ctx, nil, mcpserver.TopArgs{Position: "MF"})
			So(json.Unmarshal([]byte(text(res)), &entries), ShouldBeNil)
			So(len(entries), ShouldEqual, 1)

			res, _, _ = srv.TopProspects(ctx, nil, mcpserver.TopArgs{Position: "winger"})
			So(res.IsError, ShouldBeTrue)
		})
	})
}
