package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/config"
	"github.com/okian/scout/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestConfigLoading(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("SCOUT_ADDR", ":8080")
		t.Setenv("SCOUT_QUEUE_SIZE", "1000")
		t.Setenv("SCOUT_WORKER_COUNT", "4")

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})
	})

	convey.Convey("Given an invalid configuration", t, func() {
		t.Setenv("SCOUT_QUEUE_SIZE", "0")

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a started service and the full route table", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		svc := app.New(app.WithWorkerCount(2))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		convey.Reset(func() { _ = svc.Stop(ctx) })

		handler := newHandler(ctx, cfg, svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("Then every surface is mounted", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/leaderboard").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/nope").Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Then responses carry a request id", func() {
			convey.So(get("/stats").Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
		})
	})
}

func TestComponentWiring(t *testing.T) {
	convey.Convey("Given a config with a snapshot and an upstream", t, func() {
		cfg := config.New(context.Background())
		cfg.UpstreamURL = "http://predictions.local"
		cfg.SnapshotPath = filepath.Join(t.TempDir(), "players.json")

		convey.Convey("Then both sources are built", func() {
			sources, err := newSources(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(sources), convey.ShouldEqual, 2)
			convey.So(sources[0].Name(), convey.ShouldEqual, "upstream")
			convey.So(sources[1].Name(), convey.ShouldEqual, "snapshot")
		})

		convey.Convey("Then a bad upstream url is reported", func() {
			cfg.UpstreamURL = "not a url"
			_, err := newSources(cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given the memory selection backend", t, func() {
		cfg := config.New(context.Background())
		store, closeFn, err := newSelectionStore(context.Background(), cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(store, convey.ShouldNotBeNil)
		closeFn()
	})

	convey.Convey("Given the metrics updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		convey.So(func() { updateServiceMetrics(app.New()) }, convey.ShouldNotPanic)
	})
}
