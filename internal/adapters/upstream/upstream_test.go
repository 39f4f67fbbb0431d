package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scout/internal/adapters/upstream"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fastClient(t *testing.T, url string, opts ...upstream.Option) *upstream.Client {
	t.Helper()
	base := []upstream.Option{upstream.WithRateLimit(1000), upstream.WithRetries(2, time.Millisecond)}
	c, err := upstream.NewClient(url, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	Convey("Given invalid base urls", t, func() {
		for _, u := range []string{"", "not a url", "/relative"} {
			_, err := upstream.NewClient(u)
			So(errors.Is(err, upstream.ErrInvalidURL), ShouldBeTrue)
		}
	})
}

func TestClientFetch(t *testing.T) {
	Convey("Given a paginated prediction service", t, func() {
		var perPage atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/players" {
				http.NotFound(w, r)
				return
			}
			perPage.Store(r.URL.Query().Get("per_page"))
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			items := []map[string]any{
				{"PlayerID": page*10 + 1, "PredictedPotential": 80.5},
				{"PlayerID": page*10 + 2, "PredictedPotential": 70},
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "pages": 3})
		}))
		Reset(srv.Close)

		c := fastClient(t, srv.URL+"/", upstream.WithPageSize(2))

		Convey("When fetching", func() {
			records, err := c.Fetch(context.Background())
			So(err, ShouldBeNil)

			Convey("Then every page is returned in order", func() {
				So(len(records), ShouldEqual, 6)
				So(normalize.ID(records[0]), ShouldEqual, 11)
				So(normalize.ID(records[2]), ShouldEqual, 21)
				So(normalize.ID(records[5]), ShouldEqual, 32)
				So(perPage.Load(), ShouldEqual, "2")
			})

			Convey("Then numbers are kept as json.Number", func() {
				So(records[0]["PredictedPotential"], ShouldEqual, json.Number("80.5"))
			})
		})
	})

	Convey("Given a service returning a bare array", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, `[{"id": 1}, "junk", {"id": 2}]`)
		}))
		Reset(srv.Close)

		records, err := fastClient(t, srv.URL).Fetch(context.Background())
		So(err, ShouldBeNil)
		So(len(records), ShouldEqual, 2)
	})

	Convey("Given a service announcing an absurd page count", t, func() {
		for _, body := range []string{
			`{"items": [{"id": 1}], "pages": 1e15}`,
			`{"items": [{"id": 1}], "pages": 10001}`,
			`{"items": [{"id": 1}], "pages": 0}`,
			`{"items": [{"id": 1}], "pages": -3}`,
			`{"items": [{"id": 1}], "pages": "lots"}`,
		} {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = fmt.Fprint(w, body)
			}))

			_, err := fastClient(t, srv.URL).Fetch(context.Background())
			srv.Close()
			So(errors.Is(err, upstream.ErrMalformed), ShouldBeTrue)
		}
	})

	Convey("Given a service returning garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, `"hello"`)
		}))
		Reset(srv.Close)

		_, err := fastClient(t, srv.URL).Fetch(context.Background())
		So(errors.Is(err, upstream.ErrMalformed), ShouldBeTrue)
	})
}

func TestClientRetries(t *testing.T) {
	Convey("Given a service that fails twice before succeeding", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			switch calls.Add(1) {
			case 1:
				w.WriteHeader(http.StatusServiceUnavailable)
			case 2:
				w.WriteHeader(http.StatusTooManyRequests)
			default:
				_, _ = fmt.Fprint(w, `[{"id": 5}]`)
			}
		}))
		Reset(srv.Close)

		records, err := fastClient(t, srv.URL).Fetch(context.Background())

		Convey("Then the request is retried", func() {
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 1)
			So(calls.Load(), ShouldEqual, 3)
		})
	})

	Convey("Given a service answering 404", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		Reset(srv.Close)

		_, err := fastClient(t, srv.URL).Fetch(context.Background())

		Convey("Then it fails without retrying", func() {
			So(errors.Is(err, upstream.ErrUpstreamStatus), ShouldBeTrue)
			So(calls.Load(), ShouldEqual, 1)
		})
	})
}

func TestClientBreaker(t *testing.T) {
	Convey("Given a service that keeps failing", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		Reset(srv.Close)

		c := fastClient(t, srv.URL, upstream.WithRetries(0, time.Millisecond), upstream.WithBreaker(2, time.Minute))
		ctx := context.Background()

		_, err1 := c.Fetch(ctx)
		_, err2 := c.Fetch(ctx)
		_, err3 := c.Fetch(ctx)

		Convey("Then the circuit opens after the threshold", func() {
			So(errors.Is(err1, upstream.ErrUpstreamStatus), ShouldBeTrue)
			So(errors.Is(err2, upstream.ErrUpstreamStatus), ShouldBeTrue)
			So(errors.Is(err3, gobreaker.ErrOpenState), ShouldBeTrue)
			So(calls.Load(), ShouldEqual, 2)
		})
	})
}

func TestFileSource(t *testing.T) {
	Convey("Given a snapshot file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "players.json")
		So(os.WriteFile(path, []byte(`{"items": [{"id": 1}, {"id": 2}], "pages": 1}`), 0o600), ShouldBeNil)
		src := upstream.NewFileSource(path)

		Convey("When fetching", func() {
			records, err := src.Fetch(context.Background())
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 2)
			So(src.Name(), ShouldEqual, "snapshot")
		})

		Convey("When the file is missing", func() {
			_, err := upstream.NewFileSource(filepath.Join(dir, "nope.json")).Fetch(context.Background())
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})

		Convey("When the file changes while watched", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			changed := make(chan struct{}, 1)
			done := make(chan error, 1)
			go func() {
				done <- src.Watch(ctx, func(context.Context) {
					select {
					case changed <- struct{}{}:
					default:
					}
				})
			}()

			// give the watcher time to register before writing
			time.Sleep(100 * time.Millisecond)
			So(os.WriteFile(path, []byte(`[{"id": 3}]`), 0o600), ShouldBeNil)

			select {
			case <-changed:
			case <-time.After(5 * time.Second):
				t.Fatal("watch callback not called")
			}

			cancel()
			So(<-done, ShouldBeNil)
		})
	})
}
