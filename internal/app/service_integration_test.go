package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/adapters/storage"
	"github.com/okian/scout/internal/domain/normalize"
)

type fakeSource struct {
	records []normalize.Raw
	err     error
	calls   atomic.Int32
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(context.Context) ([]normalize.Raw, error) {
	f.calls.Add(1)
	return f.records, f.err
}

func openArchive(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "scout.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestServiceArchive(t *testing.T) {
	Convey("Given a service backed by an archive", t, func() {
		db := openArchive(t)
		ctx := context.Background()
		svc := started(t, service.WithArchive(db))

		load(t, svc, roster())

		Convey("Then accepted raw records are archived", func() {
			n, err := db.CountRaw(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 4)

			rec, err := db.GetRaw(ctx, 1, "2024-2025")
			So(err, ShouldBeNil)
			So(rec.Source, ShouldEqual, service.SourceAPI)
			So(rec.Fingerprint, ShouldEqual, normalize.Fingerprint(roster()[0]))
		})

		Convey("When the service restarts on the same archive", func() {
			stop(svc)
			again := started(t, service.WithArchive(db))
			Reset(func() { stop(again) })
			So(again.WaitIdle(ctx), ShouldBeNil)

			Convey("Then the roster is rebuilt from the archive", func() {
				So(again.GetStats()["totalPlayers"], ShouldEqual, 4)
				view, err := again.Player(ctx, 1)
				So(err, ShouldBeNil)
				So(view.Player.Name, ShouldEqual, "Ada Forward")
			})

			Convey("Then replay does not write the records again", func() {
				n, _ := db.CountRaw(ctx)
				So(n, ShouldEqual, 4)
				rec, _ := db.GetRaw(ctx, 1, "2024-2025")
				So(rec.Source, ShouldEqual, service.SourceAPI)
			})
		})

		Convey("When players are watched", func() {
			added, err := svc.Watch(ctx, 2)
			So(err, ShouldBeNil)
			So(added, ShouldBeTrue)

			added, err = svc.Watch(ctx, 2)
			So(err, ShouldBeNil)
			So(added, ShouldBeFalse)

			_, err = svc.Watch(ctx, 404)
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)

			list, err := svc.Watchlist(ctx)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)
			So(list[0].PlayerID, ShouldEqual, 2)
			So(list[0].Player, ShouldNotBeNil)
			So(list[0].Player.Name, ShouldEqual, "Ben Forward")

			So(svc.Unwatch(ctx, 2), ShouldBeNil)
			So(errors.Is(svc.Unwatch(ctx, 2), service.ErrNotFound), ShouldBeTrue)
		})

		Reset(func() { stop(svc) })
	})
}

func TestServiceRefresh(t *testing.T) {
	Convey("Given a service with an upstream source", t, func() {
		src := &fakeSource{records: roster()}
		svc := started(t, service.WithSources(src))
		Reset(func() { stop(svc) })
		ctx := context.Background()

		Convey("When refreshing", func() {
			res, err := svc.Refresh(ctx)
			So(err, ShouldBeNil)
			So(res.Accepted, ShouldEqual, 4)
			So(svc.WaitIdle(ctx), ShouldBeNil)

			Convey("Then the roster is populated", func() {
				So(svc.GetStats()["totalPlayers"], ShouldEqual, 4)
			})

			Convey("Then an unchanged second pull only finds duplicates", func() {
				res, err := svc.Refresh(ctx)
				So(err, ShouldBeNil)
				So(res.Accepted, ShouldEqual, 0)
				So(res.Duplicates, ShouldEqual, 4)
			})
		})

		Convey("When the source fails", func() {
			src.err = errors.New("boom")
			src.records = nil
			_, err := svc.Refresh(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "fake")
		})
	})

	Convey("Given a service that refreshes on start", t, func() {
		src := &fakeSource{records: roster()}
		svc := started(t, service.WithSources(src), service.WithRefreshOnStart(true))
		Reset(func() { stop(svc) })

		Convey("Then the source is pulled without being asked", func() {
			deadline := time.Now().Add(5 * time.Second)
			for svc.GetStats()["totalPlayers"] != 4 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			So(svc.GetStats()["totalPlayers"], ShouldEqual, 4)
			So(src.calls.Load(), ShouldBeGreaterThanOrEqualTo, 1)
		})
	})

	Convey("Given an invalid refresh schedule", t, func() {
		svc := service.New(service.WithSources(&fakeSource{}), service.WithRefreshSchedule("every now and then"))

		Convey("Then start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrInvalidArgument), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a valid refresh schedule", t, func() {
		svc := started(t, service.WithSources(&fakeSource{}), service.WithRefreshSchedule("@every 1h"))

		Convey("Then the service starts and stops cleanly", func() {
			So(svc.GetStats()["started"], ShouldEqual, true)
			stop(svc)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}
