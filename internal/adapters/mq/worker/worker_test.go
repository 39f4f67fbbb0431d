package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/scout/internal/adapters/mq/queue"
	worker "github.com/okian/scout/internal/adapters/mq/worker"
	model "github.com/okian/scout/internal/domain/model"
	logging "github.com/okian/scout/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

type mockUpdater struct {
	mu      sync.Mutex
	players []model.Player
	err     error
}

func (mu *mockUpdater) Upsert(_ context.Context, p model.Player) (bool, error) {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	if mu.err != nil {
		return false, mu.err
	}
	mu.players = append(mu.players, p)
	return true, nil
}

func (mu *mockUpdater) stored() []model.Player {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	return append([]model.Player(nil), mu.players...)
}

type mockArchiver struct {
	mu   sync.Mutex
	jobs []model.IngestJob
	err  error
}

func (ma *mockArchiver) Archive(_ context.Context, job model.IngestJob, _ model.Player) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.jobs = append(ma.jobs, job)
	return ma.err
}

func (ma *mockArchiver) count() int {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	return len(ma.jobs)
}

func rawJob(id string, raw map[string]any) queue.Job {
	return model.IngestJob{ID: id, Source: "test", Raw: raw, ReceivedAt: time.Now()}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := newMockQueue()
		up := &mockUpdater{}
		arch := &mockArchiver{}
		w := worker.NewInMemoryWorker(q, up, worker.WithName("test"), worker.WithArchiver(arch))
		go w.Run(ctx)

		convey.Convey("When a raw record is queued", func() {
			q.jobs <- rawJob("j1", map[string]any{
				"PlayerID": 7.0, "CurrentRating": 95.0, "PredictedPotential": 40.0, "MP": 12.0,
			})

			convey.Convey("Then the normalized player is stored and archived", func() {
				convey.So(waitFor(func() bool { return len(up.stored()) == 1 && arch.count() == 1 }), convey.ShouldBeTrue)
				p := up.stored()[0]
				convey.So(p.ID, convey.ShouldEqual, 7)
				convey.So(p.PeakPotential, convey.ShouldEqual, 100)
				convey.So(p.NextSeasonRating, convey.ShouldEqual, 97)
				convey.So(p.Confidence, convey.ShouldEqual, model.ConfidenceMedium)
			})
		})

		convey.Convey("When storing fails", func() {
			up.mu.Lock()
			up.err = errors.New("boom")
			up.mu.Unlock()
			q.jobs <- rawJob("j2", map[string]any{"id": 1.0})
			q.jobs <- rawJob("j3", map[string]any{"id": 2.0})

			convey.Convey("Then the worker keeps going without archiving", func() {
				time.Sleep(50 * time.Millisecond)
				convey.So(up.stored(), convey.ShouldBeEmpty)
				convey.So(arch.count(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		up := &mockUpdater{}
		arch := &mockArchiver{err: errors.New("disk full")}
		pool := worker.NewPool(4, q, up, worker.WithArchiver(arch))
		pool.Start(ctx)
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many records are queued", func() {
			for i := 1; i <= 200; i++ {
				convey.So(q.Enqueue(ctx, rawJob("j", map[string]any{"id": float64(i), "season": "2024-2025"})), convey.ShouldBeTrue)
			}

			convey.Convey("Then shutdown drains every job", func() {
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				convey.So(pool.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(len(up.stored()), convey.ShouldEqual, 200)
				convey.So(pool.Processed(), convey.ShouldEqual, 200)
				convey.So(pool.Busy(), convey.ShouldEqual, 0)
				convey.So(arch.count(), convey.ShouldEqual, 200)
			})
		})
	})
}

// slowUpdater keeps the last written player per id and stalls on one peak.
type slowUpdater struct {
	mu     sync.Mutex
	latest map[int64]model.Player
	slowOn float64
}

func (su *slowUpdater) Upsert(_ context.Context, p model.Player) (bool, error) {
	if p.PeakPotential == su.slowOn {
		time.Sleep(50 * time.Millisecond)
	}
	su.mu.Lock()
	defer su.mu.Unlock()
	su.latest[p.ID] = p
	return true, nil
}

func TestPoolKeyOrdering(t *testing.T) {
	convey.Convey("Given a pool of two workers and a slow older record", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		up := &slowUpdater{latest: map[int64]model.Player{}, slowOn: 60}
		pool := worker.NewPool(2, q, up)
		pool.Start(ctx)

		convey.Convey("When two versions of one player-season are queued", func() {
			for i := 1; i <= 5; i++ {
				id := float64(i)
				convey.So(q.Enqueue(ctx, rawJob("old", map[string]any{"id": id, "season": "2024-2025", "peak_potential": 60.0, "current_rating": 50.0})), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, rawJob("new", map[string]any{"id": id, "season": "2024-2025", "peak_potential": 80.0, "current_rating": 50.0})), convey.ShouldBeTrue)
			}

			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			convey.So(pool.Shutdown(sctx), convey.ShouldBeNil)

			convey.Convey("Then the newer record wins for every player", func() {
				up.mu.Lock()
				defer up.mu.Unlock()
				convey.So(len(up.latest), convey.ShouldEqual, 5)
				for _, p := range up.latest {
					convey.So(p.PeakPotential, convey.ShouldEqual, 80)
				}
				convey.So(pool.Processed(), convey.ShouldEqual, 10)
			})
		})
	})
}

func TestNewPoolDefaults(t *testing.T) {
	convey.Convey("A non-positive worker count picks a default", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		pool := worker.NewPool(0, newMockQueue(), &mockUpdater{})
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
