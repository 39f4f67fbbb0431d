// Package worker normalizes queued raw records and writes them to the roster.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/scout/internal/adapters/mq/queue"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
	laneBuffer              = 64
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Updater stores a normalized player.
type Updater interface {
	Upsert(ctx context.Context, p model.Player) (bool, error)
}

// Archiver keeps the raw record behind a stored player.
type Archiver interface {
	Archive(ctx context.Context, job model.IngestJob, p model.Player) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	updater  Updater
	archiver Archiver
	name     string

	onProcessed func(busy bool)

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:       q,
		updater:     updater,
		name:        "worker",
		onProcessed: func(bool) {},
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.onProcessed(true)
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.String("jobID", job.ID), logger.Error(err))
			}
			w.onProcessed(false)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process normalizes one raw record and stores the result.
func (w *InMemoryWorker) process(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: jobs are passed by value over the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	normStart := time.Now()
	p, report := normalize.NormalizeWithReport(normalize.Raw(job.Raw))
	metrics.RecordNormalizeLatency(float64(time.Since(normStart).Microseconds()) / 1000)
	for _, r := range report.Repairs {
		metrics.RecordRepair(string(r))
	}
	for _, i := range report.Issues {
		metrics.RecordDataQualityIssue(string(i))
	}

	if _, err := w.updater.Upsert(ctx, p); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "roster_error")
		return fmt.Errorf("store player %d/%s: %w", p.ID, p.Season, err)
	}

	if w.archiver != nil {
		if err := w.archiver.Archive(ctx, job, p); err != nil {
			metrics.RecordErrorByComponent("worker", "archive_error")
			w.logger.Warn(ctx, "archiving raw record failed",
				logger.Int64("playerID", p.ID), logger.String("season", p.Season), logger.Error(err))
		}
	}

	metrics.RecordIngested()
	if len(report.Repairs) > 0 {
		w.logger.Debug(ctx, "repaired player record",
			logger.Int64("playerID", p.ID), logger.Int("repairs", len(report.Repairs)))
	}
	return nil
}

// Pool manages multiple workers. Jobs are routed to workers by record key,
// so versions of one player-season are applied in queue order.
type Pool struct {
	workers []*InMemoryWorker
	lanes   []chan Job
	queue   Queue

	shutdown chan struct{}

	processed atomic.Int64
	busy      atomic.Int64

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount picks a
// default from the CPU count.
func NewPool(workerCount int, q Queue, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		lanes:    make([]chan Job, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	track := func(busy bool) {
		if busy {
			pool.busy.Add(1)
			return
		}
		pool.busy.Add(-1)
		pool.processed.Add(1)
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		workerOpts = append(workerOpts, withProcessedHook(track))
		pool.lanes[i] = make(chan Job, laneBuffer)
		pool.workers[i] = NewInMemoryWorker(lane(pool.lanes[i]), updater, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.dispatch(ctx)
	go p.startMetricsUpdater(ctx)
}

// dispatch is the only reader of the queue. It closes every lane once the
// queue is closed and drained.
func (p *Pool) dispatch(ctx context.Context) {
	defer func() {
		for _, l := range p.lanes {
			close(l)
		}
	}()
	for job := range p.queue.Dequeue(ctx) {
		select {
		case p.lanes[p.laneFor(job)] <- job:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) laneFor(job Job) int { //nolint:gocritic // hugeParam: jobs are passed by value over the channel
	key := normalize.Key(normalize.Raw(job.Raw))
	return int(xxhash.Sum64String(key) % uint64(len(p.lanes)))
}

// lane adapts a worker's private channel to Queue.
type lane chan Job

func (l lane) Dequeue(context.Context) <-chan Job { return l }

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns how many jobs the pool finished, successful or not.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Busy returns how many workers are processing a job right now.
func (p *Pool) Busy() int64 {
	return p.busy.Load()
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			busy := int(p.busy.Load())
			metrics.UpdateWorkerActiveCount(busy)
			metrics.UpdateWorkerIdleCount(len(p.workers) - busy)
		}
	}
}

// Shutdown closes the queue, lets workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	close(p.shutdown)

	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
