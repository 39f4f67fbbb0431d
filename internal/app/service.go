// Package service wires the ingest pipeline, the roster and the query
// operations behind the HTTP API and the MCP tools.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/okian/scout/internal/adapters/mq/queue"
	"github.com/okian/scout/internal/adapters/mq/worker"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/adapters/selection"
	"github.com/okian/scout/internal/adapters/storage"
	"github.com/okian/scout/internal/adapters/upstream"
	"github.com/okian/scout/internal/domain/dedupe"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

const (
	idlePollInterval = 10 * time.Millisecond
	keyLockStripes   = 64
)

// Archive persists raw records and the watchlist.
type Archive interface {
	SaveRaw(ctx context.Context, rec storage.RawRecord) error
	EachRaw(ctx context.Context, fn func(storage.RawRecord) error) error
	Watch(ctx context.Context, playerID int64) (bool, error)
	Unwatch(ctx context.Context, playerID int64) error
	Watchlist(ctx context.Context) ([]storage.WatchEntry, error)
}

// Service implements the API dependencies for the scouting system.
type Service struct {
	mu sync.RWMutex

	// Core components
	roster     repository.Store
	deduper    dedupe.Deduper
	jobs       queue.Queue
	workerPool *worker.Pool
	archive    Archive
	selections selection.Store
	sources    []upstream.Source
	scheduler  *cron.Cron
	refreshes  singleflight.Group

	// held from dedupe check to enqueue so a key's versions queue in
	// the order their fingerprints were recorded
	keyLocks [keyLockStripes]sync.Mutex

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	selectionTTL    time.Duration
	refreshSchedule string
	refreshOnStart  bool
	watch           bool
	currentSeason   string
	now             func() time.Time

	// State
	started  bool
	enqueued atomic.Int64
	cancel   context.CancelFunc
	bg       sync.WaitGroup

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   50_000,
		dedupeSize:  200_000,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.selections == nil {
		s.selections = selection.NewMemoryStore()
	}
	return s
}

// Start initializes the pipeline, replays the archive and schedules refreshes.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting scout service...")

	bgCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.roster = repository.NewRosterStore(bgCtx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	var poolOpts []worker.Option
	if s.archive != nil {
		poolOpts = append(poolOpts, worker.WithArchiver(&archiver{archive: s.archive, now: s.now}))
	}
	s.workerPool = worker.NewPool(s.workerCount, s.jobs, s.roster, poolOpts...)
	s.workerPool.Start(bgCtx)
	s.started = true
	s.mu.Unlock()

	if err := s.replay(ctx); err != nil {
		s.logger.Error(ctx, "archive replay failed", logger.Error(err))
	}

	if err := s.startRefresh(bgCtx); err != nil {
		_ = s.Stop(ctx)
		return err
	}

	s.logger.Info(ctx, "scout service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("sources", len(s.sources)),
	)
	return nil
}

// Stop drains the queue and stops background work.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()
	s.logger.Info(ctx, "stopping scout service...")

	// background refreshes call Ingest, so the lock must be free here
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}
	s.cancel()
	s.bg.Wait()

	err := s.workerPool.Shutdown(ctx)
	if closer, ok := s.roster.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.logger.Info(ctx, "scout service stopped")
	return err
}

// Ingest dedupes raw records and queues the new ones for normalization.
// Records without a player id are rejected. When the queue fills up the
// remaining records are dropped and ErrBackpressure is returned together
// with the counts so far.
func (s *Service) Ingest(ctx context.Context, raws []normalize.Raw, source string) (IngestResult, error) {
	var res IngestResult
	if !s.isStarted() {
		return res, ErrNotStarted
	}

	for _, raw := range raws {
		if normalize.ID(raw) <= 0 {
			res.Rejected++
			metrics.RecordErrorByComponent("service", "missing_player_id")
			continue
		}

		key := normalize.Key(raw)
		fp := normalize.Fingerprint(raw)
		lock := &s.keyLocks[xxhash.Sum64String(key)%keyLockStripes]
		lock.Lock()
		if s.deduper.SeenAndRecord(ctx, key, fp) {
			lock.Unlock()
			res.Duplicates++
			metrics.RecordDuplicate()
			continue
		}

		job := model.IngestJob{
			ID:          uuid.NewString(),
			Fingerprint: fp,
			Source:      source,
			Raw:         raw,
			ReceivedAt:  s.now(),
		}
		queued := s.jobs.Enqueue(ctx, job)
		if !queued {
			// forget it so a retry is not taken for a duplicate
			s.deduper.Unrecord(ctx, key)
		}
		lock.Unlock()
		if !queued {
			s.logger.Warn(ctx, "ingest queue full",
				logger.Int("accepted", res.Accepted), logger.Int("dropped", len(raws)-res.Accepted-res.Duplicates-res.Rejected))
			return res, ErrBackpressure
		}
		s.enqueued.Add(1)
		res.Accepted++
	}

	s.logger.Debug(ctx, "ingested batch",
		logger.String("source", source),
		logger.Int("accepted", res.Accepted),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("rejected", res.Rejected))
	return res, nil
}

// WaitIdle blocks until every accepted record has been processed.
func (s *Service) WaitIdle(ctx context.Context) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for s.workerPool.Processed() < s.enqueued.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Refresh pulls every configured source. Concurrent calls share one run.
func (s *Service) Refresh(ctx context.Context) (IngestResult, error) {
	if !s.isStarted() {
		return IngestResult{}, ErrNotStarted
	}
	v, err, _ := s.refreshes.Do("refresh", func() (interface{}, error) {
		var (
			total IngestResult
			errs  []error
		)
		for _, src := range s.sources {
			records, err := src.Fetch(ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
				continue
			}
			res, err := s.Ingest(ctx, records, src.Name())
			total.Accepted += res.Accepted
			total.Duplicates += res.Duplicates
			total.Rejected += res.Rejected
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			}
		}
		return total, errors.Join(errs...)
	})
	res, _ := v.(IngestResult)
	if err != nil {
		s.logger.Warn(ctx, "refresh finished with errors", logger.Error(err))
	} else {
		s.logger.Info(ctx, "refresh finished",
			logger.Int("accepted", res.Accepted), logger.Int("duplicates", res.Duplicates))
	}
	return res, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"sources":       len(s.sources),
		"currentSeason": s.currentSeason,
		"archive":       s.archive != nil,
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		players := s.roster.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalPlayers"] = players
		stats["totalRecords"] = s.roster.Records(ctx)
		stats["trackedFingerprints"] = s.deduper.Size()
		stats["enqueued"] = s.enqueued.Load()
		stats["processed"] = s.workerPool.Processed()
		stats["busyWorkers"] = s.workerPool.Busy()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalPlayers(players)
	}
	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// replay feeds archived raw records back through the pipeline, waiting for
// the workers whenever the queue fills up.
func (s *Service) replay(ctx context.Context) error {
	if s.archive == nil {
		return nil
	}
	batch := make([]normalize.Raw, 0, 256)
	replayed := 0
	flush := func() error {
		for {
			res, err := s.Ingest(ctx, batch, SourceReplay)
			replayed += res.Accepted
			if !errors.Is(err, ErrBackpressure) {
				batch = batch[:0]
				return err
			}
			// already queued records now count as duplicates
			if err := s.WaitIdle(ctx); err != nil {
				return err
			}
		}
	}

	err := s.archive.EachRaw(ctx, func(rec storage.RawRecord) error {
		batch = append(batch, rec.Payload)
		if len(batch) == cap(batch) {
			return flush()
		}
		return nil
	})
	if err == nil && len(batch) > 0 {
		err = flush()
	}
	s.logger.Info(ctx, "archive replayed", logger.Int("records", replayed))
	return err
}
