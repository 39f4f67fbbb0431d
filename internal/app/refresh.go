package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/okian/scout/pkg/logger"
)

// Watcher is a source that can report changes.
type Watcher interface {
	Watch(ctx context.Context, onChange func(context.Context)) error
}

// startRefresh runs the initial fetch, the cron schedule and source watchers.
func (s *Service) startRefresh(ctx context.Context) error {
	if len(s.sources) == 0 {
		return nil
	}

	if s.refreshOnStart {
		s.goBackground(func() { _, _ = s.Refresh(ctx) })
	}

	if s.refreshSchedule != "" {
		cl := cronLogger{log: s.logger.Named("cron")}
		c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
		if _, err := c.AddFunc(s.refreshSchedule, func() { _, _ = s.Refresh(ctx) }); err != nil {
			return fmt.Errorf("%w: refresh schedule %q: %w", ErrInvalidArgument, s.refreshSchedule, err)
		}
		c.Start()
		s.mu.Lock()
		s.scheduler = c
		s.mu.Unlock()
		s.logger.Info(ctx, "refresh scheduled", logger.String("schedule", s.refreshSchedule))
	}

	if s.watch {
		for _, src := range s.sources {
			w, ok := src.(Watcher)
			if !ok {
				continue
			}
			name := src.Name()
			s.goBackground(func() {
				err := w.Watch(ctx, func(ctx context.Context) { _, _ = s.Refresh(ctx) })
				if err != nil {
					s.logger.Error(ctx, "source watch stopped", logger.String("source", name), logger.Error(err))
				}
			})
		}
	}
	return nil
}

func (s *Service) goBackground(fn func()) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error(context.Background(), "background task panicked", logger.Any("panic", r))
			}
		}()
		fn()
	}()
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(context.Background(), msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(context.Background(), msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
