package upstream

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// watchDebounce coalesces the burst of events a single save produces.
const watchDebounce = 150 * time.Millisecond

// FileSource reads records from a JSON snapshot in the same shape the
// prediction service returns.
type FileSource struct {
	path string
	log  logger.Logger
}

// NewFileSource creates a source for the snapshot at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, log: logger.Get().Named("snapshot")}
}

// Name implements Source.
func (f *FileSource) Name() string { return "snapshot" }

// Fetch implements Source.
func (f *FileSource) Fetch(_ context.Context) ([]normalize.Raw, error) {
	file, err := os.Open(f.path)
	if err != nil {
		metrics.RecordUpstreamFetch(f.Name(), "error")
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = file.Close() }()

	records, _, err := decodeRecords(file)
	if err != nil {
		metrics.RecordUpstreamFetch(f.Name(), "error")
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}
	metrics.RecordUpstreamFetch(f.Name(), "ok")
	return records, nil
}

// Watch calls onChange after the snapshot is written, created or renamed
// into place, until ctx is done. The parent directory is watched because
// editors often replace the file instead of writing to it.
func (f *FileSource) Watch(ctx context.Context, onChange func(context.Context)) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("failed to watch snapshot directory: %w", err)
	}
	target := filepath.Clean(f.path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(watchDebounce)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Warn(ctx, "snapshot watcher error", logger.Error(werr))
		case <-pending:
			pending = nil
			f.log.Info(ctx, "snapshot changed", logger.String("path", f.path))
			onChange(ctx)
		}
	}
}
