package service

import (
	"context"
	"time"

	"github.com/okian/scout/internal/adapters/storage"
	"github.com/okian/scout/internal/domain/model"
)

// archiver stores the raw record behind every player the workers accept.
// Replayed records are already archived.
type archiver struct {
	archive Archive
	now     func() time.Time
}

func (a *archiver) Archive(ctx context.Context, job model.IngestJob, p model.Player) error {
	if job.Source == SourceReplay {
		return nil
	}
	return a.archive.SaveRaw(ctx, storage.RawRecord{
		ID:          p.ID,
		Season:      p.Season,
		Fingerprint: job.Fingerprint,
		Payload:     job.Raw,
		Source:      job.Source,
		UpdatedAt:   a.now(),
	})
}
