package model

import "time"

// IngestJob carries one raw upstream record through the ingest queue.
type IngestJob struct {
	ID          string
	Fingerprint string
	Source      string
	Raw         map[string]any
	ReceivedAt  time.Time
}
