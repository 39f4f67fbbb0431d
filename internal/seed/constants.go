package seed

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	SettlePollInterval   = 250 * time.Millisecond
	PercentageMultiplier = 100
	SpotChecks           = 10
)

// RequestIDHeader carries the run id on every request so server logs can be
// grepped for one seeding run.
const RequestIDHeader = "X-Request-ID"
