package model

// EventType classifies a synthetic pitch event.
type EventType string

// Synthetic event types.
const (
	EventGoal    EventType = "goal"
	EventMiss    EventType = "miss"
	EventKeyPass EventType = "key_pass"
)

// SyntheticEvent is a generated pitch event used to draw shot maps when no
// granular event data exists. X is in [0,100], Y in [0,50].
type SyntheticEvent struct {
	ID   int       `json:"id"`
	Type EventType `json:"type"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}
