package models

import "fmt"

// DeltaKind discriminates the two shapes of a StatDelta.
type DeltaKind string

const (
	DeltaShot  DeltaKind = "shot"
	DeltaEvent DeltaKind = "event"
)

// EventType names the non-shot counters a delta can increment.
type EventType string

const (
	EventRebound EventType = "rebound"
	EventAssist  EventType = "assist"
	EventFoul    EventType = "foul"
)

// ShotDelta carries the shot-specific fields of a delta.
type ShotDelta struct {
	Points int  `json:"points"`
	Made   bool `json:"made"`
}

// StatDelta is one atomic scoring event: a shot attempt or a counted
// event (rebound, assist, foul) tagged with player and period. Deltas
// are immutable once created; they are applied optimistically to local
// state, queued, and later flushed to the server in a batch.
//
// Construction is the only operation. Validity beyond structural shape
// (player in game, game live) is the scoring engine's responsibility.
type StatDelta struct {
	Kind     DeltaKind  `json:"kind"`
	PlayerID string     `json:"playerId"`
	Period   int        `json:"period"`
	Shot     *ShotDelta `json:"shot,omitempty"`
	Event    EventType  `json:"event,omitempty"`
}

// NewShotDelta builds a delta for a shot attempt worth points (1..3).
func NewShotDelta(playerID string, period, points int, made bool) StatDelta {
	return StatDelta{
		Kind:     DeltaShot,
		PlayerID: playerID,
		Period:   period,
		Shot:     &ShotDelta{Points: points, Made: made},
	}
}

// NewEventDelta builds a delta for a rebound, assist, or foul.
func NewEventDelta(playerID string, period int, event EventType) StatDelta {
	return StatDelta{
		Kind:     DeltaEvent,
		PlayerID: playerID,
		Period:   period,
		Event:    event,
	}
}

// Validate checks the structural shape of the delta.
func (d StatDelta) Validate() error {
	if d.PlayerID == "" {
		return fmt.Errorf("delta missing player id")
	}
	if d.Period < 1 || d.Period > NumPeriods {
		return fmt.Errorf("delta period %d out of range", d.Period)
	}
	switch d.Kind {
	case DeltaShot:
		if d.Shot == nil {
			return fmt.Errorf("shot delta missing shot payload")
		}
		if d.Shot.Points < 1 || d.Shot.Points > 3 {
			return fmt.Errorf("shot delta point value %d out of range", d.Shot.Points)
		}
	case DeltaEvent:
		switch d.Event {
		case EventRebound, EventAssist, EventFoul:
		default:
			return fmt.Errorf("unknown event type %q", d.Event)
		}
	default:
		return fmt.Errorf("unknown delta kind %q", d.Kind)
	}
	return nil
}

// SyncStatus reflects the state of the pending-delta queue relative to
// the server. Purely observational; it drives the UI indicator only.
type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncPending SyncStatus = "pending"
	SyncSyncing SyncStatus = "syncing"
	SyncError   SyncStatus = "error"
)
