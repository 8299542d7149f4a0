// Package telemetry tracks session events, window statistics, step timing and
// frame snapshots.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventHit EventType = iota
	EventDeath
	EventReset
	EventJump
	EventDash
	EventKeyFound

	numEventTypes = int(EventKeyFound) + 1
)

func (t EventType) String() string {
	switch t {
	case EventHit:
		return "hit"
	case EventDeath:
		return "death"
	case EventReset:
		return "reset"
	case EventJump:
		return "jump"
	case EventDash:
		return "dash"
	case EventKeyFound:
		return "key_found"
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type EventType
	Tick int32
}

// NewEvent creates an event at tick.
func NewEvent(t EventType, tick int32) Event {
	return Event{Type: t, Tick: tick}
}
