package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventShotFired  = "shot_fired"
	EventDryFire    = "dry_fire"
	EventMapLoaded  = "map_loaded"
	EventLoadFailed = "map_load_failed"
)

// EventQueue is a simple FIFO queue. Events pushed during a tick are visible
// to later systems of the same tick and dropped by Scheduler.Update.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Peek returns the queued events without clearing them.
func (q *EventQueue) Peek() []Event {
	if q == nil {
		return nil
	}
	return q.items
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
