package testutil

import (
	"time"

	"github.com/hupe1980/enginemesh/core"
)

// DrainEvents reads from an event channel until a terminal event arrives, the
// channel closes or the timeout elapses, and returns everything received.
func DrainEvents(ch <-chan core.Event, timeout time.Duration) []core.Event {
	deadline := time.After(timeout)
	var events []core.Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
			switch ev.(type) {
			case core.Complete, core.Error:
				return events
			}
		case <-deadline:
			return events
		}
	}
}

// DepthUpdates filters the depth updates out of an event slice.
func DepthUpdates(events []core.Event) []core.DepthUpdate {
	var updates []core.DepthUpdate
	for _, ev := range events {
		if du, ok := ev.(core.DepthUpdate); ok {
			updates = append(updates, du)
		}
	}
	return updates
}

// Terminal returns the final event of a drained slice, or nil when empty.
func Terminal(events []core.Event) core.Event {
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}
