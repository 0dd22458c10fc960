package domain

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Transition events accepted by the candidate status machine.
const (
	EventConfirm      = "confirm"       // candidate confirmed the course
	EventReject       = "reject"        // admin rejected the candidate
	EventDecline      = "decline"       // candidate declined after the pre-course prompt
	EventReschedule   = "reschedule"    // a new date was requested
	EventRedate       = "redate"        // admin set a new date after a reschedule
	EventOfferAccept  = "offer_accept"  // alternate-position offer accepted
	EventOfferDecline = "offer_decline" // alternate-position offer declined
)

func statusEvents() fsm.Events {
	return fsm.Events{
		{Name: EventConfirm, Src: []string{string(StatusWaiting)}, Dst: string(StatusWorking)},
		{Name: EventReject, Src: []string{string(StatusWaiting), string(StatusReschedule)}, Dst: string(StatusStop)},
		{Name: EventDecline, Src: []string{string(StatusWaiting)}, Dst: string(StatusStop)},
		{Name: EventReschedule, Src: []string{string(StatusWaiting)}, Dst: string(StatusReschedule)},
		{Name: EventRedate, Src: []string{string(StatusReschedule)}, Dst: string(StatusWaiting)},
		{Name: EventOfferAccept, Src: []string{string(StatusStop)}, Dst: string(StatusAltAccepted)},
		{Name: EventOfferDecline, Src: []string{string(StatusStop)}, Dst: string(StatusAltDeclined)},
	}
}

// ApplyTransition fires event against the status machine and returns the
// resulting status. An event that is not legal from the current status
// returns an error and leaves the status unchanged.
func ApplyTransition(current Status, event string) (Status, error) {
	m := fsm.NewFSM(string(current), statusEvents(), fsm.Callbacks{})
	if err := m.Event(context.Background(), event); err != nil {
		return current, fmt.Errorf("status transition %q from %s: %w", event, current, err)
	}
	return Status(m.Current()), nil
}

// CanTransition reports whether event is legal from the current status.
func CanTransition(current Status, event string) bool {
	m := fsm.NewFSM(string(current), statusEvents(), fsm.Callbacks{})
	return m.Can(event)
}
