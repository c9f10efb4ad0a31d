package types

type EventTypes string

func (e EventTypes) String() string {
	return string(e)
}

const (
	EventPoolAdded      EventTypes = "farming.v1.EventPoolAdded"
	EventAllocPointSet  EventTypes = "farming.v1.EventAllocPointSet"
	EventCheckpointed   EventTypes = "farming.v1.EventCheckpointed"
	EventReservoirBound EventTypes = "farming.v1.EventReservoirBound"
)

const (
	EventDeposited          EventTypes = "farming.v1.EventDeposited"
	EventWithdrawn          EventTypes = "farming.v1.EventWithdrawn"
	EventEmergencyWithdrawn EventTypes = "farming.v1.EventEmergencyWithdrawn"
	EventRewardPaid         EventTypes = "farming.v1.EventRewardPaid"
)

// IsUserEvent reports whether the event is attributed to a staker rather than
// to the pool administration.
func (e EventTypes) IsUserEvent() bool {
	switch e {
	case EventDeposited, EventWithdrawn, EventEmergencyWithdrawn, EventRewardPaid:
		return true
	default:
		return false
	}
}
