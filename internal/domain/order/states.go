package order

type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusQuoted     Status = "QUOTED"
	StatusAccepted   Status = "ACCEPTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// AdvanceTargets are the statuses a caller may request through the
// status-update operation. Quoting and acceptance have their own operations.
var AdvanceTargets = map[Status]bool{
	StatusInProgress: true,
	StatusReady:      true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanQuote allows a quote on any order that has not reached a terminal state.
// Re-quoting an already quoted or accepted order is permitted.
func (s Status) CanQuote() bool {
	return !s.IsTerminal()
}

// CanAccept allows acceptance only of a standing quote.
func (s Status) CanAccept() bool {
	return s == StatusQuoted
}

// CanCancel rejects cancellation of delivered or already cancelled orders.
func (s Status) CanCancel() bool {
	return !s.IsTerminal()
}

// CanAdvance validates a status-update request. Cancellation is gated by
// CanCancel; the progress targets are accepted from any non-terminal state.
// Jumps among IN_PROGRESS/READY/DELIVERED are deliberately not forced into
// single steps, only the terminal guard holds.
func (s Status) CanAdvance(target Status) bool {
	if !AdvanceTargets[target] {
		return false
	}
	if target == StatusCancelled {
		return s.CanCancel()
	}
	return !s.IsTerminal()
}
