package booking

import "fmt"

type Status string

const (
	StatusPending          Status = "Pending"
	StatusInProgress       Status = "In Progress"
	StatusReadyForDelivery Status = "Ready for Delivery"
	StatusCompleted        Status = "Completed"
)

// ParseStatus closes the enum: anything outside the four fixed values is
// rejected rather than stored as free text.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusReadyForDelivery, StatusCompleted:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// Any status may move to any other. Owners need to revert mis-clicks, so
// there is no forward-only guard table.

// Notifies reports whether entering this status emails the customer.
// Pending is the default no-news state.
func (s Status) Notifies() bool {
	return s == StatusInProgress || s == StatusReadyForDelivery || s == StatusCompleted
}
