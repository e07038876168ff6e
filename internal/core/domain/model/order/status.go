package order

import (
	"fmt"

	"marketplace/internal/pkg/errs"
)

// Status is the lifecycle state of an order. Values are persisted as their string form.
type Status string

const (
	Pending    Status = "pending"
	Accepted   Status = "accepted"
	Preparing  Status = "preparing"
	HandedOver Status = "handed_over"
	PickedUp   Status = "picked_up"
	OnTheWay   Status = "on_the_way"
	Delivered  Status = "delivered"
	Cancelled  Status = "cancelled"
	Rejected   Status = "rejected"
)

// getValidStatuses returns every valid status mapped to whether it is terminal.
func getValidStatuses() map[Status]bool {
	return map[Status]bool{
		Pending:    false,
		Accepted:   false,
		Preparing:  false,
		HandedOver: false,
		PickedUp:   false,
		OnTheWay:   false,
		Delivered:  true,
		Cancelled:  true,
		Rejected:   true,
	}
}

// AllStatuses lists the states in lifecycle order.
func AllStatuses() []Status {
	return []Status{Pending, Accepted, Preparing, HandedOver, PickedUp, OnTheWay, Delivered, Cancelled, Rejected}
}

// ParseStatus converts external input into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

// Validate reports whether s is one of the nine states.
func (s Status) Validate() error {
	if _, ok := getValidStatuses()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", string(s)))
	}
	return nil
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return getValidStatuses()[s]
}

// RequiresRider reports whether an order in s must carry the rider who picked it up.
func (s Status) RequiresRider() bool {
	return s == PickedUp || s == OnTheWay || s == Delivered
}

func (s Status) String() string {
	return string(s)
}
