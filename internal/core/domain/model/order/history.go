package order

import (
	"time"

	"marketplace/internal/pkg/errs"
)

// HistoryEntry records that Actor moved the order into Status at At.
type HistoryEntry struct {
	Status Status
	Actor  Actor
	At     time.Time
}

// Validate checks the entry's fields.
func (h HistoryEntry) Validate() error {
	if err := h.Status.Validate(); err != nil {
		return err
	}
	if err := h.Actor.Validate(); err != nil {
		return err
	}
	if h.At.IsZero() {
		return errs.NewValueIsRequiredError("history timestamp")
	}
	return nil
}

// validateHistory checks that history starts at pending and only follows table edges.
func validateHistory(history []HistoryEntry) error {
	if len(history) == 0 {
		return errs.NewValueIsRequiredError("history")
	}
	if history[0].Status != Pending {
		return errs.NewValueIsInvalidError("history must start at pending")
	}
	for i, entry := range history {
		if err := entry.Validate(); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		if _, ok := FindEdge(history[i-1].Status, entry.Status); !ok {
			return errs.NewDomainError(errs.ErrInvalidTransition,
				"history moves from "+history[i-1].Status.String()+" to "+entry.Status.String())
		}
	}
	return nil
}
