package assignment

import (
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// DefaultMaxActivePerRider is the rider concurrency used when none is configured.
const DefaultMaxActivePerRider = 1

// Policy limits how many orders a rider may carry at once.
type Policy struct {
	maxActive int
}

// NewPolicy returns a policy allowing maxActive open assignments per rider.
func NewPolicy(maxActive int) (Policy, error) {
	if maxActive < 1 {
		return Policy{}, errs.NewValueIsOutOfRangeError("maxActive", maxActive, 1, "+inf")
	}
	return Policy{maxActive: maxActive}, nil
}

// DefaultPolicy allows one order per rider.
func DefaultPolicy() Policy {
	return Policy{maxActive: DefaultMaxActivePerRider}
}

func (p Policy) MaxActive() int {
	if p.maxActive < 1 {
		return DefaultMaxActivePerRider
	}
	return p.maxActive
}

// Admit returns ErrRiderBusy when a rider with activeCount open assignments cannot take another.
func (p Policy) Admit(riderID kernel.UUID, activeCount int) error {
	if activeCount >= p.MaxActive() {
		return errs.NewDomainError(errs.ErrRiderBusy,
			fmt.Sprintf("rider %s already carries %d of %d orders", riderID, activeCount, p.MaxActive()))
	}
	return nil
}
