package commands

import (
	"errors"
	"time"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrExpireDealsCommandIsNotConstructed = errors.New(
	"ExpireDealsCommand must be created via NewExpireDealsCommand constructor",
)

// ExpireDealsCommand retires every active deal that ended before Now.
type ExpireDealsCommand struct {
	now   time.Time
	guard guard.ConstructorGuard
}

func NewExpireDealsCommand(now time.Time) (ExpireDealsCommand, error) {
	if now.IsZero() {
		return ExpireDealsCommand{}, errs.NewValueIsRequiredError("now")
	}
	return ExpireDealsCommand{now: now.UTC(), guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireDealsCommand) Validate() error {
	return c.guard.Validate(ErrExpireDealsCommandIsNotConstructed)
}

func (c ExpireDealsCommand) Now() time.Time { return c.now }
