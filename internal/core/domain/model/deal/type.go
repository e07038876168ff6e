package deal

import (
	"fmt"

	"marketplace/internal/pkg/errs"
)

// Type is the pricing mechanic of a deal.
type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
	TypeBOGO       Type = "bogo"
)

// ParseType converts external input into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t Type) Validate() error {
	switch t {
	case TypePercentage, TypeFixed, TypeBOGO:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("dealType", fmt.Errorf("%q is not a valid deal type", string(t)))
	}
}

func (t Type) String() string {
	return string(t)
}
