// Package profile holds the user preferences consumed by the similarity
// reasoner.
package profile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
)

// DefaultRoleDiscountFactor is the nu used when no profile is configured.
var DefaultRoleDiscountFactor = decimal.RequireFromString("0.4")

// PreferenceProfile is an immutable set of similarity preferences.
type PreferenceProfile struct {
	defaultRoleDiscountFactor decimal.Decimal
}

// New creates a profile. nu must lie in [0,1].
func New(nu decimal.Decimal) (PreferenceProfile, error) {
	if nu.IsNegative() || nu.GreaterThan(decimal.NewFromInt(1)) {
		return PreferenceProfile{}, fmt.Errorf("%w: role discount factor %s outside [0,1]", internalerr.ErrInvalidConfig, nu)
	}
	return PreferenceProfile{defaultRoleDiscountFactor: nu}, nil
}

// Parse creates a profile from the decimal text of nu.
func Parse(nu string) (PreferenceProfile, error) {
	d, err := decimal.NewFromString(nu)
	if err != nil {
		return PreferenceProfile{}, fmt.Errorf("%w: role discount factor %q: %v", internalerr.ErrInvalidConfig, nu, err)
	}
	return New(d)
}

// Default returns the profile with DefaultRoleDiscountFactor.
func Default() PreferenceProfile {
	return PreferenceProfile{defaultRoleDiscountFactor: DefaultRoleDiscountFactor}
}

// DefaultRoleDiscountFactor returns nu.
func (p PreferenceProfile) DefaultRoleDiscountFactor() decimal.Decimal {
	return p.defaultRoleDiscountFactor
}
