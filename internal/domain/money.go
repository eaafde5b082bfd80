package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a fixed-point money value in cents (two decimal places).
type Amount int64

// RoundHalfUp converts a value in whole currency units to cents,
// rounding half-up at the second decimal.
func RoundHalfUp(v float64) Amount {
	return Amount(math.Floor(v*100 + 0.5))
}

// MulRounded multiplies the amount by a payout multiplier and rounds
// half-up to the nearest cent.
func (a Amount) MulRounded(mult float64) Amount {
	return RoundHalfUp(a.Float() * mult)
}

// Float returns the amount in whole currency units.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseAmount parses a decimal string like "12.34" into cents.
// At most two decimal places are accepted.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := int64(0)
	if frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("amount %q has more than two decimal places", s)
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	if units < 0 || strings.HasPrefix(whole, "-") {
		return Amount(units*100 - cents), nil
	}
	return Amount(units*100 + cents), nil
}
