package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money holds an amount in "minor units" (cents).
// Example: 5000.00 is stored as 500000. 10.5 is stored as 1050.
type Money int64

// NewMoney builds Money from whole units and cents.
func NewMoney(units, cents int64) Money {
	return Money(units*100 + cents)
}

// ParseMoney reads a non-negative decimal string such as "1000", "10.5"
// or "2500.00". At most two fractional digits are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}

	// 1. Split whole units from the fraction
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && frac == "") || len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	// 2. Parse whole units, guarding against overflow once scaled
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > math.MaxInt64/100-1 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}

	// 3. Pad the fraction to exactly two digits ("5" means 50 cents)
	var cents int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}

	return NewMoney(units, cents), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the amount with exactly two decimals, e.g. "4000.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// Add adds two amounts
func (m Money) Add(other Money) Money {
	return m + other
}

// Subtract removes other from m, refusing to go below zero
func (m Money) Subtract(other Money) (Money, error) {
	if other <= 0 {
		return m, ErrInvalidAmount
	}
	if m < other {
		return m, fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, m, other)
	}
	return m - other, nil
}
