package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in minor currency units (cents). Trips carry a single currency,
// so amounts are never converted between currencies.
type Money int64

// FromMajor converts a major-unit amount (e.g. 12.34) to Money, rounding half away from zero.
func FromMajor(v float64) Money {
	return Money(math.Round(v * 100))
}

// MaxMajor bounds the magnitude of any single decoded amount, in major units.
// Sums over realistic itineraries stay far inside int64 cents.
const MaxMajor = 1e12

// ErrAmountOutOfRange is returned for amounts that are not finite or exceed MaxMajor.
var ErrAmountOutOfRange = errors.New("money amount out of range")

// ParseMajor is FromMajor for untrusted input: it rejects NaN, infinities and
// magnitudes above MaxMajor.
func ParseMajor(v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > MaxMajor {
		return 0, ErrAmountOutOfRange
	}
	return FromMajor(v), nil
}

// Major returns the amount in major units.
func (m Money) Major() float64 { return float64(m) / 100 }

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// NonNegative clamps negative amounts to zero.
func (m Money) NonNegative() Money {
	if m < 0 {
		return 0
	}
	return m
}

// Percent returns floor(m * pct / 100) for non-negative m.
func (m Money) Percent(pct int64) Money {
	return Money(int64(m) * pct / 100)
}

// Exceeds reports whether m > base * num / den without losing precision.
func (m Money) Exceeds(base Money, num, den int64) bool {
	return int64(m)*den > int64(base)*num
}

// String renders the amount with two decimals ("1234.50", "-3.05").
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MinMoney returns the smaller amount.
func MinMoney(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Major(), 'f', -1, 64)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*m = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid money amount %q: %w", string(b), err)
	}
	parsed, err := ParseMajor(v)
	if err != nil {
		return fmt.Errorf("invalid money amount %q: %w", string(b), err)
	}
	*m = parsed
	return nil
}
