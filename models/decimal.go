package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v3"
)

// ErrNonFinite is returned for NaN and infinite values, which have no JSON form
var ErrNonFinite = errors.New("number is not finite")

// Decimal is an exact decimal number. It is written to JSON as a bare number
// literal carrying every digit it was parsed from, so values survive a trip
// through the store without float drift.
type Decimal struct {
	d *apd.Decimal
}

// ParseDecimal parses a decimal literal such as "3.5", "-0.10" or "1E+400"
func ParseDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, ErrNonFinite)
	}
	return Decimal{d: d}, nil
}

// DecimalFromFloat converts a float64. The shortest representation that
// round-trips the float is used, so 3.5 becomes 3.5 rather than its binary expansion.
func DecimalFromFloat(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, ErrNonFinite
	}
	d, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid float %v: %w", f, err)
	}
	return Decimal{d: d}, nil
}

// DecimalFromInt converts an integer
func DecimalFromInt(i int64) Decimal {
	return Decimal{d: apd.New(i, 0)}
}

// String returns the decimal text
func (d Decimal) String() string {
	if d.d == nil {
		return "0"
	}
	return d.d.String()
}

// Cmp compares two decimals numerically
func (d Decimal) Cmp(other Decimal) int {
	a, b := d.d, other.d
	if a == nil {
		a = apd.New(0, 0)
	}
	if b == nil {
		b = apd.New(0, 0)
	}
	return a.Cmp(b)
}

// MarshalJSON writes the decimal as an unquoted number
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts a bare number or a quoted decimal string
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
