package duration

import (
	"fmt"
	"strings"

	"github.com/govalues/decimal"
)

// Unit identifies one component of a Duration. The declaration order is the
// canonical order used for projection and formatting.
type Unit uint8

const (
	Year Unit = iota
	Month
	Week
	Day
	Hour
	Minute
	Second

	unitCount = int(Second) + 1
)

var unitNames = [unitCount]string{"years", "months", "weeks", "days", "hours", "minutes", "seconds"}

var unitDesignators = [unitCount]byte{'Y', 'M', 'W', 'D', 'H', 'M', 'S'}

// Units returns every unit in canonical order.
func Units() []Unit {
	return []Unit{Year, Month, Week, Day, Hour, Minute, Second}
}

// String returns the plural unit name, e.g. "months".
func (u Unit) String() string {
	if !u.Valid() {
		return fmt.Sprintf("Unit(%d)", uint8(u))
	}
	return unitNames[u]
}

// Singular returns the unit name without the trailing "s".
func (u Unit) Singular() string {
	return strings.TrimSuffix(u.String(), "s")
}

// Designator returns the ISO 8601 letter for the unit.
func (u Unit) Designator() byte {
	if !u.Valid() {
		return '?'
	}
	return unitDesignators[u]
}

// Valid reports whether u is one of the seven known units.
func (u Unit) Valid() bool {
	return int(u) < unitCount
}

// Calendar reports whether the unit has a calendar-dependent length.
func (u Unit) Calendar() bool {
	return u <= Day
}

// ParseUnit accepts a plural or singular unit name.
func ParseUnit(s string) (Unit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range unitNames {
		if name == n || name == strings.TrimSuffix(n, "s") {
			return Unit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown duration unit %q", s)
}

// Part is one unit/magnitude pair of a Duration.
type Part struct {
	Unit      Unit
	Magnitude decimal.Decimal
}

// PartOf builds an integral part.
func PartOf(u Unit, n int64) Part {
	return Part{Unit: u, Magnitude: decimal.MustNew(n, 0)}
}

// Neg returns the part with its magnitude sign flipped.
func (p Part) Neg() Part {
	return Part{Unit: p.Unit, Magnitude: p.Magnitude.Neg()}
}

func (p Part) String() string {
	return p.Magnitude.String() + " " + p.Unit.String()
}

// Totals holds per-unit sums of a list of parts, indexed by Unit.
type Totals [unitCount]decimal.Decimal

// Sum merges parts by unit. Repeated units are added together.
func Sum(parts []Part) Totals {
	var t Totals
	for _, p := range parts {
		if !p.Unit.Valid() {
			continue
		}
		t[p.Unit] = addDecimal(t[p.Unit], p.Magnitude)
	}
	return t
}

// Get returns the total for u.
func (t Totals) Get(u Unit) decimal.Decimal {
	if !u.Valid() {
		return decimal.Zero
	}
	return t[u]
}

// IsZero reports whether every total is zero.
func (t Totals) IsZero() bool {
	for _, v := range t {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// Neg returns the totals with every value negated.
func (t Totals) Neg() Totals {
	var out Totals
	for i, v := range t {
		out[i] = v.Neg()
	}
	return out
}

// allNegative reports whether at least one total is nonzero and every
// nonzero total is negative.
func (t Totals) allNegative() bool {
	seen := false
	for _, v := range t {
		if v.IsZero() {
			continue
		}
		if !v.IsNeg() {
			return false
		}
		seen = true
	}
	return seen
}

// addDecimal keeps the left operand when the sum leaves the decimal range.
func addDecimal(a, b decimal.Decimal) decimal.Decimal {
	s, err := a.Add(b)
	if err != nil {
		return a
	}
	return s
}
