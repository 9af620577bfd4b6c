package duration

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/govalues/decimal"
)

// OverflowPolicy decides what happens when a calendar step lands on a day
// that does not exist in the target month.
type OverflowPolicy uint8

const (
	// OverflowClamp moves the day back to the last day of the target month:
	// Jan 31 + 1 month is Feb 28 (or 29), Feb 29 + 1 year is Feb 28.
	OverflowClamp OverflowPolicy = iota
	// OverflowNormalize rolls the excess days into the following month,
	// as time.Time.AddDate does: Jan 31 + 1 month is Mar 3 (or 2).
	OverflowNormalize
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowClamp:
		return "clamp"
	case OverflowNormalize:
		return "normalize"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", uint8(p))
	}
}

// ParseOverflowPolicy reads "clamp" or "normalize". An empty string is clamp.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return OverflowClamp, nil
	case "normalize", "normalise":
		return OverflowNormalize, nil
	default:
		return OverflowClamp, fmt.Errorf("unknown overflow policy %q (want clamp or normalize)", s)
	}
}

// Projector advances instants by per-unit totals.
//
// Units are applied one at a time in canonical order. Calendar units keep the
// wall-clock time in the anchor's location; hours, minutes and seconds add
// absolute time. A fractional calendar magnitude applies its whole part and
// then interpolates the remainder linearly across the next calendar step.
type Projector struct {
	Overflow OverflowPolicy
}

// DefaultProjector clamps calendar overflow.
var DefaultProjector = Projector{Overflow: OverflowClamp}

const maxCalendarSteps = math.MaxInt32

var fixedUnitNanos = map[Unit]int64{
	Hour:   int64(time.Hour),
	Minute: int64(time.Minute),
	Second: int64(time.Second),
}

// Advance returns anchor moved by totals.
func (p Projector) Advance(anchor time.Time, totals Totals) time.Time {
	t := anchor
	for _, u := range Units() {
		v := totals[u]
		if v.IsZero() {
			continue
		}
		if u.Calendar() {
			t = p.calendar(t, u, v)
			continue
		}
		t = t.Add(scaleNanos(v, fixedUnitNanos[u]))
	}
	return t
}

// ElapsedSpan is the signed real time between anchor and Advance(anchor, totals).
// Spans outside the time.Duration range saturate.
func (p Projector) ElapsedSpan(anchor time.Time, totals Totals) time.Duration {
	return p.Advance(anchor, totals).Sub(anchor)
}

// Build creates a Duration whose elapsed span is fixed by projecting parts
// from now.
func (p Projector) Build(now time.Time, parts ...Part) Duration {
	return New(p.ElapsedSpan(now, Sum(parts)), parts...)
}

// Since moves anchor forward by the parts of d.
func (p Projector) Since(d Duration, anchor any) (time.Time, error) {
	t, err := resolveAnchor(anchor)
	if err != nil {
		return time.Time{}, err
	}
	return p.Advance(t, d.Totals()), nil
}

// Ago moves anchor backward by the parts of d.
func (p Projector) Ago(d Duration, anchor any) (time.Time, error) {
	t, err := resolveAnchor(anchor)
	if err != nil {
		return time.Time{}, err
	}
	return p.Advance(t, d.Totals().Neg()), nil
}

func (p Projector) calendar(t time.Time, u Unit, v decimal.Decimal) time.Time {
	whole := v.Trunc(0)
	frac, err := v.Sub(whole)
	if err != nil {
		frac = decimal.Zero
	}
	n := clampSteps(whole)
	base := p.step(t, u, n)
	if frac.IsZero() {
		return base
	}
	next := p.step(t, u, n+frac.Sign())
	gap := next.Sub(base)
	return base.Add(scaleNanos(frac.Abs(), int64(gap)))
}

func (p Projector) step(t time.Time, u Unit, n int) time.Time {
	switch u {
	case Year:
		if p.Overflow == OverflowNormalize {
			return t.AddDate(n, 0, 0)
		}
		return addMonthsClamped(t, n*12)
	case Month:
		if p.Overflow == OverflowNormalize {
			return t.AddDate(0, n, 0)
		}
		return addMonthsClamped(t, n)
	case Week:
		return t.AddDate(0, 0, 7*n)
	case Day:
		return t.AddDate(0, 0, n)
	default:
		return t
	}
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	y += floorDiv(total, 12)
	month := time.Month(total-floorDiv(total, 12)*12) + 1
	if last := daysIn(y, month); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(y, month, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clampSteps(whole decimal.Decimal) int {
	n, _, ok := whole.Int64(0)
	if !ok || n > maxCalendarSteps || n < -maxCalendarSteps {
		if whole.IsNeg() {
			return -maxCalendarSteps
		}
		return maxCalendarSteps
	}
	return int(n)
}

// scaleNanos returns v*unit as a time.Duration, rounded to the nanosecond
// and saturated at the time.Duration range.
func scaleNanos(v decimal.Decimal, unit int64) time.Duration {
	if v.IsZero() || unit == 0 {
		return 0
	}
	neg := v.IsNeg() != (unit < 0)
	prod, err := v.Mul(decimal.MustNew(unit, 0))
	if err != nil {
		return saturated(neg)
	}
	n, _, ok := prod.Round(0).Int64(0)
	if !ok {
		return saturated(neg)
	}
	return time.Duration(n)
}

func saturated(neg bool) time.Duration {
	if neg {
		return math.MinInt64
	}
	return math.MaxInt64
}

// addSat adds two spans, saturating instead of wrapping.
func addSat(a, b time.Duration) time.Duration {
	s := a + b
	switch {
	case a > 0 && b > 0 && s < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && s >= 0:
		return math.MinInt64
	}
	return s
}
