package duration

import (
	"fmt"
	"time"

	"github.com/govalues/decimal"
	"github.com/rickb777/date/v2"
)

// Add sums the elapsed spans and concatenates the parts. Parts are never
// merged here; repeated units are combined only when projecting or
// formatting.
func (d Duration) Add(o Duration) Duration {
	parts := make([]Part, 0, len(d.parts)+len(o.parts))
	parts = append(parts, d.parts...)
	parts = append(parts, o.parts...)
	return Duration{elapsed: addSat(d.elapsed, o.elapsed), parts: parts}
}

// AddSeconds appends n as a seconds part.
func (d Duration) AddSeconds(n decimal.Decimal) Duration {
	return d.Add(FromSeconds(n))
}

// Sub is d.Add(o.Neg()).
func (d Duration) Sub(o Duration) Duration {
	return d.Add(o.Neg())
}

// SubSeconds is d.AddSeconds(-n).
func (d Duration) SubSeconds(n decimal.Decimal) Duration {
	return d.AddSeconds(n.Neg())
}

// Neg flips the sign of the elapsed span and of every part.
func (d Duration) Neg() Duration {
	out := Duration{elapsed: negSat(d.elapsed)}
	if len(d.parts) > 0 {
		out.parts = make([]Part, len(d.parts))
		for i, p := range d.parts {
			out.parts[i] = p.Neg()
		}
	}
	return out
}

// Since returns anchor advanced by the parts of d with clamped calendar
// overflow. The cached elapsed span is not used.
func (d Duration) Since(anchor any) (time.Time, error) {
	return DefaultProjector.Since(d, anchor)
}

// Ago returns anchor moved back by the parts of d.
func (d Duration) Ago(anchor any) (time.Time, error) {
	return DefaultProjector.Ago(d, anchor)
}

// FromNow is Since with the clock's current instant as anchor.
func (d Duration) FromNow(c Clock) time.Time {
	return DefaultProjector.Advance(clockOrSystem(c).Now(), d.Totals())
}

// AgoNow is Ago with the clock's current instant as anchor.
func (d Duration) AgoNow(c Clock) time.Time {
	return DefaultProjector.Advance(clockOrSystem(c).Now(), d.Totals().Neg())
}

// resolveAnchor accepts time.Time, a non-nil *time.Time, a date.Date (taken
// as midnight UTC) or anything with a Time() time.Time method.
func resolveAnchor(v any) (time.Time, error) {
	switch a := v.(type) {
	case time.Time:
		return a, nil
	case *time.Time:
		if a != nil {
			return *a, nil
		}
	case date.Date:
		return time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC), nil
	case interface{ Time() time.Time }:
		return a.Time(), nil
	}
	return time.Time{}, fmt.Errorf("%w: got %T", ErrAnchorType, v)
}

func negSat(d time.Duration) time.Duration {
	if d == saturated(true) {
		return saturated(false)
	}
	return -d
}
