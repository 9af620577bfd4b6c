// Package duration implements a calendar-aware duration value.
//
// A Duration carries two things: the real-time span it was measured as when
// it was built, and the ordered unit/magnitude parts it was built from. The
// span decides equality and ordering. The parts decide calendar projection
// and formatting, because a month or a year has no fixed length until it is
// laid against a concrete instant.
package duration

import (
	"cmp"
	"strings"
	"time"

	"github.com/govalues/decimal"
)

// Nominal lengths used when a Duration is built from a single unit without
// an anchor. Years and months use the Gregorian averages.
const (
	YearLength   = 31556952 * time.Second // 365.2425 days
	MonthLength  = YearLength / 12
	WeekLength   = 7 * DayLength
	DayLength    = 24 * time.Hour
	HourLength   = time.Hour
	MinuteLength = time.Minute
	SecondLength = time.Second
)

var nominalLength = [unitCount]time.Duration{
	YearLength, MonthLength, WeekLength, DayLength, HourLength, MinuteLength, SecondLength,
}

// Duration is an immutable elapsed span plus the parts it was built from.
// The zero value is an empty duration.
type Duration struct {
	elapsed time.Duration
	parts   []Part
}

// New builds a Duration from an already measured span. Parts are copied and
// kept in the given order; repeated units are allowed.
func New(elapsed time.Duration, parts ...Part) Duration {
	d := Duration{elapsed: elapsed}
	if len(parts) > 0 {
		d.parts = append([]Part(nil), parts...)
	}
	return d
}

// Of builds a single-unit Duration whose span uses the unit's nominal length.
func Of(u Unit, n decimal.Decimal) Duration {
	if !u.Valid() {
		return Duration{}
	}
	return New(scaleNanos(n, int64(nominalLength[u])), Part{Unit: u, Magnitude: n})
}

// FromSeconds builds a seconds-only Duration.
func FromSeconds(n decimal.Decimal) Duration {
	return Of(Second, n)
}

func Years(n int64) Duration     { return Of(Year, decimal.MustNew(n, 0)) }
func Months(n int64) Duration    { return Of(Month, decimal.MustNew(n, 0)) }
func Weeks(n int64) Duration     { return Of(Week, decimal.MustNew(n, 0)) }
func Days(n int64) Duration      { return Of(Day, decimal.MustNew(n, 0)) }
func Hours(n int64) Duration     { return Of(Hour, decimal.MustNew(n, 0)) }
func Minutes(n int64) Duration   { return Of(Minute, decimal.MustNew(n, 0)) }
func SecondsOf(n int64) Duration { return Of(Second, decimal.MustNew(n, 0)) }

// Elapsed returns the span fixed at construction.
func (d Duration) Elapsed() time.Duration { return d.elapsed }

// Seconds returns the elapsed span as an exact number of seconds.
func (d Duration) Seconds() decimal.Decimal {
	s, err := decimal.New(int64(d.elapsed), 9)
	if err != nil {
		return decimal.Zero
	}
	return s.Trim(0)
}

// Parts returns a copy of the parts in insertion order.
func (d Duration) Parts() []Part {
	return append([]Part(nil), d.parts...)
}

// Totals merges the parts by unit.
func (d Duration) Totals() Totals { return Sum(d.parts) }

// IsZero reports whether the elapsed span is zero.
func (d Duration) IsZero() bool { return d.elapsed == 0 }

// Equal compares elapsed spans only.
func (d Duration) Equal(o Duration) bool { return d.elapsed == o.elapsed }

// Compare orders by elapsed span.
func (d Duration) Compare(o Duration) int { return cmp.Compare(d.elapsed, o.elapsed) }

// EqualSeconds reports whether the elapsed span is exactly n seconds.
func (d Duration) EqualSeconds(n decimal.Decimal) bool { return d.CompareSeconds(n) == 0 }

// CompareSeconds orders the elapsed span against n seconds.
func (d Duration) CompareSeconds(n decimal.Decimal) int { return d.Seconds().Cmp(n) }

// String renders the merged parts as an English list, e.g.
// "1 year, 2 months, and 3 days". An empty duration is "0 seconds".
func (d Duration) String() string {
	totals := d.Totals()
	var items []string
	for _, u := range Units() {
		v := totals[u]
		if v.IsZero() {
			continue
		}
		v = v.Trim(0)
		name := u.String()
		if v.Abs().Cmp(decimal.One) == 0 {
			name = u.Singular()
		}
		items = append(items, v.String()+" "+name)
	}
	return sentence(items, "0 seconds")
}

func sentence(items []string, empty string) string {
	switch len(items) {
	case 0:
		return empty
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
