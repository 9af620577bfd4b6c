package duration

import (
	"fmt"
	"time"

	"github.com/govalues/decimal"
	"github.com/rickb777/period"
)

// Period converts the merged parts to a period.Period. The elapsed span is
// not carried over. Fractions are only allowed on the least significant
// nonzero field, so a merge such as 1.5 years plus 2 months fails.
func (d Duration) Period() (period.Period, error) {
	t := d.Totals()
	p, err := period.NewDecimal(t[Year], t[Month], t[Week], t[Day], t[Hour], t[Minute], t[Second])
	if err != nil {
		return period.Zero, fmt.Errorf("convert %s to period: %w", d.ISO8601(), err)
	}
	return p, nil
}

// FromPeriod builds a Duration from the nonzero fields of p, measured from
// anchor with the default projector.
func FromPeriod(anchor time.Time, p period.Period) Duration {
	fields := [unitCount]decimal.Decimal{
		p.YearsDecimal(), p.MonthsDecimal(), p.WeeksDecimal(), p.DaysDecimal(),
		p.HoursDecimal(), p.MinutesDecimal(), p.SecondsDecimal(),
	}
	var parts []Part
	for _, u := range Units() {
		if v := fields[u]; !v.IsZero() {
			parts = append(parts, Part{Unit: u, Magnitude: v})
		}
	}
	return DefaultProjector.Build(anchor, parts...)
}
