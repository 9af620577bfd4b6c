package duration

import (
	"regexp"
	"strings"
	"time"

	"github.com/govalues/decimal"
)

// MaxPrecision is the largest number of fractional second digits Format
// will render.
const MaxPrecision = 19

const isoNumber = `([+-]?\d+(?:[.,]\d+)?)`

var isoPattern = regexp.MustCompile(`^([+-])?P(?:` +
	isoNumber + `W|` +
	`(?:` + isoNumber + `Y)?(?:` + isoNumber + `M)?(?:` + isoNumber + `D)?` +
	`(T(?:` + isoNumber + `H)?(?:` + isoNumber + `M)?(?:` + isoNumber + `S)?)?` +
	`)$`)

// submatch index of each unit in isoPattern.
var isoGroups = [unitCount]int{
	Year: 3, Month: 4, Week: 2, Day: 5, Hour: 7, Minute: 8, Second: 9,
}

const (
	isoSignGroup = 1
	isoTimeGroup = 6
)

// ISO8601 renders d with seconds in their shortest form.
func (d Duration) ISO8601() string { return d.Format(-1) }

// Format renders d as an ISO 8601 duration. A negative precision prints
// seconds in shortest form; otherwise seconds are rounded to exactly
// precision fractional digits.
//
// Parts are merged by unit first. When every nonzero total is negative the
// output gets a single leading "-"; mixed signs are printed per designator.
// An all-zero duration is "P".
func (d Duration) Format(precision int) string {
	if precision > MaxPrecision {
		precision = MaxPrecision
	}
	totals := d.Totals()
	sign := ""
	if totals.allNegative() {
		sign = "-"
		totals = totals.Neg()
	}

	var b strings.Builder
	b.WriteString(sign)
	b.WriteByte('P')
	for _, u := range []Unit{Year, Month, Week, Day} {
		writeField(&b, totals[u], u)
	}
	if !totals[Hour].IsZero() || !totals[Minute].IsZero() || !totals[Second].IsZero() {
		b.WriteByte('T')
		writeField(&b, totals[Hour], Hour)
		writeField(&b, totals[Minute], Minute)
		if s := totals[Second]; !s.IsZero() {
			if precision >= 0 {
				s = s.Round(precision).Pad(precision)
			} else {
				s = s.Trim(0)
			}
			b.WriteString(s.String())
			b.WriteByte('S')
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, v decimal.Decimal, u Unit) {
	if v.IsZero() {
		return
	}
	b.WriteString(v.Trim(0).String())
	b.WriteByte(u.Designator())
}

// ParseISO8601Parts reads an ISO 8601 duration such as "P1Y2M3DT4H5M6.5S"
// or "-P2W". A leading sign applies to every field and each field may carry
// its own sign. Either "." or "," marks a fraction, and only the last
// nonzero field may have one.
func ParseISO8601Parts(text string) ([]Part, error) {
	m := isoPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, parseError(text, "")
	}
	overall := 1
	if m[isoSignGroup] == "-" {
		overall = -1
	}

	var parts []Part
	fractional, lastNonZero := -1, -1
	for _, u := range Units() {
		raw := m[isoGroups[u]]
		if raw == "" {
			continue
		}
		v, err := decimal.Parse(strings.TrimPrefix(strings.Replace(raw, ",", ".", 1), "+"))
		if err != nil {
			return nil, parseError(text, err.Error())
		}
		if !v.IsInt() {
			if fractional >= 0 {
				return nil, parseError(text, "more than one fractional field")
			}
			fractional = len(parts)
		}
		if overall < 0 {
			v = v.Neg()
		}
		if !v.IsZero() {
			lastNonZero = len(parts)
		}
		parts = append(parts, Part{Unit: u, Magnitude: v})
	}

	if len(parts) == 0 {
		if m[isoTimeGroup] != "" {
			return nil, parseError(text, "time designator without fields")
		}
		return nil, parseError(text, "no designators")
	}
	if m[isoTimeGroup] == "T" {
		return nil, parseError(text, "time designator without fields")
	}
	if fractional >= 0 && fractional != lastNonZero {
		return nil, parseError(text, "fraction on a field that is not the last nonzero one")
	}
	return parts, nil
}

// ParseISO8601 reads text and measures it against the clock's current
// instant with the default projector.
func ParseISO8601(text string, c Clock) (Duration, error) {
	parts, err := ParseISO8601Parts(text)
	if err != nil {
		return Duration{}, err
	}
	return DefaultProjector.Build(clockOrSystem(c).Now(), parts...), nil
}

// MustParseISO8601 is ParseISO8601 for constants; it panics on error.
func MustParseISO8601(text string) Duration {
	d, err := ParseISO8601(text, FixedClock(time.Unix(0, 0).UTC()))
	if err != nil {
		panic(err)
	}
	return d
}
