// Package interval reads and writes textual interval values.
//
// Four grammars are supported: the native compact form ("1 year 2 mons
// 3 days 04:05:06"), the verbose form ("@ 1 year 2 mons ago"), the SQL
// standard form ("1-2 3 4:05:06") and ISO 8601 ("P1Y2M3DT4H5M6S"). A Parser
// tries them in that order and builds a duration.Duration from the first
// one that matches.
package interval

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/govalues/decimal"

	"github.com/verte-zerg/interval/pkg/duration"
)

// ErrMagnitude reports a field whose digits do not fit a decimal.
var ErrMagnitude = errors.New("interval field out of range")

// Grammar turns text into a tagged Match.
type Grammar interface {
	Name() string
	Match(text string) (Match, error)
}

// Status tags the outcome of a Grammar match.
type Status uint8

const (
	// NoMatch means the text does not have the grammar's shape.
	NoMatch Status = iota
	// MatchedEmpty means the shape matched but no field was captured.
	MatchedEmpty
	// Matched means at least one field was captured.
	Matched
)

func (s Status) String() string {
	switch s {
	case NoMatch:
		return "no match"
	case MatchedEmpty:
		return "matched empty"
	case Matched:
		return "matched"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Field is one optional captured magnitude. An absent field is distinct from
// a present field whose value is zero.
type Field struct {
	Value   decimal.Decimal
	Present bool
}

// Signs are the group signs a grammar applies on top of each field's own
// sign. Every member is +1 or -1.
type Signs struct {
	Overall   int // applies to every field
	YearMonth int // applies to years and months
	Time      int // applies to hours, minutes and seconds
}

var positive = Signs{Overall: 1, YearMonth: 1, Time: 1}

// Match is the result of running one grammar.
type Match struct {
	Status Status
	Fields [duration.Second + 1]Field
	Signs  Signs
}

// Parts materializes one part per present field, in canonical unit order,
// with the group signs applied.
func (m Match) Parts() []duration.Part {
	var parts []duration.Part
	for _, u := range duration.Units() {
		f := m.Fields[u]
		if !f.Present {
			continue
		}
		sign := m.Signs.Overall
		switch u {
		case duration.Year, duration.Month:
			sign *= m.Signs.YearMonth
		case duration.Hour, duration.Minute, duration.Second:
			sign *= m.Signs.Time
		}
		v := f.Value
		if sign < 0 {
			v = v.Neg()
		}
		parts = append(parts, duration.Part{Unit: u, Magnitude: v})
	}
	return parts
}

// pattern is a grammar backed by a regexp with named groups. Groups named
// after a unit become fields; the sign groups feed Signs.
type pattern struct {
	name  string
	re    *regexp.Regexp
	signs func(groups map[string]string) Signs
}

var groupUnits = map[string]duration.Unit{
	"years":   duration.Year,
	"months":  duration.Month,
	"days":    duration.Day,
	"hours":   duration.Hour,
	"minutes": duration.Minute,
	"seconds": duration.Second,
}

func (p pattern) Name() string { return p.name }

func (p pattern) Match(text string) (Match, error) {
	idx := p.re.FindStringSubmatchIndex(text)
	if idx == nil {
		return Match{Status: NoMatch}, nil
	}
	groups := make(map[string]string)
	for i, name := range p.re.SubexpNames() {
		if name == "" || idx[2*i] < 0 {
			continue
		}
		groups[name] = text[idx[2*i]:idx[2*i+1]]
	}

	m := Match{Status: MatchedEmpty, Signs: positive}
	for name, raw := range groups {
		u, ok := groupUnits[name]
		if !ok {
			continue
		}
		v, err := parseMagnitude(raw)
		if err != nil {
			return Match{}, err
		}
		m.Fields[u] = Field{Value: v, Present: true}
		m.Status = Matched
	}
	if p.signs != nil {
		m.Signs = p.signs(groups)
	}
	return m, nil
}

func parseMagnitude(raw string) (decimal.Decimal, error) {
	v, err := decimal.Parse(strings.TrimPrefix(raw, "+"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrMagnitude, raw, err)
	}
	return v, nil
}

func signOf(s string) int {
	if s == "-" {
		return -1
	}
	return 1
}
