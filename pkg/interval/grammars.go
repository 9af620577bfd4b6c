package interval

import (
	"errors"
	"regexp"

	"github.com/verte-zerg/interval/pkg/duration"
)

// Each calendar field carries its own sign; one leading sign covers the
// whole clock group: "-1 year -2 mons +3 days -04:05:06".
var nativePattern = regexp.MustCompile(`^` +
	`(?:(?P<years>[+-]?\d+)\syears?)?\s*` +
	`(?:(?P<months>[+-]?\d+)\smons?)?\s*` +
	`(?:(?P<days>[+-]?\d+)\sdays?)?\s*` +
	`(?:(?P<timesign>[+-])?(?P<hours>\d+):(?P<minutes>\d+)(?::(?P<seconds>\d+(?:\.\d+)?))?)?` +
	`$`)

// Every field carries its own sign and a trailing "ago" negates all of
// them: "@ 1 year 2 mons -3 days 4 hours 5 mins 6 secs ago".
var verbosePattern = regexp.MustCompile(`^@\s` +
	`(?:(?P<years>[+-]?\d+)\syears?)?\s*` +
	`(?:(?P<months>[+-]?\d+)\smons?)?\s*` +
	`(?:(?P<days>[+-]?\d+)\sdays?)?\s*` +
	`(?:(?P<hours>[+-]?\d+)\shours?)?\s*` +
	`(?:(?P<minutes>[+-]?\d+)\smins?)?\s*` +
	`(?:(?P<seconds>[+-]?\d+(?:\.\d+)?)\ssecs?)?\s*` +
	`(?P<ago>ago)?` +
	`$`)

// One sign covers years and months, the day has its own, one sign covers
// the clock group: "-1-2 +3 -4:05:06".
var standardPattern = regexp.MustCompile(`^` +
	`(?:(?P<yearmonthsign>[+-])?(?P<years>\d+)(?:-(?P<months>\d+))?)?\s*` +
	`(?:(?P<days>[+-]?\d+)\s*(?P<timesign>[+-])?(?P<hours>\d+):(?P<minutes>\d+)(?::(?P<seconds>\d+(?:\.\d+)?))?)?` +
	`$`)

// NativeCompact is the default server output style.
func NativeCompact() Grammar {
	return pattern{
		name: "native",
		re:   nativePattern,
		signs: func(g map[string]string) Signs {
			s := positive
			s.Time = signOf(g["timesign"])
			return s
		},
	}
}

// Verbose is the "@ ..." output style.
func Verbose() Grammar {
	return pattern{
		name: "verbose",
		re:   verbosePattern,
		signs: func(g map[string]string) Signs {
			s := positive
			if g["ago"] == "ago" {
				s.Overall = -1
			}
			return s
		},
	}
}

// Standard is the SQL standard output style.
func Standard() Grammar {
	return pattern{
		name: "standard",
		re:   standardPattern,
		signs: func(g map[string]string) Signs {
			s := positive
			s.YearMonth = signOf(g["yearmonthsign"])
			s.Time = signOf(g["timesign"])
			return s
		},
	}
}

// ISO8601 adapts duration.ParseISO8601Parts. Malformed input is reported as
// NoMatch together with the *duration.ParseError explaining why.
func ISO8601() Grammar { return isoGrammar{} }

type isoGrammar struct{}

func (isoGrammar) Name() string { return "iso8601" }

func (isoGrammar) Match(text string) (Match, error) {
	parts, err := duration.ParseISO8601Parts(text)
	if err != nil {
		return Match{Status: NoMatch}, err
	}
	m := Match{Status: Matched, Signs: positive}
	for _, p := range parts {
		m.Fields[p.Unit] = Field{Value: p.Magnitude, Present: true}
	}
	return m, nil
}

// DefaultGrammars returns the grammars in dispatch order.
func DefaultGrammars() []Grammar {
	return []Grammar{NativeCompact(), Verbose(), Standard(), ISO8601()}
}

// GrammarByName returns one of the default grammars.
func GrammarByName(name string) (Grammar, bool) {
	for _, g := range DefaultGrammars() {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

func isSyntaxError(err error) bool {
	return errors.Is(err, duration.ErrInvalidISO8601)
}
