package interval

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/verte-zerg/interval/pkg/duration"
)

// Parser dispatches text to grammars in order. The first grammar whose
// shape matches wins, even when it captured no field: an empty or blank
// string is an empty duration under the native grammar. Set RejectEmpty to
// let such matches fall through to the next grammar instead.
//
// A legacy string that matches none of the first three grammars reaches the
// ISO 8601 grammar, so its error reads as an ISO failure naming the input.
type Parser struct {
	Grammars    []Grammar
	Clock       duration.Clock
	Projector   duration.Projector
	RejectEmpty bool
	Logger      *slog.Logger
}

// Result is a parse together with the grammar that produced it.
type Result struct {
	Grammar  string
	Match    Match
	Duration duration.Duration
}

// NewParser returns a parser over the default grammars measuring elapsed
// spans from clock with clamped calendar overflow.
func NewParser(clock duration.Clock) *Parser {
	return &Parser{
		Grammars:  DefaultGrammars(),
		Clock:     clock,
		Projector: duration.DefaultProjector,
	}
}

// Parse returns the duration for text.
func (p *Parser) Parse(text string) (duration.Duration, error) {
	res, err := p.Match(text)
	if err != nil {
		return duration.Duration{}, err
	}
	return res.Duration, nil
}

// Match runs the grammar cascade and reports which grammar matched.
func (p *Parser) Match(text string) (Result, error) {
	logger := p.logger()
	var syntaxErr error
	for _, g := range p.grammars() {
		m, err := g.Match(text)
		if err != nil {
			if isSyntaxError(err) {
				syntaxErr = err
				continue
			}
			return Result{}, fmt.Errorf("%s grammar: %w", g.Name(), err)
		}
		switch m.Status {
		case NoMatch:
			continue
		case MatchedEmpty:
			if p.RejectEmpty {
				logger.Debug("skipping empty match", "grammar", g.Name(), "input", text)
				continue
			}
		}
		parts := m.Parts()
		now := p.clock().Now()
		d := p.Projector.Build(now, parts...)
		logger.Debug("interval parsed", "grammar", g.Name(), "input", text, "status", m.Status.String(), "elapsed", d.Elapsed())
		return Result{Grammar: g.Name(), Match: m, Duration: d}, nil
	}
	if syntaxErr != nil {
		return Result{}, syntaxErr
	}
	return Result{}, &duration.ParseError{Input: text, Reason: "no grammar matched"}
}

func (p *Parser) grammars() []Grammar {
	if len(p.Grammars) == 0 {
		return DefaultGrammars()
	}
	return p.Grammars
}

func (p *Parser) clock() duration.Clock {
	if p.Clock == nil {
		return duration.SystemClock
	}
	return p.Clock
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}
