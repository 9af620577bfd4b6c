// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/interval/pkg/duration"
)

// Settings is the resolved configuration after flags override the file.
type Settings struct {
	Precision   int
	Overflow    duration.OverflowPolicy
	StrictEmpty bool
	DBPath      string
	Output      string
	Color       bool
	LogLevel    string
	LogFormat   string
}

// Record is a named interval kept in the store.
type Record struct {
	ID          string
	Name        string
	Term        string
	PreciseTerm string
	Duration    duration.Duration
	CreatedAt   time.Time
}

// PartRow is one merged unit total for reporting.
type PartRow struct {
	Unit  string `json:"unit" yaml:"unit"`
	Value string `json:"value" yaml:"value"`
}

// Summary describes one interval for reporting.
type Summary struct {
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Input    string     `json:"input,omitempty" yaml:"input,omitempty"`
	Grammar  string     `json:"grammar,omitempty" yaml:"grammar,omitempty"`
	ISO      string     `json:"iso8601" yaml:"iso8601"`
	Seconds  string     `json:"seconds" yaml:"seconds"`
	Sentence string     `json:"sentence" yaml:"sentence"`
	Parts    []PartRow  `json:"parts" yaml:"parts"`
	Anchor   *time.Time `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Result   *time.Time `json:"result,omitempty" yaml:"result,omitempty"`
}
