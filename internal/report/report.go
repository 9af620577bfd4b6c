package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/interval/internal/model"
	"github.com/verte-zerg/interval/pkg/duration"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const terminalWidthBackup = 80

var labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// ParseFormat validates an output format name. Empty is text.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Summarize builds the reporting view of d.
func Summarize(name, input, grammar string, d duration.Duration) model.Summary {
	s := model.Summary{
		Name:     name,
		Input:    input,
		Grammar:  grammar,
		ISO:      d.ISO8601(),
		Seconds:  d.Seconds().String(),
		Sentence: d.String(),
		Parts:    []model.PartRow{},
	}
	totals := d.Totals()
	for _, u := range duration.Units() {
		if v := totals.Get(u); !v.IsZero() {
			s.Parts = append(s.Parts, model.PartRow{Unit: u.String(), Value: v.Trim(0).String()})
		}
	}
	return s
}

// WithProjection records an anchor and the instant it was moved to.
func WithProjection(s model.Summary, anchor, result time.Time) model.Summary {
	s.Anchor = &anchor
	s.Result = &result
	return s
}

// FromRecord summarizes a stored interval.
func FromRecord(rec model.Record) model.Summary {
	s := Summarize(rec.Name, "", "", rec.Duration)
	s.ISO = rec.Term
	return s
}

// Renderer writes summaries in one output format.
type Renderer struct {
	W      io.Writer
	Format string
	Color  bool
	// Width clips text lines; zero means no clipping.
	Width int
}

// NewRenderer detects color and width from w.
func NewRenderer(w io.Writer, format string, color bool) Renderer {
	r := Renderer{W: w, Format: format, Color: ShouldUseColor(w, color)}
	if isTerminal(w) {
		r.Width = TerminalWidth()
	}
	return r
}

// Render writes one summary.
func (r Renderer) Render(s model.Summary) error {
	switch r.Format {
	case FormatJSON:
		return r.json(s)
	case FormatYAML:
		return r.yaml(s)
	default:
		return r.writeLines(r.summaryLines(s))
	}
}

// RenderList writes several summaries; text output is one table row each.
func (r Renderer) RenderList(items []model.Summary) error {
	if items == nil {
		items = []model.Summary{}
	}
	switch r.Format {
	case FormatJSON:
		return r.json(items)
	case FormatYAML:
		return r.yaml(items)
	}
	if len(items) == 0 {
		return r.writeLines([]string{"No intervals."})
	}
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		label := s.Name
		if label == "" {
			label = s.Input
		}
		rows = append(rows, []string{label, s.ISO, s.Seconds, s.Sentence})
	}
	headers := []string{"Name", "ISO 8601", "Seconds", "Sentence"}
	lines := formatTable(headers, rows, map[int]bool{2: true})
	if r.Color {
		lines[0] = labelStyle.Render(lines[0])
	}
	return r.writeLines(lines)
}

func (r Renderer) summaryLines(s model.Summary) []string {
	var fields [][2]string
	if s.Name != "" {
		fields = append(fields, [2]string{"Name", s.Name})
	}
	if s.Input != "" {
		fields = append(fields, [2]string{"Input", s.Input})
	}
	if s.Grammar != "" {
		fields = append(fields, [2]string{"Grammar", s.Grammar})
	}
	fields = append(fields,
		[2]string{"ISO 8601", s.ISO},
		[2]string{"Seconds", s.Seconds},
		[2]string{"Sentence", s.Sentence},
	)
	if s.Anchor != nil && s.Result != nil {
		fields = append(fields,
			[2]string{"Anchor", s.Anchor.Format(time.RFC3339Nano)},
			[2]string{"Result", s.Result.Format(time.RFC3339Nano)},
		)
	}

	labelWidth := 0
	for _, f := range fields {
		if w := displayWidth(f[0]); w > labelWidth {
			labelWidth = w
		}
	}
	lines := make([]string, 0, len(fields)+len(s.Parts)+2)
	for _, f := range fields {
		label := padCell(f[0]+":", labelWidth+1, false)
		if r.Color {
			label = labelStyle.Render(label)
		}
		lines = append(lines, label+" "+f[1])
	}
	if len(s.Parts) > 0 {
		rows := make([][]string, 0, len(s.Parts))
		for _, p := range s.Parts {
			rows = append(rows, []string{p.Unit, p.Value})
		}
		lines = append(lines, "")
		lines = append(lines, formatTable([]string{"Unit", "Value"}, rows, map[int]bool{1: true})...)
	}
	return lines
}

func (r Renderer) writeLines(lines []string) error {
	for _, line := range clip(lines, r.Width) {
		if _, err := fmt.Fprintln(r.W, line); err != nil {
			return err
		}
	}
	return nil
}

func (r Renderer) json(v any) error {
	enc := json.NewEncoder(r.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r Renderer) yaml(v any) error {
	enc := yaml.NewEncoder(r.W)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// TerminalWidth returns the width of stdout or a fallback.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor honors NO_COLOR, then force, then whether w is a terminal.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
