package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/interval/internal/model"
	"github.com/verte-zerg/interval/pkg/duration"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Unit", "Value", "Note"}
	rows := [][]string{
		{"years", "1", "calendar"},
		{"seconds", "6.235", "fixed"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	require.Len(t, lines, 3)
	assert.Equal(t, "Unit     Value  Note", lines[0])
	assert.Equal(t, "years        1  calendar", lines[1])
	assert.Equal(t, "seconds  6.235  fixed", lines[2])
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "ISO 8601"}, [][]string{{"休暇", "P2W"}}, nil)
	assert.Equal(t, "Name  ISO 8601", lines[0])
	assert.Equal(t, "休暇  P2W", lines[1])
}

func TestClip(t *testing.T) {
	assert.Equal(t, []string{"abcd…"}, clip([]string{"abcdefgh"}, 5))
	assert.Equal(t, []string{"abc"}, clip([]string{"abc"}, 0))
}

func sampleSummary() model.Summary {
	d := duration.Years(1).Add(duration.Months(2)).Add(duration.Days(3))
	return Summarize("", "1 year 2 mons 3 days", "native", d)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	r := Renderer{W: &buf, Format: FormatText}
	require.NoError(t, r.Render(sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "Input:    1 year 2 mons 3 days\n")
	assert.Contains(t, out, "Grammar:  native\n")
	assert.Contains(t, out, "ISO 8601: P1Y2M3D\n")
	assert.Contains(t, out, "Sentence: 1 year, 2 months, and 3 days\n")
	assert.Contains(t, out, "months      2\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderProjection(t *testing.T) {
	anchor := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	result := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	s := WithProjection(Summarize("", "1 mon", "native", duration.Months(1)), anchor, result)

	var buf bytes.Buffer
	require.NoError(t, Renderer{W: &buf, Format: FormatText}.Render(s))
	assert.Contains(t, buf.String(), "Result:   2024-02-29T00:00:00Z")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Renderer{W: &buf, Format: FormatJSON}.Render(sampleSummary()))

	var got model.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "P1Y2M3D", got.ISO)
	assert.Equal(t, []model.PartRow{{Unit: "years", Value: "1"}, {Unit: "months", Value: "2"}, {Unit: "days", Value: "3"}}, got.Parts)
	assert.Nil(t, got.Anchor)
}

func TestRenderListYAML(t *testing.T) {
	var buf bytes.Buffer
	items := []model.Summary{
		Summarize("short", "", "", duration.Minutes(5)),
		Summarize("long", "", "", duration.Weeks(2)),
	}
	require.NoError(t, Renderer{W: &buf, Format: FormatYAML}.RenderList(items))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "short", got[0]["name"])
	assert.Equal(t, "PT5M", got[0]["iso8601"])
	assert.Equal(t, "1209600", got[1]["seconds"])
}

func TestRenderListText(t *testing.T) {
	var buf bytes.Buffer
	items := []model.Summary{
		Summarize("short", "", "", duration.Minutes(5)),
		Summarize("negative", "", "", duration.Hours(-1)),
	}
	require.NoError(t, Renderer{W: &buf, Format: FormatText}.RenderList(items))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name      ISO 8601  Seconds  Sentence", lines[0])
	assert.Equal(t, "short     PT5M          300  5 minutes", lines[1])
	assert.Equal(t, "negative  -PT1H       -3600  -1 hour", lines[2])
}

func TestRenderEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Renderer{W: &buf, Format: FormatText}.RenderList(nil))
	assert.Equal(t, "No intervals.\n", buf.String())

	buf.Reset()
	require.NoError(t, Renderer{W: &buf, Format: FormatJSON}.RenderList(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFromRecordKeepsStoredTerm(t *testing.T) {
	rec := model.Record{Name: "x", Term: "PT6.235S", Duration: duration.SecondsOf(6)}
	s := FromRecord(rec)
	assert.Equal(t, "PT6.235S", s.ISO)
	assert.Equal(t, "x", s.Name)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestShouldUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, ShouldUseColor(&bytes.Buffer{}, false))
	assert.True(t, ShouldUseColor(&bytes.Buffer{}, true))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldUseColor(&bytes.Buffer{}, true))
}
