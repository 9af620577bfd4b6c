package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/interval/internal/model"
	"github.com/verte-zerg/interval/internal/store"
)

// run executes the CLI and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestParseCmd(t *testing.T) {
	isolate(t)
	out, err := run(t, "parse", "--now", "2024-01-01", "1 year 2 mons 3 days")
	require.NoError(t, err)
	assert.Contains(t, out, "Grammar:  native\n")
	assert.Contains(t, out, "ISO 8601: P1Y2M3D\n")
	assert.Contains(t, out, "Sentence: 1 year, 2 months, and 3 days\n")
}

func TestParseCmdJSON(t *testing.T) {
	isolate(t)
	out, err := run(t, "parse", "-o", "json", "@ 1 hour 30 mins ago")
	require.NoError(t, err)

	var got model.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "verbose", got.Grammar)
	assert.Equal(t, "-PT1H30M", got.ISO)
	assert.Equal(t, "-5400", got.Seconds)
}

func TestParseCmdSeveralInputs(t *testing.T) {
	isolate(t)
	out, err := run(t, "parse", "PT5M", "1 day")
	require.NoError(t, err)
	assert.Contains(t, out, "PT5M")
	assert.Contains(t, out, "P1D")
	assert.Contains(t, out, "Name")
}

func TestParseCmdRejectsGarbage(t *testing.T) {
	isolate(t)
	_, err := run(t, "parse", "P1.5Y2M")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ISO 8601 duration")
}

func TestEncodeCmd(t *testing.T) {
	isolate(t)
	out, err := run(t, "encode", "--", "36000", "-90")
	require.NoError(t, err)
	assert.Equal(t, "PT36000S\n-PT90S\n", out)

	out, err = run(t, "encode", "--precision", "3", "6.2346")
	require.NoError(t, err)
	assert.Equal(t, "PT6.235S\n", out)

	_, err = run(t, "encode", "ten")
	assert.Error(t, err)
}

func TestSumCmdKeepsParts(t *testing.T) {
	isolate(t)
	out, err := run(t, "sum", "--now", "2024-01-01", "1 day", "PT2H", "P1D")
	require.NoError(t, err)
	assert.Contains(t, out, "ISO 8601: P2DT2H\n")
	assert.Contains(t, out, "Input:    1 day + PT2H + P1D\n")
}

func TestSinceCmd(t *testing.T) {
	isolate(t)
	out, err := run(t, "since", "--anchor", "2024-01-31", "1 mon")
	require.NoError(t, err)
	assert.Contains(t, out, "Anchor:   2024-01-31T00:00:00Z\n")
	assert.Contains(t, out, "Result:   2024-02-29T00:00:00Z\n")

	out, err = run(t, "since", "--overflow", "normalize", "--anchor", "2024-01-31", "1 mon")
	require.NoError(t, err)
	assert.Contains(t, out, "Result:   2024-03-02T00:00:00Z\n")
}

func TestAgoCmd(t *testing.T) {
	isolate(t)
	out, err := run(t, "ago", "--anchor", "2024-03-01T12:00:00Z", "P1D")
	require.NoError(t, err)
	assert.Contains(t, out, "Result:   2024-02-29T12:00:00Z\n")

	out, err = run(t, "ago", "--now", "2024-03-31", "P1M")
	require.NoError(t, err)
	assert.Contains(t, out, "Result:   2024-02-29T00:00:00Z\n")

	_, err = run(t, "ago", "--anchor", "yesterday", "P1D")
	assert.Error(t, err)
}

func TestStoreCommands(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "intervals.db")

	out, err := run(t, "save", "--db", db, "--now", "2024-01-01", "sprint", "P2W")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:     sprint\n")
	assert.Contains(t, out, "ISO 8601: P2W\n")

	_, err = run(t, "save", "--db", db, "sprint", "P1W")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrDuplicateName)

	_, err = run(t, "save", "--db", db, "--now", "2024-01-01", "pause", "PT10M")
	require.NoError(t, err)

	out, err = run(t, "show", "--db", db, "sprint")
	require.NoError(t, err)
	assert.Contains(t, out, "Sentence: 2 weeks\n")

	out, err = run(t, "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "pause")
	assert.Contains(t, out, "sprint")

	out, err = run(t, "delete", "--db", db, "pause")
	require.NoError(t, err)
	assert.Equal(t, "Deleted pause\n", out)

	_, err = run(t, "show", "--db", db, "pause")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = run(t, "delete", "--db", db, "pause")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListCmdEmpty(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, "list", "--db", filepath.Join(dir, "empty.db"))
	require.NoError(t, err)
	assert.Equal(t, "No intervals.\n", out)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "interval.toml")
	require.NoError(t, os.WriteFile(path, []byte("[codec]\nprecision = 3\noverflow = \"normalize\"\n"), 0o644))

	out, err := run(t, "encode", "--config", path, "1.5")
	require.NoError(t, err)
	assert.Equal(t, "PT1.500S\n", out)

	out, err = run(t, "encode", "--config", path, "--precision", "0", "1.4")
	require.NoError(t, err)
	assert.Equal(t, "PT1S\n", out)

	out, err = run(t, "since", "--config", path, "--anchor", "2023-01-31", "1 mon")
	require.NoError(t, err)
	assert.Contains(t, out, "Result:   2023-03-03T00:00:00Z\n")
}

func TestConfigFileUnknownKey(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "interval.toml")
	require.NoError(t, os.WriteFile(path, []byte("[codec]\nprecission = 3\n"), 0o644))

	_, err := run(t, "encode", "--config", path, "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestInvalidFlags(t *testing.T) {
	isolate(t)
	_, err := run(t, "parse", "--overflow", "wrap", "P1D")
	assert.Error(t, err)

	_, err = run(t, "parse", "--output", "csv", "P1D")
	assert.Error(t, err)

	_, err = run(t, "parse", "--precision", "20", "P1D")
	assert.Error(t, err)

	_, err = run(t, "parse", "--now", "soon", "P1D")
	assert.Error(t, err)
}

func TestStrictEmpty(t *testing.T) {
	isolate(t)
	out, err := run(t, "parse", "-o", "json", "")
	require.NoError(t, err)
	assert.Contains(t, out, `"grammar": "native"`)

	_, err = run(t, "parse", "--strict-empty", "")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	isolate(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "interval dev\n", out)
}

func TestParseAnchor(t *testing.T) {
	a, err := parseAnchor("2024-02-29")
	require.NoError(t, err)
	tm, err := toTime(a)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29T00:00:00Z", tm.Format("2006-01-02T15:04:05Z07:00"))

	_, err = parseAnchor("29/02/2024")
	assert.Error(t, err)
}
