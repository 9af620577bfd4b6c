// Package main provides the CLI entrypoint for interval.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/govalues/decimal"
	"github.com/rickb777/date/v2"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/interval/internal/config"
	"github.com/verte-zerg/interval/internal/explorer"
	"github.com/verte-zerg/interval/internal/logging"
	"github.com/verte-zerg/interval/internal/model"
	"github.com/verte-zerg/interval/internal/report"
	"github.com/verte-zerg/interval/internal/store"
	"github.com/verte-zerg/interval/pkg/duration"
	"github.com/verte-zerg/interval/pkg/interval"
)

const (
	defaultPrecision = -1
	defaultOverflow  = "clamp"
	defaultOutput    = report.FormatText
	defaultLogLevel  = "warn"
	defaultLogFormat = "text"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	flagConfig      string
	flagPrecision   int
	flagOverflow    string
	flagStrictEmpty bool
	flagNow         string
	flagOutput      string
	flagColor       bool
	flagDB          string
	flagLogLevel    string
	flagLogFormat   string

	projectAnchor string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "interval",
		Short:         "Parse, encode and project calendar-aware intervals",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "config file (default: $XDG_CONFIG_HOME/interval/config.toml)")
	flags.IntVar(&flagPrecision, "precision", defaultPrecision, "fractional second digits to write (-1 for shortest)")
	flags.StringVar(&flagOverflow, "overflow", defaultOverflow, "calendar overflow policy (clamp or normalize)")
	flags.BoolVar(&flagStrictEmpty, "strict-empty", false, "reject blank legacy input instead of reading it as empty")
	flags.StringVar(&flagNow, "now", "", "pin the clock (RFC 3339 or YYYY-MM-DD)")
	flags.StringVarP(&flagOutput, "output", "o", defaultOutput, "output format (text, json or yaml)")
	flags.BoolVar(&flagColor, "color", false, "force colored text output")
	flags.StringVar(&flagDB, "db", "", "database path (default: $XDG_DATA_HOME/interval/interval.db)")
	flags.StringVar(&flagLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn or error)")
	flags.StringVar(&flagLogFormat, "log-format", defaultLogFormat, "log format (text or json)")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newEncodeCmd())
	rootCmd.AddCommand(newSumCmd())
	rootCmd.AddCommand(newProjectCmd("since", "Move an anchor forward by an interval", false))
	rootCmd.AddCommand(newProjectCmd("ago", "Move an anchor backward by an interval", true))
	rootCmd.AddCommand(newSaveCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newExploreCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// app is what every command runs against once flags and config are merged.
type app struct {
	settings model.Settings
	clock    duration.Clock
	codec    *interval.Codec
	logger   *slog.Logger
	renderer report.Renderer
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "precision", &flagPrecision, fileCfg.Codec.Precision)
	applyStringConfig(cmd, "overflow", &flagOverflow, fileCfg.Codec.Overflow)
	applyBoolConfig(cmd, "strict-empty", &flagStrictEmpty, fileCfg.Codec.StrictEmpty)
	applyStringConfig(cmd, "db", &flagDB, fileCfg.Store.Path)
	applyStringConfig(cmd, "output", &flagOutput, fileCfg.Output.Format)
	applyBoolConfig(cmd, "color", &flagColor, fileCfg.Output.Color)
	applyStringConfig(cmd, "log-level", &flagLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &flagLogFormat, fileCfg.Log.Format)

	overflow, err := duration.ParseOverflowPolicy(flagOverflow)
	if err != nil {
		return nil, fmt.Errorf("invalid --overflow value: %w", err)
	}
	output, err := report.ParseFormat(flagOutput)
	if err != nil {
		return nil, fmt.Errorf("invalid --output value: %w", err)
	}
	settings := model.Settings{
		Precision:   flagPrecision,
		Overflow:    overflow,
		StrictEmpty: flagStrictEmpty,
		DBPath:      flagDB,
		Output:      output,
		Color:       flagColor,
		LogLevel:    flagLogLevel,
		LogFormat:   flagLogFormat,
	}
	if settings.DBPath == "" {
		settings.DBPath = config.DefaultDBPath()
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), settings.LogLevel, settings.LogFormat)
	if err != nil {
		return nil, err
	}

	clock := duration.SystemClock
	if flagNow != "" {
		now, err := parseInstant(flagNow)
		if err != nil {
			return nil, fmt.Errorf("invalid --now value: %w", err)
		}
		clock = duration.FixedClock(now)
	}

	codec := interval.NewCodec(clock, settings.Precision)
	codec.Parser.Projector = duration.Projector{Overflow: settings.Overflow}
	codec.Parser.RejectEmpty = settings.StrictEmpty
	codec.Parser.Logger = logger

	return &app{
		settings: settings,
		clock:    clock,
		codec:    codec,
		logger:   logger,
		renderer: report.NewRenderer(cmd.OutOrStdout(), settings.Output, settings.Color),
	}, nil
}

func validateSettings(s model.Settings) error {
	if s.Precision < -1 || s.Precision > duration.MaxPrecision {
		return fmt.Errorf("--precision must be between -1 and %d", duration.MaxPrecision)
	}
	return nil
}

func (a *app) summarize(name, input, grammar string, d duration.Duration) model.Summary {
	s := report.Summarize(name, input, grammar, d)
	s.ISO = d.Format(a.settings.Precision)
	return s
}

func (a *app) openStore() (*store.Store, error) {
	st, err := store.Open(a.settings.DBPath, a.codec, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func (a *app) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		a.logger.Warn("failed to close db", "error", err)
	}
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse TEXT...",
		Short: "Parse interval text in any supported grammar",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runParseCmd,
	}
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	items := make([]model.Summary, 0, len(args))
	for _, text := range args {
		res, err := a.codec.Parser.Match(text)
		if err != nil {
			return err
		}
		items = append(items, a.summarize("", text, res.Grammar, res.Duration))
	}
	if len(items) == 1 {
		return a.renderer.Render(items[0])
	}
	return a.renderer.RenderList(items)
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode SECONDS...",
		Short: "Encode numbers of seconds as ISO 8601",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEncodeCmd,
	}
}

func runEncodeCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	items := make([]model.Summary, 0, len(args))
	for _, arg := range args {
		n, err := decimal.Parse(strings.TrimSpace(arg))
		if err != nil {
			return fmt.Errorf("invalid number of seconds %q: %w", arg, err)
		}
		iso, err := a.codec.Encode(n)
		if err != nil {
			return err
		}
		if a.settings.Output == report.FormatText {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), iso); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}
		items = append(items, a.summarize("", arg, "", duration.FromSeconds(n)))
	}
	if a.settings.Output == report.FormatText {
		return nil
	}
	return a.renderer.RenderList(items)
}

func newSumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sum TEXT...",
		Short: "Add intervals, keeping every part",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSumCmd,
	}
}

func runSumCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	var total duration.Duration
	for _, text := range args {
		d, err := a.codec.Decode(text)
		if err != nil {
			return err
		}
		total = total.Add(d)
	}
	return a.renderer.Render(a.summarize("", strings.Join(args, " + "), "", total))
}

func newProjectCmd(use, short string, backward bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " TEXT",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectCmd(cmd, args[0], backward)
		},
	}
	cmd.Flags().StringVar(&projectAnchor, "anchor", "", "anchor instant (RFC 3339 or YYYY-MM-DD, default: now)")
	return cmd
}

func runProjectCmd(cmd *cobra.Command, text string, backward bool) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	res, err := a.codec.Parser.Match(text)
	if err != nil {
		return err
	}

	var anchor any = a.clock.Now()
	if projectAnchor != "" {
		anchor, err = parseAnchor(projectAnchor)
		if err != nil {
			return fmt.Errorf("invalid --anchor value: %w", err)
		}
	}
	start, err := toTime(anchor)
	if err != nil {
		return err
	}

	project := a.codec.Parser.Projector.Since
	if backward {
		project = a.codec.Parser.Projector.Ago
	}
	result, err := project(res.Duration, anchor)
	if err != nil {
		return err
	}
	s := a.summarize("", text, res.Grammar, res.Duration)
	return a.renderer.Render(report.WithProjection(s, start, result))
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME TEXT",
		Short: "Store a named interval",
		Args:  cobra.ExactArgs(2),
		RunE:  runSaveCmd,
	}
}

func runSaveCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	name, text := args[0], args[1]
	res, err := a.codec.Parser.Match(text)
	if err != nil {
		return err
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer a.closeStore(st)

	rec, err := st.Save(context.Background(), name, res.Duration)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			return fmt.Errorf("%w (delete it first)", err)
		}
		return err
	}
	s := report.FromRecord(rec)
	s.Input = text
	s.Grammar = res.Grammar
	return a.renderer.Render(s)
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a named interval",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer a.closeStore(st)

	rec, err := st.Get(context.Background(), args[0])
	if err != nil {
		return notFound(err)
	}
	return a.renderer.Render(report.FromRecord(rec))
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List named intervals",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer a.closeStore(st)

	recs, err := st.List(context.Background())
	if err != nil {
		return err
	}
	items := make([]model.Summary, 0, len(recs))
	for _, rec := range recs {
		items = append(items, report.FromRecord(rec))
	}
	return a.renderer.RenderList(items)
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a named interval",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer a.closeStore(st)

	if err := st.Delete(context.Background(), args[0]); err != nil {
		return notFound(err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0]); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Type intervals and watch how they parse",
		Args:  cobra.NoArgs,
		RunE:  runExploreCmd,
	}
}

func runExploreCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	m := explorer.NewModel(a.codec.Parser, a.settings.Precision)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run explorer: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := config.WriteTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "interval %s\n", version)
			return err
		},
	}
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w (see: interval list)", err)
	}
	return err
}

// parseInstant accepts RFC 3339 or a bare date at midnight UTC.
func parseInstant(s string) (time.Time, error) {
	a, err := parseAnchor(s)
	if err != nil {
		return time.Time{}, err
	}
	return toTime(a)
}

// parseAnchor returns a time.Time for RFC 3339 input and a date.Date for
// YYYY-MM-DD.
func parseAnchor(s string) (any, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	d, err := date.ParseISO(s)
	if err != nil {
		return nil, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", s)
	}
	return d, nil
}

func toTime(anchor any) (time.Time, error) {
	switch a := anchor.(type) {
	case time.Time:
		return a, nil
	case date.Date:
		return time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: got %T", duration.ErrAnchorType, anchor)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
