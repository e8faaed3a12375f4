package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/config"
	"github.com/gofhir/anthrocheck/pkg/logger"
)

// Exit codes.
const (
	exitValid    = 0
	exitInvalid  = 1
	exitContract = 2
)

// exitError carries a process exit code out of a command.
// A nil err means the outcome was already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// app holds the state shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	envFile   string
	logLevel  string
	logFormat string
	tables    string
	strict    bool
	workers   int

	cfg *config.Config
	log *slog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anthrocheck",
		Short: "Anthropometric record validator",
		Long: `anthrocheck checks age, sex, height, weight and optional body
measurements for plausibility against reference tables.

Records are read as a JSON array or JSON lines, or extracted from FHIR R4
bundles. Configuration comes from ANTHRO_* environment variables and an
optional .env file; flags take precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "read variables from this file (default: ./.env when present)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text, json")
	flags.StringVar(&a.tables, "tables", "", "reference table file (.toml, .yaml)")
	flags.BoolVar(&a.strict, "strict", false, "treat warnings as errors")
	flags.IntVar(&a.workers, "workers", 0, "concurrent validations, 0 for one per CPU")

	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.AddCommand(
		newValidateCmd(a),
		newTablesCmd(a),
		newRulesCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return &exitError{code: exitContract, err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("tables") {
		cfg.Tables = a.tables
	}
	if flags.Changed("strict") {
		cfg.Strict = a.strict
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}
	if err := cfg.Validate(); err != nil {
		return &exitError{code: exitContract, err: err}
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return &exitError{code: exitContract, err: err}
	}
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return &exitError{code: exitContract, err: err}
	}

	a.cfg = cfg
	a.log = logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(a.stderr),
		logger.WithAttr(slog.String("version", ac.Version)),
	)
	return nil
}
