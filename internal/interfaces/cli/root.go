// Package cli implements the gscreen command line: screen, tolerance, score,
// species and elements.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/bootstrap"
	"github.com/turtacn/garnet-screening/internal/config"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	Properties   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Service      screening.Service
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration

	cleanup func()
}

// ServiceFactory builds the screening service for a loaded config.  The
// returned func releases whatever the service holds.
type ServiceFactory func(cfg *config.Config, logger logging.Logger) (screening.Service, func(), error)

// BootstrapFactory wires the service and every enabled backend.
func BootstrapFactory(cfg *config.Config, logger logging.Logger) (screening.Service, func(), error) {
	c, err := bootstrap.Build(cfg, logger, bootstrap.Options{})
	if err != nil {
		return nil, nil, err
	}
	return c.Service, c.Close, nil
}

// NewRootCommand creates the root command with its global flags and
// subcommands.  A nil factory uses BootstrapFactory.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	if factory == nil {
		factory = BootstrapFactory
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gscreen",
		Short: "Screen garnet compositions for charge balance, stability and sustainability",
		Long: "gscreen enumerates A3B2Li3O12 garnet compositions, keeps the charge-neutral\n" +
			"ones that pass the Pauling electronegativity test, and ranks the survivors by\n" +
			"Goldschmidt tolerance factor and HHI-weighted sustainability score.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, factory)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cliCtx, err := GetCLIContext(cmd); err == nil && cliCtx.cleanup != nil {
				cliCtx.cleanup()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./gscreen.yaml, then ~/.gscreen/config.yaml)")
	pf.StringVar(&opts.Properties, "properties", "", "element property dataset (JSON or YAML); overrides properties.path")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "table", "output format (table, csv, json, markdown)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output; implies --log-level debug")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "overall run timeout (0 uses screening.timeout)")

	cmd.AddCommand(
		NewScreenCmd(),
		NewToleranceCmd(),
		NewScoreCmd(),
		NewSpeciesCmd(),
		NewElementsCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory ServiceFactory) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
		Timeout:      opts.Timeout,
	}

	// species parsing needs no service.
	if needsService(cmd) {
		svc, cleanup, err := factory(cfg, logger)
		if err != nil {
			return fmt.Errorf("service initialization failed: %w", err)
		}
		cliCtx.Service = svc
		cliCtx.cleanup = cleanup
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

func needsService(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "species" {
			return false
		}
	}
	return true
}

// initConfig loads configuration: --config, then the search paths, then
// environment and defaults alone.
func initConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = findConfig()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.Properties != "" {
		cfg.Properties.Path = opts.Properties
	}
	return cfg, nil
}

func findConfig() string {
	searchPaths := []string{"./gscreen.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".gscreen", "config.yaml"))
	}
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// initLogger creates a console logger on stderr so stdout stays parseable.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	if opts.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// runContext applies --timeout, or the configured screening timeout, to the
// command context.
func (c *CLIContext) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := c.Timeout
	if timeout == 0 && c.Config != nil {
		timeout = c.Config.Screening.Timeout
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	rootCmd := NewRootCommand(nil)
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// printJSON writes indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printTable renders headers and rows with go-pretty.  markdown selects the
// Markdown renderer.
func printTable(cmd *cobra.Command, headers []string, rows [][]string, markdown bool) {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	w.AppendHeader(header)
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		w.AppendRow(row)
	}
	out := w.Render()
	if markdown {
		out = w.RenderMarkdown()
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
}

// printRecords prints data as JSON when --output json is set and as a table
// otherwise.
func printRecords(cmd *cobra.Command, data interface{}, headers []string, rows [][]string) error {
	format := "table"
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = strings.ToLower(cliCtx.OutputFormat)
	}
	switch format {
	case "json":
		return printJSON(cmd, data)
	case "markdown":
		printTable(cmd, headers, rows, true)
	default:
		printTable(cmd, headers, rows, false)
	}
	return nil
}

// PrintError writes err to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

//Personal.AI order the ending
