package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/garnet-screening/internal/application/export"
	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

type screenOptions struct {
	elementUnique bool
	workers       int
	threshold     float64
	band          string
	rank          string
	noScore       bool
	noTolerance   bool
	sites         []string
	file          string
}

// NewScreenCmd runs the configured screening pipeline.
func NewScreenCmd() *cobra.Command {
	opts := &screenOptions{}
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Enumerate, filter and rank garnet compositions",
		Example: `  gscreen screen
  gscreen screen --band 0.8:1.2 --rank pareto -o csv --file candidates.csv
  gscreen screen --site A=La,Y,Nd --site B=Zr,Ta --element-unique`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.elementUnique, "element-unique", false, "collapse oxidation-state variants of the same element assignment")
	f.IntVar(&opts.workers, "workers", 0, "worker goroutines (0 uses screening.worker_count)")
	f.Float64Var(&opts.threshold, "threshold", -1, "minimum cation/anion electronegativity gap (default from config)")
	f.StringVar(&opts.band, "band", "", "tolerance band as LOW:HIGH, or \"off\"")
	f.StringVar(&opts.rank, "rank", "", "ranking: sustainability, tolerance, pareto or none")
	f.BoolVar(&opts.noScore, "no-score", false, "skip the sustainability score")
	f.BoolVar(&opts.noTolerance, "no-tolerance", false, "skip the tolerance factor column (an enabled band still evaluates it)")
	f.StringArrayVar(&opts.sites, "site", nil, "restrict a site's candidates, e.g. A=La,Y (repeatable)")
	f.StringVar(&opts.file, "file", "", "write the result to a file instead of stdout")
	return cmd
}

func runScreen(cmd *cobra.Command, opts *screenOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	format, err := outputFormat(cliCtx.OutputFormat)
	if err != nil {
		return err
	}

	req := screening.RequestFromConfig(cliCtx.Config.Screening)
	if err := opts.apply(cmd, req); err != nil {
		return err
	}

	ctx, cancel := cliCtx.runContext(cmd.Context())
	defer cancel()

	cliCtx.Logger.Debug("Starting screening run",
		logging.Int("sites", len(req.Template.Sites)),
		logging.Bool("species_unique", req.SpeciesUnique),
		logging.String("rank", req.Rank))

	res, err := cliCtx.Service.Run(ctx, req)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if opts.file != "" {
		fh, err := os.Create(opts.file)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "create output file").WithDetail(opts.file)
		}
		defer fh.Close()
		out = fh
	}
	if err := export.Write(out, res, format); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if format != export.FormatTable && format != export.FormatMarkdown {
		fmt.Fprintln(stderr, export.CountsLine(res.Counts))
	}
	for _, f := range res.Failures {
		fmt.Fprintf(stderr, "failed: %s [%s] %s\n", strings.Join(f.Symbols, "-"), f.Phase, f.Error)
	}
	for _, s := range res.SinkErrors {
		fmt.Fprintf(stderr, "sink error: %s\n", s)
	}
	if opts.file != "" {
		fmt.Fprintf(stderr, "wrote %d candidates to %s\n", len(res.Candidates), opts.file)
	}
	return nil
}

// apply overrides req with the flags the user set.
func (o *screenOptions) apply(cmd *cobra.Command, req *screening.Request) error {
	flags := cmd.Flags()
	if o.elementUnique {
		req.SpeciesUnique = false
	}
	if flags.Changed("workers") {
		req.Workers = o.workers
	}
	if flags.Changed("threshold") {
		req.Threshold = o.threshold
	}
	if o.band != "" {
		if err := parseBand(o.band, req); err != nil {
			return err
		}
	}
	if o.rank != "" {
		req.Rank = o.rank
	}
	if o.noScore {
		req.Score = false
	}
	if o.noTolerance {
		req.Tolerance = false
	}
	for _, s := range o.sites {
		if err := restrictSite(s, req); err != nil {
			return err
		}
	}
	return req.Validate()
}

// parseBand reads "off" or "LOW:HIGH".
func parseBand(s string, req *screening.Request) error {
	if strings.EqualFold(s, "off") {
		req.Band.Enabled = false
		return nil
	}
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return errors.InvalidParam("band must be LOW:HIGH or off").WithDetail(s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return errors.InvalidParam("band low bound is not a number").WithDetail(lo)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return errors.InvalidParam("band high bound is not a number").WithDetail(hi)
	}
	req.Band.Enabled = true
	req.Band.Low, req.Band.High = low, high
	return nil
}

// restrictSite applies "NAME=El,El" to the matching template site.
func restrictSite(s string, req *screening.Request) error {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return errors.InvalidParam("site must be NAME=El,El").WithDetail(s)
	}
	var symbols []string
	for _, sym := range strings.Split(list, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	for i := range req.Template.Sites {
		if req.Template.Sites[i].Name == name {
			req.Template.Sites[i].Elements = symbols
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidTemplate, "unknown site").WithDetail(name)
}

// outputFormat maps --output onto an export format.  "text" is accepted as
// table.
func outputFormat(s string) (export.Format, error) {
	if strings.EqualFold(s, "text") {
		return export.FormatTable, nil
	}
	return export.ParseFormat(s)
}

//Personal.AI order the ending
