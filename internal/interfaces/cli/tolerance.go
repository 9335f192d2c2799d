package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/garnet-screening/internal/application/screening"
)

type toleranceOptions struct {
	coordinations []string
}

// NewToleranceCmd evaluates the tolerance factor of one composition.
func NewToleranceCmd() *cobra.Command {
	opts := &toleranceOptions{}
	cmd := &cobra.Command{
		Use:   "tolerance A B C D",
		Short: "Compute the tolerance factor of four site species",
		Long: "Compute the Goldschmidt-style tolerance factor of a garnet from one species\n" +
			"label per site, in A, B, C, D order.  Coordinations default to 8, 6, 4, 4.",
		Example: `  gscreen tolerance Y3+ Te6+ Li1+ O2-
  gscreen tolerance La3+ Zr4+ Li1+ O2- --coordination 8,6,4,4`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTolerance(cmd, opts, args)
		},
	}
	cmd.Flags().StringSliceVar(&opts.coordinations, "coordination", nil, "coordination tag per site, comma separated")
	return cmd
}

func runTolerance(cmd *cobra.Command, opts *toleranceOptions, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	out, err := cliCtx.Service.Tolerance(cmd.Context(), &screening.ToleranceInput{
		Species:       args,
		Coordinations: opts.coordinations,
	})
	if err != nil {
		return err
	}

	value := ""
	if out.Result.Defined() {
		value = strconv.FormatFloat(out.Result.Value, 'f', 4, 64)
	}
	band := "disabled"
	if out.Band.Enabled {
		band = fmt.Sprintf("[%g, %g]", out.Band.Low, out.Band.High)
	}
	var rows [][]string
	for _, sp := range out.Species {
		rows = append(rows, []string{sp.Label(), sp.Coordination, "", "", ""})
	}
	if len(rows) > 0 {
		rows[0][2] = value
		rows[0][3] = out.Result.Status.String()
		rows[0][4] = fmt.Sprintf("%s %t", band, out.WithinBand)
	}
	return printRecords(cmd, out, []string{"Species", "Coordination", "Tolerance", "Status", "Band / within"}, rows)
}

//Personal.AI order the ending
