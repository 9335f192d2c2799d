package cli

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

// NewScoreCmd scores one formula by supply risk.
func NewScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score FORMULA",
		Short: "Compute the HHI sustainability score of a formula",
		Example: `  gscreen score Y3Te2Li3O12
  gscreen score Li6.4La3Zr1.4Ta0.6O12 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			out, err := cliCtx.Service.Score(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			symbols := make([]string, 0, len(out.MassFractions))
			for s := range out.MassFractions {
				symbols = append(symbols, s)
			}
			sort.Strings(symbols)
			rows := make([][]string, 0, len(symbols)+1)
			for _, s := range symbols {
				rows = append(rows, []string{s, strconv.FormatFloat(out.MassFractions[s], 'f', 4, 64), ""})
			}
			rows = append(rows, []string{out.Formula, "1.0000", strconv.FormatFloat(out.Score, 'f', 1, 64)})
			return printRecords(cmd, out, []string{"Element", "Mass fraction", "Score"}, rows)
		},
	}
}

//Personal.AI order the ending
