package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/garnet-screening/internal/domain/element"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// NewSpeciesCmd converts between species labels and (symbol, oxidation)
// pairs.  It works without a property table.
func NewSpeciesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "species",
		Short: "Parse and render species labels",
	}
	cmd.AddCommand(newSpeciesParseCmd(), newSpeciesUnparseCmd())
	return cmd
}

func newSpeciesParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "parse LABEL...",
		Short:   "Split labels such as Fe2+ into symbol and oxidation state",
		Example: "  gscreen species parse Fe2+ O2- Li1+",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			species := make([]element.Species, 0, len(args))
			rows := make([][]string, 0, len(args))
			for _, label := range args {
				sp, err := element.ParseSpeciesValue(label)
				if err != nil {
					return err
				}
				species = append(species, sp)
				rows = append(rows, []string{label, sp.Symbol, strconv.Itoa(sp.OxidationState)})
			}
			return printRecords(cmd, species, []string{"Label", "Symbol", "Oxidation"}, rows)
		},
	}
}

func newSpeciesUnparseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unparse SYMBOL OXIDATION",
		Short:   "Render a symbol and oxidation state as a label",
		Example: "  gscreen species unparse Fe 2\n  gscreen species unparse O -- -2",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ox, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.InvalidParam("oxidation state must be an integer").WithDetail(args[1])
			}
			label := element.UnparseSpecies(args[0], ox)
			sp := element.Species{Symbol: args[0], OxidationState: ox}
			return printRecords(cmd, map[string]interface{}{"species": sp, "label": label},
				[]string{"Symbol", "Oxidation", "Label"},
				[][]string{{args[0], args[1], label}})
		},
	}
}

//Personal.AI order the ending
