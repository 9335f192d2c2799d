package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/garnet-screening/internal/domain/element"
)

type elementsOptions struct {
	coordination string
}

// NewElementsCmd inspects the property table.
func NewElementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elements",
		Short: "Inspect the element property table",
	}
	cmd.AddCommand(newElementsListCmd(), newElementsShowCmd())
	return cmd
}

func newElementsListCmd() *cobra.Command {
	opts := &elementsOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every element in the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			all, err := cliCtx.Service.Elements(cmd.Context())
			if err != nil {
				return err
			}
			var out []*element.Element
			for _, e := range all {
				if opts.coordination == "" || e.HasCoordination(opts.coordination) {
					out = append(out, e)
				}
			}
			rows := make([][]string, 0, len(out))
			for _, e := range out {
				rows = append(rows, elementRow(e))
			}
			return printRecords(cmd, out, elementHeaders, rows)
		},
	}
	cmd.Flags().StringVar(&opts.coordination, "coordination", "", "only elements known to adopt this coordination tag")
	return cmd
}

func newElementsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show SYMBOL",
		Short:   "Show one element",
		Example: "  gscreen elements show Y",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			e, err := cliCtx.Service.Element(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRecords(cmd, e, elementHeaders, [][]string{elementRow(e)})
		},
	}
}

var elementHeaders = []string{"Symbol", "Mass", "EN", "Oxidation states", "Coordination", "HHI"}

func elementRow(e *element.Element) []string {
	ox := make([]string, len(e.OxidationStates))
	for i, o := range e.OxidationStates {
		ox[i] = strconv.Itoa(o)
	}
	coord := "unknown"
	if e.CoordinationKnown() {
		coord = strings.Join(e.Coordination, ",")
	}
	return []string{
		e.Symbol,
		strconv.FormatFloat(e.Mass, 'f', 3, 64),
		strconv.FormatFloat(e.Electronegativity, 'f', 2, 64),
		strings.Join(ox, ","),
		coord,
		strconv.FormatFloat(e.HHI, 'f', 0, 64),
	}
}

//Personal.AI order the ending
