package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/internal/domain/element"
)

// SyntheticRecords is a small, hand-checkable element set.  Values are chosen
// for arithmetic convenience, not physical accuracy, except where noted.
func SyntheticRecords() []element.Record {
	return []element.Record{
		{
			Symbol: "Mg", Mass: 24.305, Electronegativity: 1.31, HHI: 5300,
			OxidationStates: []int{2}, Coordination: []string{"6", "8"},
			Radii: []element.RadiusEntry{{Oxidation: 2, Coordination: "8", Radius: 0.89}},
		},
		{
			Symbol: "Li", Mass: 6.94, Electronegativity: 0.98, HHI: 2900,
			OxidationStates: []int{1}, Coordination: []string{"4", "6"},
			Radii: []element.RadiusEntry{{Oxidation: 1, Coordination: "4", Radius: 0.59}},
		},
		{
			Symbol: "O", Mass: 15.999, Electronegativity: 3.44, HHI: 500,
			OxidationStates: []int{-2}, Coordination: []string{"4"},
			Radii: []element.RadiusEntry{{Oxidation: -2, Coordination: "4", Radius: 1.38}},
		},
		// Y3+(VIII), Te6+(VI): Shannon radii.
		{
			Symbol: "Y", Mass: 88.906, Electronegativity: 1.22, HHI: 9800,
			OxidationStates: []int{3}, Coordination: []string{"8"},
			Radii: []element.RadiusEntry{{Oxidation: 3, Coordination: "8", Radius: 1.019}},
		},
		{
			Symbol: "Te", Mass: 127.60, Electronegativity: 2.10, HHI: 2900,
			OxidationStates: []int{-2, 4, 6}, Coordination: []string{"6"},
			Radii: []element.RadiusEntry{{Oxidation: 6, Coordination: "6", Radius: 0.56}},
		},
		// Two oxidation states that both balance the garnet formula with
		// different partners, used for deduplication tests.
		{
			Symbol: "Nb", Mass: 92.906, Electronegativity: 1.60, HHI: 8500,
			OxidationStates: []int{3, 5}, Coordination: []string{"6", "8"},
			Radii: []element.RadiusEntry{{Oxidation: 5, Coordination: "8", Radius: 0.74}, {Oxidation: 3, Coordination: "8", Radius: 0.86}},
		},
		{
			Symbol: "W", Mass: 183.84, Electronegativity: 2.36, HHI: 7000,
			OxidationStates: []int{3, 6}, Coordination: []string{"6"},
			Radii: []element.RadiusEntry{{Oxidation: 6, Coordination: "6", Radius: 0.60}},
		},
		// Electronegative cation used to trip the ordering test.
		{
			Symbol: "Au", Mass: 196.97, Electronegativity: 3.60, HHI: 1100,
			OxidationStates: []int{3}, Coordination: []string{"8"},
		},
		// Coordination unknown: never selected by tag.
		{
			Symbol: "Qq", Mass: 10, Electronegativity: 1.0, HHI: 100,
			OxidationStates: []int{3},
		},
	}
}

// ElementTable builds a Table from SyntheticRecords.
func ElementTable(t testing.TB) *element.Table {
	t.Helper()
	tbl, err := element.NewTable(SyntheticRecords())
	require.NoError(t, err)
	return tbl
}

//Personal.AI order the ending
