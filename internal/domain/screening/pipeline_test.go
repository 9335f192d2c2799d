package screening_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/internal/domain/element"
	"github.com/turtacn/garnet-screening/internal/domain/screening"
	"github.com/turtacn/garnet-screening/internal/testutil"
)

func lookupAll(t *testing.T, tbl element.PropertyProvider, symbols ...string) []*element.Element {
	t.Helper()
	out := make([]*element.Element, len(symbols))
	for i, s := range symbols {
		e, err := tbl.Lookup(s)
		require.NoError(t, err)
		out[i] = e
	}
	return out
}

func runAll(t *testing.T, tbl element.PropertyProvider, tpl screening.Template) []screening.Record {
	t.Helper()
	pools, err := screening.BuildPools(tbl, tpl)
	require.NoError(t, err)
	g := screening.NewGenerator(pools)
	var recs []screening.Record
	for g.Next() {
		out, err := screening.ScreenTuple(g.Tuple(), screening.Options{Constraint: tpl.Constraint})
		require.NoError(t, err)
		recs = append(recs, out.Records...)
	}
	return recs
}

func TestScreenTuple_MgLiO_Negative(t *testing.T) {
	tbl := testutil.ElementTable(t)
	out, err := screening.ScreenTuple(lookupAll(t, tbl, "Mg", "Li", "O"),
		screening.Options{Constraint: screening.Constraint{{3}, {3}, {12}}})
	require.NoError(t, err)
	assert.Empty(t, out.Records)
	assert.Equal(t, 1, out.Assignments)
	assert.Zero(t, out.ChargeNeutral)
}

func TestScreenTuple_MgLiO_Positive(t *testing.T) {
	tbl := testutil.ElementTable(t)
	out, err := screening.ScreenTuple(lookupAll(t, tbl, "Mg", "Li", "O"),
		screening.Options{Constraint: screening.Constraint{{3}, {18}, {12}}})
	require.NoError(t, err)

	want := []screening.Record{{
		Symbols:         []string{"Mg", "Li", "O"},
		OxidationStates: []int{2, 1, -2},
		Ratio:           []int{3, 18, 12},
	}}
	if diff := cmp.Diff(want, out.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, out.ChargeNeutral)
	assert.Equal(t, 1, out.ElectronegativityPassed)
}

func TestScreenTuple_ElectronegativityRejects(t *testing.T) {
	tbl := testutil.ElementTable(t)
	out, err := screening.ScreenTuple(lookupAll(t, tbl, "Au", "Te", "Li", "O"),
		screening.Options{Constraint: screening.Garnet().Constraint})
	require.NoError(t, err)
	assert.Equal(t, 1, out.ChargeNeutral)
	assert.Empty(t, out.Records)

	relaxed, err := screening.ScreenTuple(lookupAll(t, tbl, "Au", "Te", "Li", "O"),
		screening.Options{Constraint: screening.Garnet().Constraint, Threshold: 0.5})
	require.NoError(t, err)
	assert.Len(t, relaxed.Records, 1)
}

func TestScreen_GarnetSynthetic(t *testing.T) {
	tbl := testutil.ElementTable(t)
	recs := runAll(t, tbl, screening.Garnet())

	keys := make([]string, len(recs))
	for i, r := range recs {
		keys[i] = r.SpeciesKey()
	}
	assert.Equal(t, []string{
		"Nb5+|Nb3+|Li1+|O2-/3,2,3,12",
		"Nb3+|Te6+|Li1+|O2-/3,2,3,12",
		"Nb3+|W6+|Li1+|O2-/3,2,3,12",
		"Nb5+|W3+|Li1+|O2-/3,2,3,12",
		"Y3+|Te6+|Li1+|O2-/3,2,3,12",
		"Y3+|W6+|Li1+|O2-/3,2,3,12",
	}, keys)
}

func TestScreen_RecordInvariants(t *testing.T) {
	tbl := testutil.ElementTable(t)
	for _, r := range runAll(t, tbl, screening.Garnet()) {
		sum := 0
		var cations, anions []float64
		for i, s := range r.Symbols {
			sum += r.OxidationStates[i] * r.Ratio[i]
			e, err := tbl.Lookup(s)
			require.NoError(t, err)
			switch {
			case r.OxidationStates[i] > 0:
				cations = append(cations, e.Electronegativity)
			case r.OxidationStates[i] < 0:
				anions = append(anions, e.Electronegativity)
			}
		}
		assert.Zero(t, sum, r.SpeciesKey())
		for _, c := range cations {
			for _, a := range anions {
				assert.LessOrEqual(t, c, a, r.SpeciesKey())
			}
		}
	}
}

func TestDeduplicate(t *testing.T) {
	tbl := testutil.ElementTable(t)
	recs := runAll(t, tbl, screening.Garnet())

	species := screening.Deduplicate(recs, true)
	assert.Len(t, species, len(recs))

	elements := screening.Deduplicate(recs, false)
	seen := map[string]bool{}
	for _, r := range elements {
		assert.False(t, seen[r.ElementKey()], "duplicate %s", r.ElementKey())
		seen[r.ElementKey()] = true
	}
	// Nb-W collapses; the first assignment in enumeration order wins.
	assert.Len(t, elements, len(recs)-1)
	for _, r := range elements {
		if r.Symbols[0] == "Nb" && r.Symbols[1] == "W" {
			assert.Equal(t, []int{3, 6, 1, -2}, r.OxidationStates)
		}
	}
}

func TestDeduplicate_RemovesExactDuplicates(t *testing.T) {
	r := screening.Record{Symbols: []string{"Y", "O"}, OxidationStates: []int{3, -2}, Ratio: []int{2, 3}}
	assert.Len(t, screening.Deduplicate([]screening.Record{r, r}, true), 1)
}

func TestRecord_SiteLabels(t *testing.T) {
	r := screening.Record{Symbols: []string{"Y", "Te", "Li", "O"}, OxidationStates: []int{3, 6, 1, -2}, Ratio: []int{3, 2, 3, 12}}
	assert.Equal(t, []string{"Y3+", "Te6+", "Li1+", "O2-"}, r.SiteLabels(true))
	assert.Equal(t, []string{"Y", "Te", "Li", "O"}, r.SiteLabels(false))
	assert.Equal(t, "Y|Te|Li|O/3,2,3,12", r.ElementKey())

	sp := r.Species([]string{"8", "6", "4", "4"})
	assert.Equal(t, element.Species{Symbol: "Te", OxidationState: 6, Coordination: "6"}, sp[1])
}

func TestSortRecords(t *testing.T) {
	recs := []screening.Record{
		{Symbols: []string{"Y"}, OxidationStates: []int{3}, Ratio: []int{1}},
		{Symbols: []string{"La"}, OxidationStates: []int{3}, Ratio: []int{1}},
	}
	screening.SortRecords(recs)
	assert.Equal(t, "La", recs[0].Symbols[0])
}
