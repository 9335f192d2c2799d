package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dscreen "github.com/turtacn/garnet-screening/internal/domain/screening"
	"github.com/turtacn/garnet-screening/internal/domain/tolerance"
)

func cand(formula string, score *float64, tau *tolerance.Result) Candidate {
	return Candidate{
		Record:         dscreen.Record{Symbols: []string{formula}, OxidationStates: []int{0}, Ratio: []int{1}},
		Formula:        formula,
		Sustainability: score,
		Tolerance:      tau,
	}
}

func f(v float64) *float64 { return &v }

func ok(v float64) *tolerance.Result { return &tolerance.Result{Value: v, Status: tolerance.StatusOK} }

func TestDominates(t *testing.T) {
	assert.True(t, dominates([2]float64{1, 1}, [2]float64{2, 2}))
	assert.True(t, dominates([2]float64{1, 2}, [2]float64{1, 3}))
	assert.False(t, dominates([2]float64{1, 1}, [2]float64{1, 1}))
	assert.False(t, dominates([2]float64{1, 3}, [2]float64{2, 2}))
}

func TestRank_MissingScoresSortLast(t *testing.T) {
	cands := []Candidate{
		cand("C", nil, nil),
		cand("B", f(2), nil),
		cand("A", f(2), nil),
		cand("D", f(1), nil),
	}
	Rank(cands, RankSustainability, tolerance.DefaultBand())

	var got []string
	for _, c := range cands {
		got = append(got, c.Formula)
	}
	assert.Equal(t, []string{"D", "A", "B", "C"}, got)
}

func TestRank_ToleranceUsesBandCentre(t *testing.T) {
	cands := []Candidate{
		cand("far", nil, ok(0.75)),
		cand("undefined", nil, &tolerance.Result{Status: tolerance.StatusMissingRadius}),
		cand("near", nil, ok(1.05)),
	}
	Rank(cands, RankTolerance, tolerance.Band{Enabled: true, Low: 0.8, High: 1.2})
	assert.Equal(t, "near", cands[0].Formula)
	assert.Equal(t, "far", cands[1].Formula)
	assert.Equal(t, "undefined", cands[2].Formula)
}

func TestRank_ParetoFronts(t *testing.T) {
	cands := []Candidate{
		cand("dominated", f(5), ok(1.2)),
		cand("cheap", f(1), ok(1.3)),
		cand("stable", f(4), ok(1.04)),
		cand("worst", f(9), nil),
	}
	Rank(cands, RankPareto, tolerance.DefaultBand())

	got := map[string]int{}
	for _, c := range cands {
		got[c.Formula] = c.ParetoFront
	}
	assert.Equal(t, map[string]int{"cheap": 1, "stable": 1, "dominated": 2, "worst": 3}, got)
	assert.Equal(t, "cheap", cands[0].Formula)
}

func TestRank_NoneKeepsOrder(t *testing.T) {
	cands := []Candidate{cand("Z", f(9), nil), cand("A", f(1), nil)}
	Rank(cands, RankNone, tolerance.DefaultBand())
	assert.Equal(t, "Z", cands[0].Formula)
}
