package screening

import (
	"math"
	"sort"

	"github.com/turtacn/garnet-screening/internal/domain/tolerance"
)

// Rank orders candidates in place.  Missing evaluations sort last.  Ties are
// broken by formula and then species key so the order never depends on
// worker scheduling.
func Rank(cands []Candidate, mode string, band tolerance.Band) {
	switch mode {
	case RankNone:
		return
	case RankTolerance:
		centre := bandCentre(band)
		sort.SliceStable(cands, func(i, j int) bool {
			di, dj := toleranceDistance(cands[i], centre), toleranceDistance(cands[j], centre)
			if di != dj {
				return di < dj
			}
			return tieBreak(cands[i], cands[j])
		})
	case RankPareto:
		rankPareto(cands, bandCentre(band))
	default:
		sort.SliceStable(cands, func(i, j int) bool {
			si, sj := sustainabilityKey(cands[i]), sustainabilityKey(cands[j])
			if si != sj {
				return si < sj
			}
			return tieBreak(cands[i], cands[j])
		})
	}
}

func tieBreak(a, b Candidate) bool {
	if a.Formula != b.Formula {
		return a.Formula < b.Formula
	}
	return a.SpeciesKey() < b.SpeciesKey()
}

func bandCentre(b tolerance.Band) float64 {
	if b.Low == 0 && b.High == 0 {
		b = tolerance.DefaultBand()
	}
	return (b.Low + b.High) / 2
}

func sustainabilityKey(c Candidate) float64 {
	if c.Sustainability == nil {
		return math.Inf(1)
	}
	return *c.Sustainability
}

func toleranceDistance(c Candidate, centre float64) float64 {
	if c.Tolerance == nil || !c.Tolerance.Defined() {
		return math.Inf(1)
	}
	return math.Abs(c.Tolerance.Value - centre)
}

// dominates reports whether a is at least as good as b on every objective
// and strictly better on one.  Both objectives are minimised.
func dominates(a, b [2]float64) bool {
	better := false
	for k := range a {
		if a[k] > b[k] {
			return false
		}
		if a[k] < b[k] {
			better = true
		}
	}
	return better
}

// rankPareto assigns non-dominated fronts over (sustainability, distance to
// the band centre), front 1 first, and sorts by front then sustainability.
func rankPareto(cands []Candidate, centre float64) {
	objs := make([][2]float64, len(cands))
	for i, c := range cands {
		objs[i] = [2]float64{sustainabilityKey(c), toleranceDistance(c, centre)}
	}
	front := make([]int, len(cands))
	remaining := len(cands)
	for level := 1; remaining > 0; level++ {
		var current []int
		for i := range cands {
			if front[i] != 0 {
				continue
			}
			dominated := false
			for j := range cands {
				if i == j || (front[j] != 0 && front[j] < level) {
					continue
				}
				if dominates(objs[j], objs[i]) {
					dominated = true
					break
				}
			}
			if !dominated {
				current = append(current, i)
			}
		}
		for _, i := range current {
			front[i] = level
		}
		remaining -= len(current)
	}
	for i := range cands {
		cands[i].ParetoFront = front[i]
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].ParetoFront != cands[j].ParetoFront {
			return cands[i].ParetoFront < cands[j].ParetoFront
		}
		si, sj := sustainabilityKey(cands[i]), sustainabilityKey(cands[j])
		if si != sj {
			return si < sj
		}
		return tieBreak(cands[i], cands[j])
	})
}

//Personal.AI order the ending
