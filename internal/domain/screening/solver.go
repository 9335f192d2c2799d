package screening

import (
	"github.com/turtacn/garnet-screening/internal/domain/element"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Constraint lists, per site, the stoichiometric coefficients to try.
// {{3}, {2}, {3}, {12}} fixes the garnet formula; {{1, 2}, {1}} lets the
// first site take either coefficient.
type Constraint [][]int

// Validate checks that there is one non-empty list of positive integers per
// site.
func (c Constraint) Validate(sites int) error {
	if len(c) != sites {
		return errors.Newf(errors.ErrCodeInvalidConstraint,
			"constraint has %d coefficient lists for %d sites", len(c), sites)
	}
	for i, coeffs := range c {
		if len(coeffs) == 0 {
			return errors.Newf(errors.ErrCodeInvalidConstraint, "site %d has no coefficients", i)
		}
		for _, v := range coeffs {
			if v <= 0 {
				return errors.Newf(errors.ErrCodeInvalidConstraint,
					"site %d has non-positive coefficient %d", i, v)
			}
		}
	}
	return nil
}

// Solution is the neutrality verdict for one oxidation assignment of a tuple.
// Ratios holds every coefficient combination with zero net charge.
type Solution struct {
	Assignment []int   `json:"assignment"`
	Ratios     [][]int `json:"ratios,omitempty"`
}

// Neutral reports whether at least one ratio balances the assignment.
func (s Solution) Neutral() bool { return len(s.Ratios) > 0 }

// NeutralRatios returns every coefficient combination drawn from c whose
// integer dot product with assignment is zero.  Ratios are not reduced and
// appear in enumeration order, first site slowest.
func NeutralRatios(assignment []int, c Constraint) [][]int {
	if len(assignment) != len(c) {
		return nil
	}
	var out [][]int
	cartesian(c, func(ratio []int) bool {
		sum := 0
		for i, q := range assignment {
			sum += q * ratio[i]
		}
		if sum == 0 {
			out = append(out, append([]int(nil), ratio...))
		}
		return true
	})
	return out
}

// Solve enumerates every oxidation assignment of tuple (one state per site,
// drawn from the element's oxidation states) and attaches its neutral
// ratios.  An element with no oxidation states yields no assignments.
func Solve(tuple []*element.Element, c Constraint) ([]Solution, error) {
	if err := c.Validate(len(tuple)); err != nil {
		return nil, err
	}
	states := make([][]int, len(tuple))
	for i, e := range tuple {
		states[i] = e.OxidationStates
	}
	var out []Solution
	cartesian(states, func(assignment []int) bool {
		a := append([]int(nil), assignment...)
		out = append(out, Solution{Assignment: a, Ratios: NeutralRatios(a, c)})
		return true
	})
	return out, nil
}

//Personal.AI order the ending
