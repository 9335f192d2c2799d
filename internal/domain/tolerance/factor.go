// Package tolerance computes the geometric tolerance factor of a four-site
// garnet composition from Shannon ionic radii and filters candidates by a
// stability band.
package tolerance

import (
	"fmt"
	"math"

	"github.com/turtacn/garnet-screening/internal/domain/element"
)

// Status classifies how a tolerance factor was obtained.  Every status other
// than StatusOK comes with the sentinel value 0.
type Status int

const (
	StatusOK Status = iota
	// StatusMissingRadius: at least one species has no recorded radius.
	StatusMissingRadius
	// StatusNegativeRadicand: the A site is too large for the B-D framework.
	StatusNegativeRadicand
	// StatusZeroDenominator: rC + rD <= 0.  Unreachable with tabulated radii.
	StatusZeroDenominator
	// StatusNotApplicable: the composition does not have four sites.
	StatusNotApplicable
)

var statusNames = map[Status]string{
	StatusOK:               "ok",
	StatusMissingRadius:    "missing_radius",
	StatusNegativeRadicand: "negative_radicand",
	StatusZeroDenominator:  "zero_denominator",
	StatusNotApplicable:    "not_applicable",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// MarshalText lets Status serialise as its name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a status name written by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown tolerance status %q", b)
}

// Result is a tolerance factor together with its status.
type Result struct {
	Value  float64 `json:"value"`
	Status Status  `json:"status"`
}

// Defined reports whether the factor is a real value.
func (r Result) Defined() bool { return r.Status == StatusOK }

// Factor computes
//
//	tau = 3 * sqrt((rB+rD)^2 - 4/9 (rA+rD)^2) / (2 (rC+rD))
//
// for A (dodecahedral), B (octahedral), C (tetrahedral) cation radii and the
// anion radius rD.
func Factor(rA, rB, rC, rD float64) Result {
	den := rC + rD
	if den <= 0 {
		return Result{Status: StatusZeroDenominator}
	}
	bd := rB + rD
	ad := rA + rD
	arg := bd*bd - (4.0/9.0)*ad*ad
	if arg < 0 {
		return Result{Status: StatusNegativeRadicand}
	}
	return Result{Value: 3 * math.Sqrt(arg) / (2 * den), Status: StatusOK}
}

// Evaluate resolves the radii of four species (A, B, C, D in that order, each
// with its coordination tag) through provider and returns the factor.
func Evaluate(provider element.PropertyProvider, species []element.Species) Result {
	if len(species) != 4 {
		return Result{Status: StatusNotApplicable}
	}
	var r [4]float64
	for i, sp := range species {
		v, ok := provider.Radius(sp.Symbol, sp.OxidationState, sp.Coordination)
		if !ok {
			return Result{Status: StatusMissingRadius}
		}
		r[i] = v
	}
	return Factor(r[0], r[1], r[2], r[3])
}

//Personal.AI order the ending
