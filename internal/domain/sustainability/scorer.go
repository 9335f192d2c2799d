package sustainability

import (
	"github.com/turtacn/garnet-screening/internal/domain/element"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// MassFractions returns each component's share of the formula mass, in
// formula order.
func MassFractions(provider element.PropertyProvider, f Formula) ([]float64, error) {
	masses := make([]float64, len(f))
	total := 0.0
	for i, c := range f {
		e, err := provider.Lookup(c.Symbol)
		if err != nil {
			return nil, err
		}
		masses[i] = e.Mass * c.Amount
		total += masses[i]
	}
	if total <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormula, "formula has zero mass").WithDetail(f.String())
	}
	for i := range masses {
		masses[i] /= total
	}
	return masses, nil
}

// Score returns sum(mass_fraction * HHI) over the formula.  Unknown symbols
// fail with ErrCodeUnknownElement.
func Score(provider element.PropertyProvider, f Formula) (float64, error) {
	fractions, err := MassFractions(provider, f)
	if err != nil {
		return 0, err
	}
	score := 0.0
	for i, c := range f {
		e, _ := provider.Lookup(c.Symbol)
		score += fractions[i] * e.HHI
	}
	return score, nil
}

//Personal.AI order the ending
