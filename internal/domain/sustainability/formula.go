// Package sustainability scores compositions by supply risk: the mass-fraction
// weighted Herfindahl-Hirschman index of their elements.  Lower is better.
package sustainability

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Component is one element of a formula with its amount per formula unit.
type Component struct {
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

// Formula is an ordered list of components with unique symbols.
type Formula []Component

var (
	formulaToken = regexp.MustCompile(`([A-Z][a-z]?)([0-9]*\.?[0-9]*)`)
	formulaFull  = regexp.MustCompile(`^(?:[A-Z][a-z]?(?:[0-9]+(?:\.[0-9]+)?)?)+$`)
)

// FromRecord builds a formula from per-site symbols and integer ratios.
// Repeated symbols are merged at the position of their first occurrence.
func FromRecord(symbols []string, ratio []int) Formula {
	out := make(Formula, 0, len(symbols))
	pos := make(map[string]int, len(symbols))
	for i, s := range symbols {
		n := 0.0
		if i < len(ratio) {
			n = float64(ratio[i])
		}
		if j, ok := pos[s]; ok {
			out[j].Amount += n
			continue
		}
		pos[s] = len(out)
		out = append(out, Component{Symbol: s, Amount: n})
	}
	return out
}

// Parse reads a flat formula such as "Y3Te2Li3O12" or "Li6.4La3Zr1.4Ta0.6O12".
// Parentheses and hydrates are not supported.  Repeated symbols are merged.
func Parse(s string) (Formula, error) {
	s = strings.TrimSpace(s)
	if s == "" || !formulaFull.MatchString(s) {
		return nil, errors.New(errors.ErrCodeInvalidFormula, "malformed formula").WithDetail(s)
	}
	out := Formula{}
	pos := map[string]int{}
	for _, m := range formulaToken.FindAllStringSubmatch(s, -1) {
		amount := 1.0
		if m[2] != "" {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeInvalidFormula, "bad amount").WithDetail(m[0])
			}
			amount = v
		}
		if amount <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormula, "amount must be positive").WithDetail(m[0])
		}
		if j, ok := pos[m[1]]; ok {
			out[j].Amount += amount
			continue
		}
		pos[m[1]] = len(out)
		out = append(out, Component{Symbol: m[1], Amount: amount})
	}
	return out, nil
}

// String renders the formula, omitting amounts equal to one.
func (f Formula) String() string {
	var b strings.Builder
	for _, c := range f {
		b.WriteString(c.Symbol)
		if c.Amount != 1 {
			b.WriteString(strconv.FormatFloat(c.Amount, 'f', -1, 64))
		}
	}
	return b.String()
}

// Symbols returns the component symbols in order.
func (f Formula) Symbols() []string {
	out := make([]string, len(f))
	for i, c := range f {
		out[i] = c.Symbol
	}
	return out
}

//Personal.AI order the ending
