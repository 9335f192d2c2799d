// Package element provides the chemical-element and ionic-species model used
// by composition screening, together with the read-only property table that
// backs every lookup (oxidation states, electronegativity, coordination
// environments, molar mass, supply-risk index and ionic radii).
package element

import (
	"sort"
)

// ─────────────────────────────────────────────────────────────────────────────
// Value Objects
// ─────────────────────────────────────────────────────────────────────────────

// Element is a chemical element together with the properties screening needs.
// Elements are immutable once the owning Table is built; callers must not
// modify the returned slices.
type Element struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Mass              float64 `json:"mass"`
	Electronegativity float64 `json:"electronegativity"`

	// OxidationStates are the candidate formal charges in ascending order.
	OxidationStates []int `json:"oxidation_states"`

	// Coordination is the set of coordination tags ("4", "6", "8") the element
	// is known to adopt.  nil means unknown, which is distinct from empty.
	Coordination []string `json:"coordination,omitempty"`

	// HHI is the Herfindahl-Hirschman supply concentration index (0-10000).
	HHI float64 `json:"hhi"`
}

// HasCoordination reports whether tag is in the element's coordination set.
// Elements with an unknown set never match.
func (e *Element) HasCoordination(tag string) bool {
	if e == nil || e.Coordination == nil {
		return false
	}
	for _, c := range e.Coordination {
		if c == tag {
			return true
		}
	}
	return false
}

// CoordinationKnown reports whether the coordination set is populated.
func (e *Element) CoordinationKnown() bool {
	return e != nil && e.Coordination != nil
}

// Species is an element in a specific oxidation state, optionally in a given
// coordination environment.  Species are value types; radii are resolved
// through a PropertyProvider rather than stored.
type Species struct {
	Symbol         string `json:"symbol"`
	OxidationState int    `json:"oxidation_state"`
	Coordination   string `json:"coordination,omitempty"`
}

// Label renders the species as a label such as "Fe2+" or "O2-".
func (s Species) Label() string {
	return UnparseSpecies(s.Symbol, s.OxidationState)
}

// ─────────────────────────────────────────────────────────────────────────────
// Property Provider
// ─────────────────────────────────────────────────────────────────────────────

// PropertyProvider is the read-only element property store injected into
// every screening component.  Implementations must be safe for concurrent use
// by many goroutines without external locking.
type PropertyProvider interface {
	// Lookup returns the element for symbol, or an ErrCodeUnknownElement
	// AppError when the symbol is not in the table.
	Lookup(symbol string) (*Element, error)

	// Radius returns the ionic radius of symbol in oxidation state ox at the
	// given coordination.  ok is false when no value is recorded; that is a
	// data gap, not an error.
	Radius(symbol string, ox int, coordination string) (radius float64, ok bool)

	// Symbols lists every symbol in the table in a stable order.
	Symbols() []string
}

// SortSymbols orders symbols alphabetically in place and returns them.
func SortSymbols(symbols []string) []string {
	sort.Strings(symbols)
	return symbols
}

//Personal.AI order the ending
