// Package screening implements composition screening for a fixed structure
// template: lazy enumeration of candidate element tuples, charge-neutrality
// solving, the electronegativity ordering test and deduplication of the
// resulting composition records.  Everything here is pure and deterministic;
// concurrency lives in the application layer.
package screening

import (
	"fmt"

	"github.com/turtacn/garnet-screening/internal/domain/element"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Site is one crystallographic site of a template.  When Elements is empty the
// site pool is every element whose coordination set contains Coordination.
// An explicit Elements list is used as given, in the given order.
type Site struct {
	Name         string   `json:"name"`
	Coordination string   `json:"coordination"`
	Elements     []string `json:"elements,omitempty"`
}

// Template is an ordered list of sites plus the per-site stoichiometric
// coefficient choices.
type Template struct {
	Sites      []Site     `json:"sites"`
	Constraint Constraint `json:"stoichiometry_constraints"`
}

// Garnet returns the A3B2Li3O12 template: dodecahedral A, octahedral B,
// tetrahedral Li on C and oxygen on D.
func Garnet() Template {
	return Template{
		Sites: []Site{
			{Name: "A", Coordination: "8"},
			{Name: "B", Coordination: "6"},
			{Name: "C", Coordination: "4", Elements: []string{"Li"}},
			{Name: "D", Coordination: "4", Elements: []string{"O"}},
		},
		Constraint: Constraint{{3}, {2}, {3}, {12}},
	}
}

// Validate checks site definitions and the constraint shape.
func (t Template) Validate() error {
	if len(t.Sites) == 0 {
		return errors.New(errors.ErrCodeInvalidTemplate, "template has no sites")
	}
	seen := make(map[string]bool, len(t.Sites))
	for i, s := range t.Sites {
		if s.Name == "" {
			return errors.Newf(errors.ErrCodeInvalidTemplate, "site %d has no name", i)
		}
		if seen[s.Name] {
			return errors.Newf(errors.ErrCodeInvalidTemplate, "duplicate site name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Coordination == "" && len(s.Elements) == 0 {
			return errors.Newf(errors.ErrCodeInvalidTemplate, "site %s needs a coordination tag or an element list", s.Name)
		}
	}
	return t.Constraint.Validate(len(t.Sites))
}

// Names returns the site names in order.
func (t Template) Names() []string {
	out := make([]string, len(t.Sites))
	for i, s := range t.Sites {
		out[i] = s.Name
	}
	return out
}

// Coordinations returns the coordination tag of each site in order.
func (t Template) Coordinations() []string {
	out := make([]string, len(t.Sites))
	for i, s := range t.Sites {
		out[i] = s.Coordination
	}
	return out
}

// BuildPools resolves the candidate pool of every site against provider.
// Explicit symbols that are not in the provider fail with
// ErrCodeUnknownElement.  Tag-based pools are ordered by symbol.
func BuildPools(provider element.PropertyProvider, t Template) ([][]*element.Element, error) {
	pools := make([][]*element.Element, len(t.Sites))
	for i, site := range t.Sites {
		if len(site.Elements) > 0 {
			pool := make([]*element.Element, 0, len(site.Elements))
			for _, sym := range site.Elements {
				e, err := provider.Lookup(sym)
				if err != nil {
					return nil, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("site %s", site.Name))
				}
				pool = append(pool, e)
			}
			pools[i] = pool
			continue
		}

		pool := make([]*element.Element, 0)
		for _, sym := range provider.Symbols() {
			e, err := provider.Lookup(sym)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("site %s", site.Name))
			}
			if e.HasCoordination(site.Coordination) {
				pool = append(pool, e)
			}
		}
		pools[i] = pool
	}
	return pools, nil
}

//Personal.AI order the ending
