package screening

import (
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/garnet-screening/internal/domain/element"
)

// Record is a composition that passed charge neutrality and the
// electronegativity test.  Slices are owned by the record.
type Record struct {
	Symbols         []string `json:"symbols"`
	OxidationStates []int    `json:"oxidation_states"`
	Ratio           []int    `json:"ratio"`
}

// SpeciesKey identifies a record by symbols, oxidation states and ratio.
func (r Record) SpeciesKey() string {
	var b strings.Builder
	for i, s := range r.Symbols {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(element.UnparseSpecies(s, r.OxidationStates[i]))
	}
	b.WriteByte('/')
	writeInts(&b, r.Ratio)
	return b.String()
}

// ElementKey identifies a record by symbols and ratio, ignoring oxidation
// states.
func (r Record) ElementKey() string {
	var b strings.Builder
	b.WriteString(strings.Join(r.Symbols, "|"))
	b.WriteByte('/')
	writeInts(&b, r.Ratio)
	return b.String()
}

// SiteLabels returns species labels ("Y3+") when speciesUnique is set and bare
// symbols otherwise.
func (r Record) SiteLabels(speciesUnique bool) []string {
	if !speciesUnique {
		return append([]string(nil), r.Symbols...)
	}
	out := make([]string, len(r.Symbols))
	for i, s := range r.Symbols {
		out[i] = element.UnparseSpecies(s, r.OxidationStates[i])
	}
	return out
}

// Species returns the record's species with coordination tags taken from
// coords, one per site.
func (r Record) Species(coords []string) []element.Species {
	out := make([]element.Species, len(r.Symbols))
	for i, s := range r.Symbols {
		sp := element.Species{Symbol: s, OxidationState: r.OxidationStates[i]}
		if i < len(coords) {
			sp.Coordination = coords[i]
		}
		out[i] = sp
	}
	return out
}

func writeInts(b *strings.Builder, v []int) {
	for i, n := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
}

// Options configures ScreenTuple.
type Options struct {
	Constraint Constraint
	// Threshold relaxes the electronegativity test; zero is strict ordering.
	Threshold float64
}

// Outcome is the result of screening one tuple, with stage counts measured in
// compositions (assignment x ratio).
type Outcome struct {
	Records                 []Record
	Assignments             int
	ChargeNeutral           int
	ElectronegativityPassed int
}

// ScreenTuple runs charge neutrality and the electronegativity test over one
// candidate tuple and returns one record per surviving (assignment, ratio).
func ScreenTuple(tuple []*element.Element, opts Options) (Outcome, error) {
	solutions, err := Solve(tuple, opts.Constraint)
	if err != nil {
		return Outcome{}, err
	}

	symbols := Symbols(tuple)
	ens := make([]float64, len(tuple))
	for i, e := range tuple {
		ens[i] = e.Electronegativity
	}

	out := Outcome{Assignments: len(solutions)}
	for _, sol := range solutions {
		if !sol.Neutral() {
			continue
		}
		out.ChargeNeutral += len(sol.Ratios)
		if !PaulingTest(sol.Assignment, ens, opts.Threshold) {
			continue
		}
		for _, ratio := range sol.Ratios {
			out.Records = append(out.Records, Record{
				Symbols:         append([]string(nil), symbols...),
				OxidationStates: append([]int(nil), sol.Assignment...),
				Ratio:           ratio,
			})
		}
	}
	out.ElectronegativityPassed = len(out.Records)
	return out, nil
}

// Deduplicate applies the equivalence selected by speciesUnique.  With
// speciesUnique every record is kept, including records that differ only in
// oxidation states.  Without it records sharing (symbols, ratio) collapse to
// the first one in input order.
func Deduplicate(records []Record, speciesUnique bool) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := r.ElementKey()
		if speciesUnique {
			key = r.SpeciesKey()
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortRecords orders records by species key.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SpeciesKey() < records[j].SpeciesKey()
	})
}

//Personal.AI order the ending
