package element

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/garnet-screening/pkg/errors"
)

//go:embed data/elements.yaml
var embeddedDataset []byte

// radiusKey identifies one ionic radius entry.
type radiusKey struct {
	symbol       string
	oxidation    int
	coordination string
}

// Table is the in-memory PropertyProvider.  It is built once and never
// mutated, so concurrent readers need no locking.
type Table struct {
	elements map[string]*Element
	radii    map[radiusKey]float64
	symbols  []string
}

var _ PropertyProvider = (*Table)(nil)

// RadiusEntry is one ionic radius record used to build a Table.
type RadiusEntry struct {
	Oxidation    int     `yaml:"oxidation" json:"oxidation"`
	Coordination string  `yaml:"coordination" json:"coordination"`
	Radius       float64 `yaml:"radius" json:"radius"`
}

// Record is the serialised form of an element in a dataset file.
type Record struct {
	Symbol            string        `yaml:"symbol"`
	Name              string        `yaml:"name"`
	Mass              float64       `yaml:"mass"`
	Electronegativity float64       `yaml:"electronegativity"`
	OxidationStates   []int         `yaml:"oxidation_states"`
	Coordination      []string      `yaml:"coordination"`
	HHI               float64       `yaml:"hhi"`
	Radii             []RadiusEntry `yaml:"radii"`
}

type dataset struct {
	Elements []Record `yaml:"elements"`
}

// NewTable builds a Table from records.  Duplicate symbols, empty symbols and
// non-positive masses are rejected with ErrCodeDatasetInvalid.
func NewTable(records []Record) (*Table, error) {
	t := &Table{
		elements: make(map[string]*Element, len(records)),
		radii:    make(map[radiusKey]float64),
		symbols:  make([]string, 0, len(records)),
	}
	for i, r := range records {
		if r.Symbol == "" {
			return nil, errors.Newf(errors.ErrCodeDatasetInvalid, "record %d has no symbol", i)
		}
		if _, dup := t.elements[r.Symbol]; dup {
			return nil, errors.Newf(errors.ErrCodeDatasetInvalid, "duplicate element %s", r.Symbol)
		}
		if r.Mass <= 0 {
			return nil, errors.Newf(errors.ErrCodeDatasetInvalid, "element %s has non-positive mass", r.Symbol)
		}

		ox := append([]int(nil), r.OxidationStates...)
		sort.Ints(ox)
		var coord []string
		if r.Coordination != nil {
			coord = append([]string{}, r.Coordination...)
		}
		t.elements[r.Symbol] = &Element{
			Symbol:            r.Symbol,
			Name:              r.Name,
			Mass:              r.Mass,
			Electronegativity: r.Electronegativity,
			OxidationStates:   ox,
			Coordination:      coord,
			HHI:               r.HHI,
		}
		for _, rad := range r.Radii {
			t.radii[radiusKey{r.Symbol, rad.Oxidation, rad.Coordination}] = rad.Radius
		}
		t.symbols = append(t.symbols, r.Symbol)
	}
	sort.Strings(t.symbols)
	return t, nil
}

// LoadTable decodes a YAML dataset from r.
func LoadTable(r io.Reader) (*Table, error) {
	var ds dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetInvalid, "failed to decode element dataset")
	}
	if len(ds.Elements) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetInvalid, "element dataset is empty")
	}
	return NewTable(ds.Elements)
}

// LoadTableFile reads a YAML dataset from path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetInvalid, fmt.Sprintf("failed to open %s", path))
	}
	defer f.Close()
	return LoadTable(f)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// DefaultTable returns the Table built from the embedded dataset.  It is
// decoded once; the result is shared and read-only.
func DefaultTable() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = LoadTable(bytes.NewReader(embeddedDataset))
	})
	return defaultTable, defaultErr
}

// Open returns the Table at path, or the embedded one when path is empty.
func Open(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	return LoadTableFile(path)
}

// Lookup implements PropertyProvider.
func (t *Table) Lookup(symbol string) (*Element, error) {
	e, ok := t.elements[symbol]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownElement, "unknown element").WithDetail(symbol)
	}
	return e, nil
}

// Radius implements PropertyProvider.
func (t *Table) Radius(symbol string, ox int, coordination string) (float64, bool) {
	r, ok := t.radii[radiusKey{symbol, ox, coordination}]
	return r, ok
}

// Symbols implements PropertyProvider.  The returned slice is a copy.
func (t *Table) Symbols() []string {
	return append([]string(nil), t.symbols...)
}

// Len returns the number of elements in the table.
func (t *Table) Len() int { return len(t.elements) }

// WithCoordination returns the elements whose coordination set contains tag,
// ordered by symbol.  Elements with unknown coordination are excluded.
func (t *Table) WithCoordination(tag string) []*Element {
	out := make([]*Element, 0)
	for _, s := range t.symbols {
		if e := t.elements[s]; e.HasCoordination(tag) {
			out = append(out, e)
		}
	}
	return out
}

// Species lists every (oxidation, coordination) radius entry recorded for
// symbol, ordered by oxidation state then coordination.
func (t *Table) Species(symbol string) []Species {
	out := make([]Species, 0)
	for k := range t.radii {
		if k.symbol == symbol {
			out = append(out, Species{Symbol: symbol, OxidationState: k.oxidation, Coordination: k.coordination})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OxidationState != out[j].OxidationState {
			return out[i].OxidationState < out[j].OxidationState
		}
		return out[i].Coordination < out[j].Coordination
	})
	return out
}

//Personal.AI order the ending
