package screening

import (
	"github.com/turtacn/garnet-screening/internal/domain/element"
)

// Generator lazily enumerates the cartesian product of per-site pools, one
// element per site.  The first site varies slowest.  A Generator is not safe
// for concurrent use; the worker pool drains it from a single goroutine.
type Generator struct {
	pools [][]*element.Element
	idx   []int
	count int
	pos   int // index of the current tuple, -1 before the first Next
	done  bool
}

// NewGenerator returns a Generator over pools.  If any pool is empty, or there
// are no pools, the generator yields nothing.
func NewGenerator(pools [][]*element.Element) *Generator {
	count := 0
	if len(pools) > 0 {
		count = 1
		for _, p := range pools {
			count *= len(p)
		}
	}
	return &Generator{
		pools: pools,
		idx:   make([]int, len(pools)),
		count: count,
		pos:   -1,
		done:  count == 0,
	}
}

// Count returns the total number of tuples the generator will yield.
func (g *Generator) Count() int { return g.count }

// Next advances to the next tuple and reports whether one is available.
func (g *Generator) Next() bool {
	if g.done {
		return false
	}
	if g.pos < 0 {
		g.pos = 0
		return true
	}
	// Odometer increment from the last site.
	for i := len(g.idx) - 1; i >= 0; i-- {
		g.idx[i]++
		if g.idx[i] < len(g.pools[i]) {
			g.pos++
			return true
		}
		g.idx[i] = 0
	}
	g.done = true
	return false
}

// Index returns the zero-based position of the current tuple.
func (g *Generator) Index() int { return g.pos }

// Tuple returns a fresh slice holding the current tuple.
func (g *Generator) Tuple() []*element.Element {
	out := make([]*element.Element, len(g.pools))
	for i, j := range g.idx {
		out[i] = g.pools[i][j]
	}
	return out
}

// Symbols returns the element symbols of a tuple.
func Symbols(tuple []*element.Element) []string {
	out := make([]string, len(tuple))
	for i, e := range tuple {
		out[i] = e.Symbol
	}
	return out
}

// cartesian calls fn with every combination drawn from lists, first list
// varying slowest.  fn receives a reused buffer and must copy it to retain
// it.  Enumeration stops early when fn returns false.  Any empty list
// yields nothing.
func cartesian(lists [][]int, fn func(combo []int) bool) {
	if len(lists) == 0 {
		return
	}
	for _, l := range lists {
		if len(l) == 0 {
			return
		}
	}
	idx := make([]int, len(lists))
	combo := make([]int, len(lists))
	for {
		for i, j := range idx {
			combo[i] = lists[i][j]
		}
		if !fn(combo) {
			return
		}
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(lists[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

//Personal.AI order the ending
