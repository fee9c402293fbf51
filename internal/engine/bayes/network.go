// Package bayes implements a fixed-structure discrete Bayesian network with
// exact inference by variable elimination, and the dengue engine built on it.
package bayes

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrInvalidNetwork marks a network rejected at construction.
var ErrInvalidNetwork = errors.New("invalid bayesian network")

// ErrInconsistentEvidence is returned when the evidence has zero probability
// under the model.
var ErrInconsistentEvidence = errors.New("evidence inconsistent with model")

const normTolerance = 1e-6

// Edge is a directed parent -> child dependency.
type Edge struct {
	From, To string
}

// TabularCPD is the conditional distribution of Variable given Evidence.
// Values[s][c] is P(Variable=s | parents in column c); columns enumerate the
// parent assignments with the last parent changing fastest.
type TabularCPD struct {
	Variable     string
	Card         int
	Evidence     []string
	EvidenceCard []int
	Values       [][]float64
}

func (c TabularCPD) columns() int {
	n := 1
	for _, k := range c.EvidenceCard {
		n *= k
	}
	return n
}

func (c TabularCPD) clone() TabularCPD {
	out := c
	out.Evidence = slices.Clone(c.Evidence)
	out.EvidenceCard = slices.Clone(c.EvidenceCard)
	out.Values = make([][]float64, len(c.Values))
	for i, row := range c.Values {
		out.Values[i] = slices.Clone(row)
	}
	return out
}

func (c TabularCPD) factor() *Factor {
	vars := append([]string{c.Variable}, c.Evidence...)
	card := append([]int{c.Card}, c.EvidenceCard...)
	f := newFactor(vars, card)
	cols := c.columns()
	for s, row := range c.Values {
		copy(f.values[s*cols:], row)
	}
	return f
}

// Network is an immutable, validated Bayesian network. It is safe for
// concurrent queries.
type Network struct {
	cpds    map[string]TabularCPD
	factors map[string]*Factor
	parents map[string][]string
	card    map[string]int

	// topo lists the nodes parents-first; elimination is its reverse.
	topo        []string
	elimination []string
}

// NewNetwork validates the structure and CPDs and precomputes the
// elimination order.
func NewNetwork(edges []Edge, cpds ...TabularCPD) (*Network, error) {
	n := &Network{
		cpds:    make(map[string]TabularCPD, len(cpds)),
		factors: make(map[string]*Factor, len(cpds)),
		parents: make(map[string][]string),
		card:    make(map[string]int, len(cpds)),
	}

	var order []string
	for _, c := range cpds {
		if c.Variable == "" {
			return nil, fmt.Errorf("%w: cpd without variable", ErrInvalidNetwork)
		}
		if _, dup := n.cpds[c.Variable]; dup {
			return nil, fmt.Errorf("%w: duplicate cpd for %s", ErrInvalidNetwork, c.Variable)
		}
		if c.Card < 1 {
			return nil, fmt.Errorf("%w: %s has cardinality %d", ErrInvalidNetwork, c.Variable, c.Card)
		}
		n.cpds[c.Variable] = c.clone()
		n.card[c.Variable] = c.Card
		order = append(order, c.Variable)
	}

	for _, e := range edges {
		for _, v := range []string{e.From, e.To} {
			if _, ok := n.cpds[v]; !ok {
				return nil, fmt.Errorf("%w: missing cpd for %s", ErrInvalidNetwork, v)
			}
		}
		if slices.Contains(n.parents[e.To], e.From) {
			return nil, fmt.Errorf("%w: duplicate edge %s -> %s", ErrInvalidNetwork, e.From, e.To)
		}
		n.parents[e.To] = append(n.parents[e.To], e.From)
	}

	for _, v := range order {
		if err := n.checkCPD(n.cpds[v]); err != nil {
			return nil, err
		}
	}

	topo, err := topoSort(order, n.parents)
	if err != nil {
		return nil, err
	}
	n.topo = topo
	n.elimination = make([]string, len(topo))
	for i, v := range topo {
		n.elimination[len(topo)-1-i] = v
	}

	for v, c := range n.cpds {
		n.factors[v] = c.factor()
	}
	return n, nil
}

func (n *Network) checkCPD(c TabularCPD) error {
	if len(c.Evidence) != len(c.EvidenceCard) {
		return fmt.Errorf("%w: %s lists %d parents but %d parent cardinalities",
			ErrInvalidNetwork, c.Variable, len(c.Evidence), len(c.EvidenceCard))
	}

	parents := n.parents[c.Variable]
	if len(parents) != len(c.Evidence) {
		return fmt.Errorf("%w: %s cpd conditions on [%s] but graph parents are [%s]",
			ErrInvalidNetwork, c.Variable, strings.Join(c.Evidence, ", "), strings.Join(parents, ", "))
	}
	for i, p := range c.Evidence {
		if !slices.Contains(parents, p) {
			return fmt.Errorf("%w: %s cpd conditions on %s which is not a parent",
				ErrInvalidNetwork, c.Variable, p)
		}
		if slices.Index(c.Evidence, p) != i {
			return fmt.Errorf("%w: %s cpd lists parent %s twice", ErrInvalidNetwork, c.Variable, p)
		}
		if n.card[p] != c.EvidenceCard[i] {
			return fmt.Errorf("%w: %s cpd expects %s to have %d states, has %d",
				ErrInvalidNetwork, c.Variable, p, c.EvidenceCard[i], n.card[p])
		}
	}

	if len(c.Values) != c.Card {
		return fmt.Errorf("%w: %s cpd has %d rows, want %d", ErrInvalidNetwork, c.Variable, len(c.Values), c.Card)
	}
	cols := c.columns()
	for s, row := range c.Values {
		if len(row) != cols {
			return fmt.Errorf("%w: %s cpd row %d has %d columns, want %d",
				ErrInvalidNetwork, c.Variable, s, len(row), cols)
		}
		for _, p := range row {
			if math.IsNaN(p) || p < 0 || p > 1 {
				return fmt.Errorf("%w: %s cpd has probability %v outside [0,1]", ErrInvalidNetwork, c.Variable, p)
			}
		}
	}
	for col := 0; col < cols; col++ {
		var sum float64
		for s := range c.Values {
			sum += c.Values[s][col]
		}
		if math.Abs(sum-1) > normTolerance {
			return fmt.Errorf("%w: %s cpd column %d sums to %.6f", ErrInvalidNetwork, c.Variable, col, sum)
		}
	}
	return nil
}

// topoSort orders nodes parents-first (Kahn), keeping declaration order among
// ready nodes, and reports cycles.
func topoSort(nodes []string, parents map[string][]string) ([]string, error) {
	indeg := make(map[string]int, len(nodes))
	children := make(map[string][]string)
	for _, v := range nodes {
		indeg[v] = len(parents[v])
		for _, p := range parents[v] {
			children[p] = append(children[p], v)
		}
	}

	out := make([]string, 0, len(nodes))
	done := make(map[string]bool, len(nodes))
	for len(out) < len(nodes) {
		progressed := false
		for _, v := range nodes {
			if done[v] || indeg[v] > 0 {
				continue
			}
			done[v] = true
			out = append(out, v)
			for _, c := range children[v] {
				indeg[c]--
			}
			progressed = true
		}
		if !progressed {
			var cyclic []string
			for _, v := range nodes {
				if !done[v] {
					cyclic = append(cyclic, v)
				}
			}
			return nil, fmt.Errorf("%w: cycle among [%s]", ErrInvalidNetwork, strings.Join(cyclic, ", "))
		}
	}
	return out, nil
}

// Variables returns the nodes parents-first.
func (n *Network) Variables() []string { return append([]string(nil), n.topo...) }

// Parents returns the parents of v.
func (n *Network) Parents(v string) []string { return append([]string(nil), n.parents[v]...) }

// EliminationOrder returns the fixed order in which hidden variables are summed out.
func (n *Network) EliminationOrder() []string { return append([]string(nil), n.elimination...) }

// CPD returns a copy of the table for v.
func (n *Network) CPD(v string) (TabularCPD, bool) {
	c, ok := n.cpds[v]
	if !ok {
		return TabularCPD{}, false
	}
	return c.clone(), true
}
