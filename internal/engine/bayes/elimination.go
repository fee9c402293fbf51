package bayes

import (
	"fmt"
	"math"
	"slices"
)

// Query returns the exact posterior distribution of variable given the
// evidence, computed by variable elimination.
func (n *Network) Query(variable string, evidence map[string]int) ([]float64, error) {
	if _, ok := n.card[variable]; !ok {
		return nil, fmt.Errorf("unknown query variable %q", variable)
	}
	if _, ok := evidence[variable]; ok {
		return nil, fmt.Errorf("query variable %q is also observed", variable)
	}
	for v, s := range evidence {
		card, ok := n.card[v]
		if !ok {
			return nil, fmt.Errorf("unknown evidence variable %q", v)
		}
		if s < 0 || s >= card {
			return nil, fmt.Errorf("evidence %s=%d out of range [0,%d)", v, s, card)
		}
	}

	factors := make([]*Factor, 0, len(n.topo))
	for _, v := range n.topo {
		f := n.factors[v]
		for _, ev := range f.vars {
			if s, ok := evidence[ev]; ok {
				f = f.Reduce(ev, s)
			}
		}
		factors = append(factors, f)
	}

	for _, v := range n.Hidden(variable, evidence) {
		factors = eliminate(factors, v)
	}

	result := factors[0]
	for _, f := range factors[1:] {
		result = Product(result, f)
	}
	if !slices.Equal(result.vars, []string{variable}) {
		return nil, fmt.Errorf("elimination left scope %v, want [%s]", result.vars, variable)
	}

	norm, z := result.Normalize()
	if z == 0 || math.IsNaN(z) {
		return nil, ErrInconsistentEvidence
	}
	return norm.values, nil
}

// Hidden returns the variables a query sums out, in elimination order: every
// node that is neither the query variable nor observed.
func (n *Network) Hidden(variable string, evidence map[string]int) []string {
	var hidden []string
	for _, v := range n.elimination {
		if v == variable {
			continue
		}
		if _, ok := evidence[v]; ok {
			continue
		}
		hidden = append(hidden, v)
	}
	return hidden
}

// eliminate multiplies every factor mentioning v and sums v out of the product.
func eliminate(factors []*Factor, v string) []*Factor {
	var joint *Factor
	rest := factors[:0:0]
	for _, f := range factors {
		if f.indexOf(v) < 0 {
			rest = append(rest, f)
			continue
		}
		if joint == nil {
			joint = f
		} else {
			joint = Product(joint, f)
		}
	}
	if joint == nil {
		return factors
	}
	return append(rest, joint.SumOut(v))
}
