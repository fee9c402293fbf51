package fuzzy

import (
	"fmt"
	"math"
	"strings"
)

// Term is a named fuzzy set of a linguistic variable.
type Term struct {
	Name string
	MF   MembershipFunc
}

// Variable is a linguistic variable over the universe [Min, Max], sampled at
// Step for aggregation and coverage checks.
type Variable struct {
	Name  string
	Unit  string
	Min   float64
	Max   float64
	Step  float64
	Terms []Term
}

func (v Variable) term(name string) (Term, bool) {
	for _, t := range v.Terms {
		if t.Name == name {
			return t, true
		}
	}
	return Term{}, false
}

// TermNames lists the term names in declaration order.
func (v Variable) TermNames() []string {
	names := make([]string, len(v.Terms))
	for i, t := range v.Terms {
		names[i] = t.Name
	}
	return names
}

// Universe returns the sample points Min, Min+Step, ..., Max.
func (v Variable) Universe() []float64 {
	n := int(math.Round((v.Max-v.Min)/v.Step)) + 1
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = v.Min + float64(i)*v.Step
	}
	xs[n-1] = v.Max
	return xs
}

// Fuzzify returns the membership of x in every term. Values outside the
// universe have no defined membership and are rejected.
func (v Variable) Fuzzify(x float64) (map[string]float64, error) {
	if math.IsNaN(x) || x < v.Min || x > v.Max {
		return nil, fmt.Errorf("%s=%v outside universe [%g, %g]", v.Name, x, v.Min, v.Max)
	}
	out := make(map[string]float64, len(v.Terms))
	for _, t := range v.Terms {
		out[t.Name] = t.MF.Degree(x)
	}
	return out, nil
}

func (v Variable) validate() error {
	if v.Name == "" {
		return fmt.Errorf("variable without name")
	}
	if !(v.Min < v.Max) {
		return fmt.Errorf("%s: empty universe [%g, %g]", v.Name, v.Min, v.Max)
	}
	if !(v.Step > 0) || v.Step > v.Max-v.Min {
		return fmt.Errorf("%s: invalid step %g", v.Name, v.Step)
	}
	if len(v.Terms) == 0 {
		return fmt.Errorf("%s: no terms", v.Name)
	}
	seen := make(map[string]bool, len(v.Terms))
	for _, t := range v.Terms {
		if t.Name == "" || seen[t.Name] {
			return fmt.Errorf("%s: missing or duplicate term name %q", v.Name, t.Name)
		}
		seen[t.Name] = true
		if err := t.MF.validate(); err != nil {
			return fmt.Errorf("%s.%s: %w", v.Name, t.Name, err)
		}
		if t.MF.A < v.Min || t.MF.D > v.Max {
			return fmt.Errorf("%s.%s: %s exceeds universe [%g, %g]", v.Name, t.Name, t.MF, v.Min, v.Max)
		}
	}
	return nil
}

// Describe renders the variable as "name: [min-max]unit -> {terms}".
func (v Variable) Describe() string {
	return fmt.Sprintf("%s: [%g-%g]%s -> {%s}", v.Name, v.Min, v.Max, v.Unit, strings.Join(v.TermNames(), ", "))
}
