package fuzzy

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSystem marks a rule base rejected at construction.
var ErrInvalidSystem = errors.New("invalid fuzzy system")

// Op combines the antecedent terms of a rule.
type Op int

const (
	And Op = iota // minimum
	Or            // maximum
)

func (o Op) String() string {
	if o == Or {
		return "OR"
	}
	return "AND"
}

// TermRef points at a term of an antecedent variable.
type TermRef struct {
	Var  string
	Term string
}

// Rule maps a combination of antecedent terms to one consequent term.
type Rule struct {
	Terms      []TermRef
	Op         Op
	Consequent string
}

func (r Rule) String() string {
	parts := make([]string, len(r.Terms))
	for i, t := range r.Terms {
		parts[i] = t.Var + "=" + t.Term
	}
	return fmt.Sprintf("%s -> %s", strings.Join(parts, " "+r.Op.String()+" "), r.Consequent)
}

// System is an immutable Mamdani controller: min/max rule evaluation, clipping
// implication, max aggregation and centroid defuzzification.
type System struct {
	antecedents []Variable
	byName      map[string]Variable
	consequent  Variable
	rules       []Rule

	universe []float64
	// consequent term degrees at each universe sample
	shapes map[string][]float64
}

// Result is the outcome of one Compute call.
type Result struct {
	// Value is the defuzzified crisp output.
	Value float64
	// Activations holds each rule's firing strength, in rule order.
	Activations []float64
}

// NewSystem validates the variables and rule base. Every rule must reference
// known terms and at least one rule must fire for every possible input.
func NewSystem(antecedents []Variable, consequent Variable, rules []Rule) (*System, error) {
	s := &System{
		antecedents: antecedents,
		byName:      make(map[string]Variable, len(antecedents)),
		consequent:  consequent,
		rules:       rules,
	}

	for _, v := range append(append([]Variable(nil), antecedents...), consequent) {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSystem, err)
		}
	}
	for _, v := range antecedents {
		if _, dup := s.byName[v.Name]; dup || v.Name == consequent.Name {
			return nil, fmt.Errorf("%w: duplicate variable %s", ErrInvalidSystem, v.Name)
		}
		s.byName[v.Name] = v
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: empty rule base", ErrInvalidSystem)
	}
	for i, r := range rules {
		if len(r.Terms) == 0 {
			return nil, fmt.Errorf("%w: rule %d has no antecedent", ErrInvalidSystem, i+1)
		}
		if r.Op != And && r.Op != Or {
			return nil, fmt.Errorf("%w: rule %d has unknown operator", ErrInvalidSystem, i+1)
		}
		for _, ref := range r.Terms {
			v, ok := s.byName[ref.Var]
			if !ok {
				return nil, fmt.Errorf("%w: rule %d references unknown variable %s", ErrInvalidSystem, i+1, ref.Var)
			}
			if _, ok := v.term(ref.Term); !ok {
				return nil, fmt.Errorf("%w: rule %d references unknown term %s.%s", ErrInvalidSystem, i+1, ref.Var, ref.Term)
			}
		}
		if _, ok := consequent.term(r.Consequent); !ok {
			return nil, fmt.Errorf("%w: rule %d concludes unknown term %s", ErrInvalidSystem, i+1, r.Consequent)
		}
	}

	if !s.covered() {
		return nil, fmt.Errorf("%w: no rule fires over the whole input space", ErrInvalidSystem)
	}

	s.universe = consequent.Universe()
	s.shapes = make(map[string][]float64, len(consequent.Terms))
	for _, t := range consequent.Terms {
		ys := make([]float64, len(s.universe))
		for i, x := range s.universe {
			ys[i] = t.MF.Degree(x)
		}
		s.shapes[t.Name] = ys
	}
	return s, nil
}

// covered reports whether some single-variable rule has nonzero strength at
// every sample of that variable's universe, which makes the output aggregate
// non-empty for all inputs.
func (s *System) covered() bool {
	for _, r := range s.rules {
		if r.Op != Or && len(r.Terms) > 1 {
			continue
		}
		name := r.Terms[0].Var
		single := true
		for _, ref := range r.Terms {
			if ref.Var != name {
				single = false
				break
			}
		}
		if !single {
			continue
		}

		v := s.byName[name]
		full := true
		for _, x := range v.Universe() {
			var best float64
			for _, ref := range r.Terms {
				t, _ := v.term(ref.Term)
				best = math.Max(best, t.MF.Degree(x))
			}
			if best <= 0 {
				full = false
				break
			}
		}
		if full {
			return true
		}
	}
	return false
}

// Antecedents returns the input variables in declaration order.
func (s *System) Antecedents() []Variable { return append([]Variable(nil), s.antecedents...) }

// Consequent returns the output variable.
func (s *System) Consequent() Variable { return s.consequent }

// Rules returns the rule base.
func (s *System) Rules() []Rule { return append([]Rule(nil), s.rules...) }

// Compute runs one inference over crisp inputs keyed by variable name.
func (s *System) Compute(inputs map[string]float64) (Result, error) {
	degrees := make(map[string]map[string]float64, len(s.antecedents))
	for _, v := range s.antecedents {
		x, ok := inputs[v.Name]
		if !ok {
			return Result{}, fmt.Errorf("missing input %s", v.Name)
		}
		d, err := v.Fuzzify(x)
		if err != nil {
			return Result{}, err
		}
		degrees[v.Name] = d
	}

	activations := make([]float64, len(s.rules))
	aggregate := make([]float64, len(s.universe))
	for i, r := range s.rules {
		strength := degrees[r.Terms[0].Var][r.Terms[0].Term]
		for _, ref := range r.Terms[1:] {
			d := degrees[ref.Var][ref.Term]
			if r.Op == And {
				strength = math.Min(strength, d)
			} else {
				strength = math.Max(strength, d)
			}
		}
		activations[i] = strength
		if strength == 0 {
			continue
		}
		for j, y := range s.shapes[r.Consequent] {
			aggregate[j] = math.Max(aggregate[j], math.Min(strength, y))
		}
	}

	value, err := centroid(s.universe, aggregate)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: value, Activations: activations}, nil
}

// centroid returns the area centroid of the piecewise-linear curve through
// the samples, summing each segment as a rectangle, triangle or trapezoid.
func centroid(xs, ys []float64) (float64, error) {
	var moment, area float64
	for i := 1; i < len(xs); i++ {
		x1, x2, y1, y2 := xs[i-1], xs[i], ys[i-1], ys[i]
		if (y1 == 0 && y2 == 0) || x1 == x2 {
			continue
		}
		w := x2 - x1
		var m, a float64
		switch {
		case y1 == y2:
			m, a = x1+w/2, w*y1
		case y1 == 0:
			m, a = x1+2*w/3, w*y2/2
		case y2 == 0:
			m, a = x1+w/3, w*y1/2
		default:
			m = x1 + (2*w/3)*(y2+y1/2)/(y1+y2)
			a = w * (y1 + y2) / 2
		}
		moment += m * a
		area += a
	}
	if area == 0 {
		return 0, errors.New("empty output aggregate, centroid undefined")
	}
	return moment / area, nil
}
