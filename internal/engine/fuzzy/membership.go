// Package fuzzy implements a Mamdani fuzzy inference system and the dengue
// possibility controller built on it.
package fuzzy

import (
	"fmt"
	"math"
)

// Shape names a membership function family.
type Shape string

const (
	Triangle  Shape = "trimf"
	Trapezoid Shape = "trapmf"
)

// MembershipFunc is a piecewise-linear membership function. Triangles are
// stored as degenerate trapezoids with B == C.
type MembershipFunc struct {
	Shape      Shape
	A, B, C, D float64
}

// Tri returns the triangle rising from a to a peak at b and falling to c.
func Tri(a, b, c float64) MembershipFunc {
	return MembershipFunc{Shape: Triangle, A: a, B: b, C: b, D: c}
}

// Trap returns the trapezoid with feet a, d and shoulders b, c. a == b or
// c == d give open shoulders at the universe edges.
func Trap(a, b, c, d float64) MembershipFunc {
	return MembershipFunc{Shape: Trapezoid, A: a, B: b, C: c, D: d}
}

// Degree returns the membership of x.
func (m MembershipFunc) Degree(x float64) float64 {
	switch {
	case x < m.A || x > m.D:
		return 0
	case x >= m.B && x <= m.C:
		return 1
	case x < m.B:
		return (x - m.A) / (m.B - m.A)
	default:
		return (m.D - x) / (m.D - m.C)
	}
}

func (m MembershipFunc) validate() error {
	for _, p := range []float64{m.A, m.B, m.C, m.D} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("non-finite parameter in %s", m)
		}
	}
	if !(m.A <= m.B && m.B <= m.C && m.C <= m.D) {
		return fmt.Errorf("parameters of %s are not ordered", m)
	}
	return nil
}

func (m MembershipFunc) String() string {
	if m.Shape == Triangle {
		return fmt.Sprintf("trimf[%g, %g, %g]", m.A, m.B, m.D)
	}
	return fmt.Sprintf("trapmf[%g, %g, %g, %g]", m.A, m.B, m.C, m.D)
}
