package fuzzy

import (
	"fmt"

	"github.com/rcliao/expert-dx/internal/model"
)

// Variable and term names of the dengue controller.
const (
	VarTemperature = "temperature"
	VarHeadache    = "headache"
	VarCough       = "cough"
	VarEpiRisk     = "epi_risk"
	VarPossibility = "dengue_possibility"
)

// Labels produced by the fuzzy engine.
const (
	LabelHigh   = "High probability dengue"
	LabelMedium = "Medium probability dengue"
	LabelLow    = "Low probability dengue"
	LabelError  = "Fuzzy engine error"
)

// Percentage thresholds on the defuzzified output.
const (
	HighThreshold   = 65.0
	MediumThreshold = 35.0
)

// Epidemiological risk contributions.
const (
	TravelRisk  = 5.0
	ContactRisk = 5.0
)

func intensity(name string) Variable {
	return Variable{
		Name: name, Unit: "/10", Min: 0, Max: 10, Step: 0.1,
		Terms: []Term{
			{"mild", Trap(0, 0, 2, 4)},
			{"moderate", Tri(3, 5, 7)},
			{"severe", Trap(6, 8, 10, 10)},
		},
	}
}

func ref(v, t string) TermRef { return TermRef{Var: v, Term: t} }

func and(consequent string, terms ...TermRef) Rule {
	return Rule{Terms: terms, Op: And, Consequent: consequent}
}

// DengueSystem builds the controller with its fixed rule base.
func DengueSystem() (*System, error) {
	temperature := Variable{
		Name: VarTemperature, Unit: "°C", Min: 35, Max: 42, Step: 0.1,
		Terms: []Term{
			{"normal", Trap(35, 35, 36.5, 37.5)},
			{"medium", Tri(36.5, 37.5, 38.5)},
			{"high", Trap(37.5, 38.5, 42, 42)},
		},
	}
	epi := Variable{
		Name: VarEpiRisk, Min: 0, Max: 10, Step: 0.1,
		Terms: []Term{
			{"low", Trap(0, 0, 2, 4)},
			{"medium", Tri(3, 5, 7)},
			{"high", Trap(6, 8, 10, 10)},
		},
	}
	possibility := Variable{
		Name: VarPossibility, Unit: "%", Min: 0, Max: 100, Step: 1,
		Terms: []Term{
			{"low", Trap(0, 0, 20, 40)},
			{"medium", Tri(30, 50, 70)},
			{"high", Trap(60, 80, 100, 100)},
		},
	}

	t, h, c, e := VarTemperature, VarHeadache, VarCough, VarEpiRisk
	rules := []Rule{
		// high: severe combinations
		and("high", ref(t, "high"), ref(h, "severe"), ref(e, "high")),
		and("high", ref(t, "high"), ref(h, "severe")),
		and("high", ref(h, "severe"), ref(c, "severe"), ref(e, "high")),
		and("high", ref(t, "high"), ref(e, "high")),

		// medium: moderate combinations
		and("medium", ref(t, "high"), ref(h, "moderate")),
		and("medium", ref(t, "medium"), ref(h, "moderate")),
		and("medium", ref(c, "moderate"), ref(h, "moderate")),
		and("medium", ref(t, "medium"), ref(e, "medium")),

		// low: mild symptoms
		and("low", ref(t, "normal"), ref(h, "mild"), ref(c, "mild")),
		and("low", ref(h, "mild"), ref(e, "low")),
		and("low", ref(t, "normal"), ref(c, "mild")),

		// catch-all keeps the aggregate non-empty for any temperature; its strength
		// dips between term peaks, so output is not monotone in temperature
		{Terms: []TermRef{ref(t, "normal"), ref(t, "medium"), ref(t, "high")}, Op: Or, Consequent: "medium"},
	}

	return NewSystem(
		[]Variable{temperature, intensity(VarHeadache), intensity(VarCough), epi},
		possibility,
		rules,
	)
}

// Engine is the fuzzy dengue possibility controller.
type Engine struct {
	sys *System
}

// New builds the engine. An invalid rule base is a configuration error.
func New() (*Engine, error) {
	sys, err := DengueSystem()
	if err != nil {
		return nil, fmt.Errorf("build dengue fuzzy system: %w", err)
	}
	return &Engine{sys: sys}, nil
}

// System exposes the controller read-only.
func (e *Engine) System() *System { return e.sys }

// EpiRisk derives the epidemiological risk score from the context flags.
func EpiRisk(f model.Facts) float64 {
	var score float64
	if f.TravelEndemic {
		score += TravelRisk
	}
	if f.ContactCase {
		score += ContactRisk
	}
	return score
}

func signed(on bool, v float64) string {
	if on {
		return fmt.Sprintf("+%g", v)
	}
	return "0"
}

// Infer fuzzifies the facts, fires the rule base and defuzzifies by centroid.
// Numeric faults are returned as an error diagnosis.
func (e *Engine) Infer(facts model.Facts) (d model.Diagnosis) {
	var trace []string
	logf := func(format string, args ...any) {
		trace = append(trace, fmt.Sprintf(format, args...))
	}
	defer func() {
		if r := recover(); r != nil {
			d = model.ErrorDiagnosis(LabelError, fmt.Errorf("panic: %v", r), trace...)
		}
	}()

	logf("FUZZY SYSTEM: linguistic variables")
	logf("ANTECEDENTS:")
	for _, v := range e.sys.Antecedents() {
		logf("  - %s", v.Describe())
	}
	logf("CONSEQUENT:")
	logf("  - %s", e.sys.Consequent().Describe())
	logf("---")

	epi := EpiRisk(facts)
	inputs := map[string]float64{
		VarTemperature: facts.Temperature,
		VarHeadache:    facts.HeadacheIntensity,
		VarCough:       facts.CoughIntensity,
		VarEpiRisk:     epi,
	}
	logf("CRISP INPUTS:")
	logf("  - %s = %g°C", VarTemperature, facts.Temperature)
	logf("  - %s = %g/10", VarHeadache, facts.HeadacheIntensity)
	logf("  - %s = %g/10", VarCough, facts.CoughIntensity)
	logf("  - %s = %g (travel: %s, contact: %s)", VarEpiRisk, epi,
		signed(facts.TravelEndemic, TravelRisk), signed(facts.ContactCase, ContactRisk))
	logf("---")

	res, err := e.sys.Compute(inputs)
	if err != nil {
		return model.ErrorDiagnosis(LabelError, err, trace...)
	}

	logf("FUZZY RULES:")
	for i, r := range e.sys.Rules() {
		logf("  R%d [%s] %s (strength %.2f)", i+1, r.Consequent, r, res.Activations[i])
	}
	logf("---")
	logf("DEFUZZIFICATION:")
	logf("  Method: centroid")
	logf("  Output: %.2f%%", res.Value)

	label := LabelLow
	switch {
	case res.Value > HighThreshold:
		label = LabelHigh
	case res.Value > MediumThreshold:
		label = LabelMedium
	}
	return model.NewDiagnosis(label, res.Value/100, trace)
}
