// Package rules implements the forward-chaining diagnostic rule engine.
//
// Rules are a statically ordered list of condition/action pairs applied once
// each over a single working memory. Order matters: the COVID-by-exclusion
// rule depends on the epidemiological rule never having fired.
package rules

import (
	"fmt"

	"github.com/rcliao/expert-dx/internal/model"
)

// Labels produced by the rule engine.
const (
	LabelDengueHigh     = "DENGUE (high probability)"
	LabelDengueImported = "Suspected dengue (imported)"
	LabelCovid          = "Possible COVID-19"
	LabelInconclusive   = "No conclusive diagnosis"
	LabelError          = "Rule engine error"
)

// FeverThreshold is the temperature (°C) above which a patient is febrile.
const FeverThreshold = 37.5

// memory is the working memory of one evaluation.
type memory struct {
	facts model.Facts

	suspectedInfection bool
	highEpiRisk        bool

	concluded  bool
	conclusion string
	confidence float64

	trace []string
}

func (m *memory) log(format string, args ...any) {
	m.trace = append(m.trace, fmt.Sprintf(format, args...))
}

func (m *memory) conclude(label string, confidence float64) {
	m.concluded = true
	m.conclusion = label
	m.confidence = confidence
}

// rule is one condition/action pair.
type rule struct {
	name string
	// requires names the derived fact that must hold before the rule is
	// considered; empty means always considered.
	requires string
	ready    func(m *memory) bool
	// when evaluates the condition and describes it for the trace.
	when func(m *memory) (bool, string)
	then func(m *memory) string
}

// Engine is the forward-chaining engine. It holds no per-call state.
type Engine struct {
	rules []rule
}

// New returns an engine with the fixed dengue/COVID rule base.
func New() *Engine {
	return &Engine{rules: ruleBase()}
}

func ruleBase() []rule {
	return []rule{
		{
			name: "symptom_base",
			when: func(m *memory) (bool, string) {
				f := m.facts
				ok := f.Temperature > FeverThreshold && (f.Cough || f.SoreThroat || f.Headache)
				return ok, fmt.Sprintf("fever %.1f°C (>%.1f) AND (cough=%t OR sore_throat=%t OR headache=%t)",
					f.Temperature, FeverThreshold, f.Cough, f.SoreThroat, f.Headache)
			},
			then: func(m *memory) string {
				m.suspectedInfection = true
				return "suspected viral infection (suspected_infection=true)"
			},
		},
		{
			name:     "epi_link",
			requires: "suspected_infection",
			ready:    func(m *memory) bool { return m.suspectedInfection },
			when: func(m *memory) (bool, string) {
				f := m.facts
				return f.TravelEndemic || f.ContactCase,
					fmt.Sprintf("travel_to_endemic_area=%t OR contact_with_case=%t", f.TravelEndemic, f.ContactCase)
			},
			then: func(m *memory) string {
				m.highEpiRisk = true
				return "high epidemiological risk (high_epi_risk=true)"
			},
		},
		{
			name:     "local_context",
			requires: "high_epi_risk",
			ready:    func(m *memory) bool { return m.highEpiRisk },
			when: func(m *memory) (bool, string) {
				f := m.facts
				return true, fmt.Sprintf("resides_in_endemic_zone=%t AND summer=%t", f.ResidesEndemic, f.Summer)
			},
			then: func(m *memory) string {
				f := m.facts
				if f.ResidesEndemic && f.Summer {
					m.conclude(LabelDengueHigh, 0.95)
					return "local transmission context applies: " + LabelDengueHigh
				}
				m.conclude(LabelDengueImported, 0.80)
				return "epidemiological risk without local context: " + LabelDengueImported
			},
		},
		{
			name:     "covid_by_exclusion",
			requires: "suspected_infection AND NOT high_epi_risk",
			ready:    func(m *memory) bool { return m.suspectedInfection && !m.highEpiRisk },
			when: func(m *memory) (bool, string) {
				return true, "symptoms present without an epidemiological link to dengue"
			},
			then: func(m *memory) string {
				m.conclude(LabelCovid, 0.60)
				return LabelCovid
			},
		},
	}
}

// Infer runs every rule once, in order, over a fresh working memory.
func (e *Engine) Infer(facts model.Facts) (d model.Diagnosis) {
	m := &memory{facts: facts}
	defer func() {
		if r := recover(); r != nil {
			d = model.ErrorDiagnosis(LabelError, fmt.Errorf("panic: %v", r), m.trace...)
		}
	}()

	for _, r := range e.rules {
		e.apply(r, m)
	}

	m.log("WORKING MEMORY: suspected_infection=%t, high_epi_risk=%t", m.suspectedInfection, m.highEpiRisk)
	if !m.concluded {
		m.log("No rule reached a conclusion.")
		return model.NewDiagnosis(LabelInconclusive, 0, m.trace)
	}
	return model.NewDiagnosis(m.conclusion, m.confidence, m.trace)
}

func (e *Engine) apply(r rule, m *memory) {
	if m.concluded {
		m.log("RULE SKIPPED: %s (conclusion already reached: %s)", r.name, m.conclusion)
		return
	}
	if r.ready != nil && !r.ready(m) {
		m.log("RULE SKIPPED: %s (requires %s)", r.name, r.requires)
		return
	}

	ok, cond := r.when(m)
	if !ok {
		m.log("RULE EVALUATED: %s (not satisfied)", r.name)
		m.log("   Condition: %s", cond)
		return
	}

	result := r.then(m)
	m.log("RULE FIRED: %s", r.name)
	m.log("   Condition: %s", cond)
	m.log("   Result: %s", result)
}

// Rules describes the rule base in evaluation order.
func (e *Engine) Rules() []string {
	out := make([]string, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.name
		if r.requires != "" {
			out[i] += " [requires " + r.requires + "]"
		}
	}
	return out
}
