package bayes

import (
	"fmt"
	"strings"

	"github.com/rcliao/expert-dx/internal/model"
)

// Network variables.
const (
	VarNexus      = "Nexus"
	VarDengue     = "Dengue"
	VarFever      = "Fever"
	VarHeadache   = "Headache"
	VarBodyAche   = "BodyAche"
	VarCough      = "Cough"
	VarSoreThroat = "SoreThroat"
)

// Labels produced by the Bayesian engine.
const (
	LabelHigh   = "High probability dengue"
	LabelMedium = "Suspicious (medium probability)"
	LabelLow    = "Low probability dengue"
	LabelError  = "Inference error"
)

// Posterior thresholds.
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.4
)

// FeverThreshold is the temperature (°C) above which Fever=1.
const FeverThreshold = 37.5

var symptoms = []string{VarFever, VarHeadache, VarBodyAche, VarCough, VarSoreThroat}

// binary returns the two-state CPD of a child given a binary parent, from
// P(child=1 | parent=0) and P(child=1 | parent=1).
func binary(child, parent string, p0, p1 float64) TabularCPD {
	return TabularCPD{
		Variable:     child,
		Card:         2,
		Evidence:     []string{parent},
		EvidenceCard: []int{2},
		Values: [][]float64{
			{1 - p0, 1 - p1},
			{p0, p1},
		},
	}
}

// DengueNetwork builds Nexus -> Dengue -> {Fever, Headache, BodyAche, Cough, SoreThroat}.
func DengueNetwork() (*Network, error) {
	edges := []Edge{{VarNexus, VarDengue}}
	for _, s := range symptoms {
		edges = append(edges, Edge{VarDengue, s})
	}

	return NewNetwork(edges,
		TabularCPD{
			Variable: VarNexus,
			Card:     2,
			Values:   [][]float64{{0.7}, {0.3}},
		},
		binary(VarDengue, VarNexus, 0.05, 0.60),
		binary(VarFever, VarDengue, 0.20, 0.95),
		binary(VarHeadache, VarDengue, 0.30, 0.85),
		binary(VarBodyAche, VarDengue, 0.20, 0.80),
		// respiratory symptoms point away from dengue
		binary(VarCough, VarDengue, 0.40, 0.20),
		binary(VarSoreThroat, VarDengue, 0.35, 0.15),
	)
}

// Engine answers P(Dengue=1 | evidence) on the fixed dengue network.
type Engine struct {
	net *Network
}

// New builds the engine. An invalid network is a configuration error.
func New() (*Engine, error) {
	net, err := DengueNetwork()
	if err != nil {
		return nil, fmt.Errorf("build dengue network: %w", err)
	}
	return &Engine{net: net}, nil
}

// Network exposes the underlying model read-only.
func (e *Engine) Network() *Network { return e.net }

// Evidence maps facts onto network evidence. Every modeled symptom is
// observed; symptoms the intake does not record are observed as absent.
func Evidence(f model.Facts) (map[string]int, []string) {
	ev := make(map[string]int, len(symptoms)+1)
	var notes []string

	var triggers []string
	if f.TravelEndemic {
		triggers = append(triggers, "travel_to_endemic_area")
	}
	if f.ContactCase {
		triggers = append(triggers, "contact_with_case")
	}
	if f.ResidesEndemic && f.Summer {
		triggers = append(triggers, "resides_in_endemic_zone AND summer")
	}
	if len(triggers) > 0 {
		ev[VarNexus] = 1
		notes = append(notes, fmt.Sprintf("  - %s = 1 (triggered by: %s)", VarNexus, strings.Join(triggers, ", ")))
	} else {
		ev[VarNexus] = 0
		notes = append(notes, fmt.Sprintf("  - %s = 0 (no travel, contact or local seasonal exposure)", VarNexus))
	}

	if f.Temperature > FeverThreshold {
		ev[VarFever] = 1
		notes = append(notes, fmt.Sprintf("  - %s = 1 (%.1f°C > %.1f)", VarFever, f.Temperature, FeverThreshold))
	} else {
		ev[VarFever] = 0
		notes = append(notes, fmt.Sprintf("  - %s = 0 (%.1f°C <= %.1f)", VarFever, f.Temperature, FeverThreshold))
	}

	flag := func(v string, present bool) {
		if present {
			ev[v] = 1
			notes = append(notes, fmt.Sprintf("  - %s = 1 (reported)", v))
			return
		}
		ev[v] = 0
		notes = append(notes, fmt.Sprintf("  - %s = 0 (not reported)", v))
	}
	flag(VarHeadache, f.Headache)
	ev[VarBodyAche] = 0
	notes = append(notes, fmt.Sprintf("  - %s = 0 (not recorded at intake, observed as absent)", VarBodyAche))
	flag(VarCough, f.Cough)
	flag(VarSoreThroat, f.SoreThroat)

	return ev, notes
}

// Posterior returns P(Dengue=1 | evidence).
func (e *Engine) Posterior(evidence map[string]int) (float64, error) {
	dist, err := e.net.Query(VarDengue, evidence)
	if err != nil {
		return 0, err
	}
	return dist[1], nil
}

// Infer computes the dengue posterior for the facts. Inference faults are
// returned as an error diagnosis.
func (e *Engine) Infer(facts model.Facts) (d model.Diagnosis) {
	trace := []string{
		fmt.Sprintf("BAYESIAN NETWORK: %s -> %s -> {%s}", VarNexus, VarDengue, strings.Join(symptoms, ", ")),
		"EVIDENCE:",
	}
	defer func() {
		if r := recover(); r != nil {
			d = model.ErrorDiagnosis(LabelError, fmt.Errorf("panic: %v", r), trace...)
		}
	}()

	ev, notes := Evidence(facts)
	trace = append(trace, notes...)
	eliminated := "none, every other node is observed"
	if hidden := e.net.Hidden(VarDengue, ev); len(hidden) > 0 {
		eliminated = strings.Join(hidden, ", ")
	}
	trace = append(trace, fmt.Sprintf("INFERENCE: exact variable elimination (summed out: %s)", eliminated))

	p, err := e.Posterior(ev)
	if err != nil {
		return model.ErrorDiagnosis(LabelError, err, trace...)
	}
	trace = append(trace, fmt.Sprintf("POSTERIOR: P(%s=1 | evidence) = %.4f", VarDengue, p))

	label := LabelLow
	switch {
	case p > HighThreshold:
		label = LabelHigh
	case p > MediumThreshold:
		label = LabelMedium
	}
	trace = append(trace, fmt.Sprintf("DECISION: %s (>%.1f high, >%.1f medium)", label, HighThreshold, MediumThreshold))

	return model.NewDiagnosis(label, p, trace)
}
