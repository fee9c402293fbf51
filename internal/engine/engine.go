// Package engine defines the inference contract shared by the diagnostic
// engines and the registry that selects one by paradigm name.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/expert-dx/internal/engine/bayes"
	"github.com/rcliao/expert-dx/internal/engine/fuzzy"
	"github.com/rcliao/expert-dx/internal/engine/rules"
	"github.com/rcliao/expert-dx/internal/model"
)

// Engine produces a diagnosis from a fact vector. Implementations must not
// panic, must not keep state between calls and must be safe for concurrent use.
type Engine interface {
	Infer(facts model.Facts) model.Diagnosis
}

// Paradigm identifiers.
const (
	RuleBased = "rule-based"
	Bayesian  = "bayesian"
	Fuzzy     = "fuzzy"
)

// aliases maps the intake form's original engine names to identifiers.
var aliases = map[string]string{
	"deterministico": RuleBased,
	"probabilistico": Bayesian,
	"difuso":         Fuzzy,
}

// ErrEngineNotFound is returned for an unknown paradigm identifier.
var ErrEngineNotFound = errors.New("engine not found")

// Registry maps paradigm identifiers to engine instances. It is built once and
// read-only afterwards.
type Registry struct {
	engines map[string]Engine
	order   []string
	logger  *zap.Logger
}

// NewRegistry builds the three engines. A malformed network or rule base
// aborts construction.
func NewRegistry(logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	bn, err := bayes.New()
	if err != nil {
		return nil, err
	}
	fz, err := fuzzy.New()
	if err != nil {
		return nil, err
	}

	r := &Registry{engines: make(map[string]Engine), logger: logger}
	r.register(RuleBased, rules.New())
	r.register(Bayesian, bn)
	r.register(Fuzzy, fz)
	return r, nil
}

func (r *Registry) register(name string, e Engine) {
	r.engines[name] = e
	r.order = append(r.order, name)
}

// Names returns the identifiers in registration order.
func (r *Registry) Names() []string { return append([]string(nil), r.order...) }

// Aliases returns the legacy names that resolve to id, sorted.
func Aliases(id string) []string {
	var out []string
	for alias, canonical := range aliases {
		if canonical == id {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve maps an identifier or legacy alias to its canonical identifier.
func (r *Registry) Resolve(name string) (string, error) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	if _, ok := r.engines[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrEngineNotFound, name)
	}
	return name, nil
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, error) {
	canonical, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return r.engines[canonical], nil
}

// Diagnose looks up the engine and runs a single inference.
func (r *Registry) Diagnose(name string, facts model.Facts) (model.Diagnosis, error) {
	e, err := r.Get(name)
	if err != nil {
		return model.Diagnosis{}, err
	}

	start := time.Now()
	d := e.Infer(facts)
	r.logger.Debug("inference complete",
		zap.String("engine", name),
		zap.String("label", d.Label),
		zap.Float64("confidence", d.Confidence),
		zap.Int("trace", len(d.Reasoning)),
		zap.Duration("took", time.Since(start)))
	return d, nil
}

// Result is one engine's answer in a comparison.
type Result struct {
	Engine    string          `json:"engine"`
	Diagnosis model.Diagnosis `json:"diagnosis"`
}

// Compare runs every engine on the same facts concurrently. Results follow
// registration order.
func (r *Registry) Compare(ctx context.Context, facts model.Facts) ([]Result, error) {
	results := make([]Result, len(r.order))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range r.order {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := r.Diagnose(name, facts)
			if err != nil {
				return err
			}
			results[i] = Result{Engine: name, Diagnosis: d}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
