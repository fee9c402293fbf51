package fuzzy

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/expert-dx/internal/model"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New()
	require.NoError(t, err)
	return e
}

func TestDengueSystemRuleBase(t *testing.T) {
	e := newEngine(t)
	assert.Len(t, e.System().Rules(), 12)
	assert.Len(t, e.System().Antecedents(), 4)
	assert.Equal(t, VarPossibility, e.System().Consequent().Name)
}

func TestInferSymmetricMidRangeIsMedium(t *testing.T) {
	e := newEngine(t)
	f := model.DefaultFacts()
	f.Temperature = 37.5
	f.HeadacheIntensity = 5
	f.CoughIntensity = 5
	f.TravelEndemic = true

	d := e.Infer(f)
	assert.Equal(t, LabelMedium, d.Label)
	assert.InDelta(t, 0.50, d.Confidence, 1e-9)
}

func TestInferDefaultsIsMedium(t *testing.T) {
	d := newEngine(t).Infer(model.DefaultFacts())
	assert.Equal(t, LabelMedium, d.Label)
	assert.InDelta(t, 0.50, d.Confidence, 1e-9)
}

func TestInferSevereIsHigh(t *testing.T) {
	f := model.DefaultFacts()
	f.Temperature = 40
	f.HeadacheIntensity = 9
	f.CoughIntensity = 2
	f.TravelEndemic = true
	f.ContactCase = true

	d := newEngine(t).Infer(f)
	assert.Equal(t, LabelHigh, d.Label)
	assert.Greater(t, d.Confidence, 0.65)
}

func TestInferMildIsLow(t *testing.T) {
	f := model.DefaultFacts()
	f.Temperature = 36
	f.HeadacheIntensity = 1
	f.CoughIntensity = 1

	d := newEngine(t).Infer(f)
	assert.Equal(t, LabelLow, d.Label)
	assert.Less(t, d.Confidence, 0.35)
}

func TestInferFeverNeverLowersPossibility(t *testing.T) {
	e := newEngine(t)
	intensities := []float64{0, 1, 2, 2.5, 3, 4, 5, 6, 7, 7.5, 8, 9, 10}

	for _, h := range intensities {
		for _, c := range intensities {
			for _, ctx := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
				f := model.DefaultFacts()
				f.HeadacheIntensity = h
				f.CoughIntensity = c
				f.TravelEndemic, f.ContactCase = ctx[0], ctx[1]

				f.Temperature = 36
				afebrile := e.Infer(f)
				f.Temperature = 40
				febrile := e.Infer(f)

				require.NotEqual(t, LabelError, afebrile.Label)
				require.NotEqual(t, LabelError, febrile.Label)
				assert.GreaterOrEqual(t, febrile.Confidence+1e-9, afebrile.Confidence,
					"headache=%g cough=%g epi=%g", h, c, EpiRisk(f))
			}
		}
	}
}

func TestInferRisesWithFeverUnderEndemicExposure(t *testing.T) {
	e := newEngine(t)
	f := model.DefaultFacts()
	f.HeadacheIntensity = 5
	f.CoughIntensity = 5
	f.TravelEndemic = true
	f.ContactCase = true

	f.Temperature = 36
	first := e.Infer(f).Confidence
	f.Temperature = 40
	last := e.Infer(f).Confidence
	assert.InDelta(t, 0.50, first, 1e-9)
	assert.InDelta(t, 0.708, last, 1e-3)
}

func TestInferOutOfUniverseIsError(t *testing.T) {
	e := newEngine(t)

	for _, mut := range []func(f *model.Facts){
		func(f *model.Facts) { f.Temperature = 43 },
		func(f *model.Facts) { f.Temperature = 34.9 },
		func(f *model.Facts) { f.HeadacheIntensity = 11 },
		func(f *model.Facts) { f.CoughIntensity = math.NaN() },
	} {
		f := model.DefaultFacts()
		mut(&f)
		d := e.Infer(f)

		assert.Equal(t, LabelError, d.Label)
		assert.Zero(t, d.Confidence)
		require.NotEmpty(t, d.Reasoning)
		assert.Contains(t, d.Reasoning[len(d.Reasoning)-1], "outside universe")
	}
}

func TestInferTrace(t *testing.T) {
	f := model.DefaultFacts()
	f.Temperature = 38.5
	f.ContactCase = true

	d := newEngine(t).Infer(f)
	joined := strings.Join(d.Reasoning, "\n")

	assert.Contains(t, joined, "temperature: [35-42]°C -> {normal, medium, high}")
	assert.Contains(t, joined, "dengue_possibility: [0-100]% -> {low, medium, high}")
	assert.Contains(t, joined, "epi_risk = 5 (travel: 0, contact: +5)")
	assert.Contains(t, joined, "R12 [medium] temperature=normal OR temperature=medium OR temperature=high -> medium")
	assert.Contains(t, joined, "Method: centroid")
	assert.Contains(t, joined, "Output: ")
}

func TestEpiRisk(t *testing.T) {
	f := model.DefaultFacts()
	assert.Equal(t, 0.0, EpiRisk(f))
	f.TravelEndemic = true
	assert.Equal(t, 5.0, EpiRisk(f))
	f.ContactCase = true
	assert.Equal(t, 10.0, EpiRisk(f))
	f.ResidesEndemic = true
	assert.Equal(t, 10.0, EpiRisk(f))
}

func TestInferIsIdempotent(t *testing.T) {
	e := newEngine(t)
	f := model.DefaultFacts()
	f.Temperature = 38.9
	f.HeadacheIntensity = 7.5
	f.TravelEndemic = true

	assert.Equal(t, e.Infer(f), e.Infer(f))
}
