package bayes

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/expert-dx/internal/model"
)

// bruteForce computes P(query=1 | evidence) by enumerating the full joint.
func bruteForce(t *testing.T, n *Network, query string, evidence map[string]int) float64 {
	t.Helper()
	vars := n.Variables()
	assign := make(map[string]int, len(vars))

	var num, den float64
	var walk func(i int)
	walk = func(i int) {
		if i == len(vars) {
			p := 1.0
			for _, v := range vars {
				c, _ := n.CPD(v)
				col := 0
				for j, parent := range c.Evidence {
					col = col*c.EvidenceCard[j] + assign[parent]
				}
				p *= c.Values[assign[v]][col]
			}
			den += p
			if assign[query] == 1 {
				num += p
			}
			return
		}
		v := vars[i]
		for s := 0; s < n.card[v]; s++ {
			if e, ok := evidence[v]; ok && e != s {
				continue
			}
			assign[v] = s
			walk(i + 1)
		}
	}
	walk(0)
	require.NotZero(t, den)
	return num / den
}

func TestQueryMatchesEnumeration(t *testing.T) {
	n, err := DengueNetwork()
	require.NoError(t, err)

	cases := []map[string]int{
		{},
		{VarNexus: 1},
		{VarFever: 1, VarCough: 0},
		{VarNexus: 1, VarFever: 1, VarHeadache: 1, VarBodyAche: 0, VarCough: 0, VarSoreThroat: 0},
		{VarNexus: 0, VarFever: 1, VarHeadache: 1, VarBodyAche: 1, VarCough: 1, VarSoreThroat: 1},
		{VarHeadache: 1, VarSoreThroat: 1},
	}
	for _, ev := range cases {
		dist, err := n.Query(VarDengue, ev)
		require.NoError(t, err)
		require.Len(t, dist, 2)
		assert.InDelta(t, 1.0, dist[0]+dist[1], 1e-9)
		assert.InDelta(t, bruteForce(t, n, VarDengue, ev), dist[1], 1e-9, "evidence %v", ev)
	}

	// querying the root through its children
	dist, err := n.Query(VarNexus, map[string]int{VarFever: 1, VarHeadache: 1})
	require.NoError(t, err)
	assert.InDelta(t, bruteForce(t, n, VarNexus, map[string]int{VarFever: 1, VarHeadache: 1}), dist[1], 1e-9)
}

func TestQueryPriorMarginal(t *testing.T) {
	n, err := DengueNetwork()
	require.NoError(t, err)

	dist, err := n.Query(VarDengue, nil)
	require.NoError(t, err)
	// 0.7*0.05 + 0.3*0.60
	assert.InDelta(t, 0.215, dist[1], 1e-9)
}

func TestQueryErrors(t *testing.T) {
	n, err := DengueNetwork()
	require.NoError(t, err)

	_, err = n.Query("Malaria", nil)
	assert.Error(t, err)

	_, err = n.Query(VarDengue, map[string]int{"Rash": 1})
	assert.Error(t, err)

	_, err = n.Query(VarDengue, map[string]int{VarFever: 2})
	assert.Error(t, err)

	_, err = n.Query(VarDengue, map[string]int{VarDengue: 1})
	assert.Error(t, err)
}

func TestQueryInconsistentEvidence(t *testing.T) {
	// B is certainly 1 when A is 1 and A is certain.
	n, err := NewNetwork([]Edge{{"A", "B"}, {"B", "C"}},
		rootCPD("A", 1.0),
		binary("B", "A", 0.5, 1.0),
		binary("C", "B", 0.2, 0.7),
	)
	require.NoError(t, err)

	_, err = n.Query("C", map[string]int{"B": 0})
	assert.True(t, errors.Is(err, ErrInconsistentEvidence), "got %v", err)
}

func TestPosteriorMonotoneInNexus(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	withNexus := map[string]int{VarNexus: 1, VarFever: 1, VarHeadache: 1, VarBodyAche: 1, VarCough: 1, VarSoreThroat: 1}
	withoutNexus := map[string]int{VarNexus: 0, VarFever: 1, VarHeadache: 1, VarBodyAche: 1, VarCough: 1, VarSoreThroat: 1}

	hi, err := e.Posterior(withNexus)
	require.NoError(t, err)
	lo, err := e.Posterior(withoutNexus)
	require.NoError(t, err)

	assert.Greater(t, hi, lo)
}

func TestEvidenceFromFacts(t *testing.T) {
	f := model.DefaultFacts()
	f.Temperature = 39
	f.ResidesEndemic = true
	f.Summer = true
	f.Cough = true

	ev, notes := Evidence(f)
	assert.Equal(t, map[string]int{
		VarNexus: 1, VarFever: 1, VarHeadache: 0, VarBodyAche: 0, VarCough: 1, VarSoreThroat: 0,
	}, ev)
	assert.Contains(t, notes[0], "resides_in_endemic_zone AND summer")

	f.Summer = false
	ev, notes = Evidence(f)
	assert.Equal(t, 0, ev[VarNexus])
	assert.Contains(t, notes[0], "Nexus = 0")
}

func TestInferLabels(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	tests := []struct {
		name  string
		facts func(f *model.Facts)
		label string
	}{
		{
			name: "traveller with fever and headache",
			facts: func(f *model.Facts) {
				f.Temperature = 39
				f.Headache = true
				f.TravelEndemic = true
			},
			label: LabelHigh,
		},
		{
			name: "traveller with fever, headache and cough",
			facts: func(f *model.Facts) {
				f.Temperature = 39
				f.Headache = true
				f.Cough = true
				f.ContactCase = true
			},
			label: LabelMedium,
		},
		{
			name: "fever and headache without nexus",
			facts: func(f *model.Facts) {
				f.Temperature = 39
				f.Headache = true
			},
			label: LabelLow,
		},
		{
			name:  "defaults",
			facts: func(f *model.Facts) {},
			label: LabelLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := model.DefaultFacts()
			tt.facts(&f)
			d := e.Infer(f)
			assert.Equal(t, tt.label, d.Label)
			assert.GreaterOrEqual(t, d.Confidence, 0.0)
			assert.LessOrEqual(t, d.Confidence, 1.0)
		})
	}
}

func TestInferTrace(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	f := model.DefaultFacts()
	f.Temperature = 38.4
	f.TravelEndemic = true
	d := e.Infer(f)

	joined := strings.Join(d.Reasoning, "\n")
	assert.Contains(t, joined, "Nexus = 1 (triggered by: travel_to_endemic_area)")
	assert.Contains(t, joined, "Fever = 1 (38.4°C > 37.5)")
	assert.Contains(t, joined, "BodyAche = 0")
	assert.Contains(t, joined, "summed out: none")
	assert.Contains(t, joined, "POSTERIOR: P(Dengue=1 | evidence)")
}

func TestInferIsIdempotent(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	f := model.DefaultFacts()
	f.Temperature = 39
	f.Headache = true
	f.ContactCase = true

	assert.Equal(t, e.Infer(f), e.Infer(f))
}

func TestInferReportsInferenceFailure(t *testing.T) {
	// a network missing the symptom nodes cannot accept the engine's evidence
	net, err := NewNetwork([]Edge{{VarNexus, VarDengue}},
		rootCPD(VarNexus, 0.3),
		binary(VarDengue, VarNexus, 0.05, 0.6),
	)
	require.NoError(t, err)

	e := &Engine{net: net}
	d := e.Infer(model.DefaultFacts())

	assert.Equal(t, LabelError, d.Label)
	assert.Zero(t, d.Confidence)
	require.NotEmpty(t, d.Reasoning)
	assert.Contains(t, d.Reasoning[len(d.Reasoning)-1], "Error:")
}
