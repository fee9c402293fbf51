package bayes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/expert-dx/internal/model"
)

func rootCPD(v string, p1 float64) TabularCPD {
	return TabularCPD{Variable: v, Card: 2, Values: [][]float64{{1 - p1}, {p1}}}
}

func TestNewNetworkValid(t *testing.T) {
	n, err := NewNetwork([]Edge{{"A", "B"}}, rootCPD("A", 0.3), binary("B", "A", 0.1, 0.9))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, n.Variables())
	assert.Equal(t, []string{"B", "A"}, n.EliminationOrder())
	assert.Equal(t, []string{"A"}, n.Parents("B"))
}

func TestCPDIsolatedFromCallers(t *testing.T) {
	b := binary("B", "A", 0.1, 0.9)
	n, err := NewNetwork([]Edge{{"A", "B"}}, rootCPD("A", 0.5), b)
	require.NoError(t, err)

	b.Values[1][0] = 0.7
	b.Evidence[0] = "Z"
	got, ok := n.CPD("B")
	require.True(t, ok)
	assert.Equal(t, 0.1, got.Values[1][0])
	assert.Equal(t, []string{"A"}, got.Evidence)

	got.Values[1][1] = 0
	again, _ := n.CPD("B")
	assert.Equal(t, 0.9, again.Values[1][1])

	p, err := n.Query("B", nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p[1], 1e-12)

	_, ok = n.CPD("missing")
	assert.False(t, ok)
}

func TestHiddenSkipsQueryAndEvidence(t *testing.T) {
	n, err := DengueNetwork()
	require.NoError(t, err)

	assert.Equal(t, []string{"SoreThroat", "Cough", "BodyAche", "Headache", "Fever", "Nexus"}, n.Hidden(VarDengue, nil))
	assert.Equal(t, []string{"Nexus"}, n.Hidden(VarDengue, map[string]int{
		"Fever": 1, "Headache": 0, "BodyAche": 0, "Cough": 0, "SoreThroat": 0,
	}))

	ev, _ := Evidence(model.DefaultFacts())
	assert.Empty(t, n.Hidden(VarDengue, ev))
}

func TestNewNetworkRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		cpds  []TabularCPD
	}{
		{
			name:  "missing cpd",
			edges: []Edge{{"A", "B"}},
			cpds:  []TabularCPD{rootCPD("A", 0.5)},
		},
		{
			name: "duplicate cpd",
			cpds: []TabularCPD{rootCPD("A", 0.5), rootCPD("A", 0.4)},
		},
		{
			name:  "column does not sum to one",
			edges: []Edge{{"A", "B"}},
			cpds: []TabularCPD{rootCPD("A", 0.5), {
				Variable: "B", Card: 2, Evidence: []string{"A"}, EvidenceCard: []int{2},
				Values: [][]float64{{0.5, 0.2}, {0.4, 0.8}},
			}},
		},
		{
			name:  "cpd evidence is not a graph parent",
			edges: []Edge{{"A", "B"}},
			cpds:  []TabularCPD{rootCPD("A", 0.5), rootCPD("C", 0.5), binary("B", "C", 0.1, 0.2)},
		},
		{
			name:  "parent cardinality mismatch",
			edges: []Edge{{"A", "B"}},
			cpds: []TabularCPD{rootCPD("A", 0.5), {
				Variable: "B", Card: 2, Evidence: []string{"A"}, EvidenceCard: []int{3},
				Values: [][]float64{{0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}},
			}},
		},
		{
			name:  "wrong row count",
			edges: nil,
			cpds:  []TabularCPD{{Variable: "A", Card: 3, Values: [][]float64{{0.5}, {0.5}}}},
		},
		{
			name:  "negative probability",
			edges: nil,
			cpds:  []TabularCPD{{Variable: "A", Card: 2, Values: [][]float64{{-0.5}, {1.5}}}},
		},
		{
			name:  "cycle",
			edges: []Edge{{"A", "B"}, {"B", "A"}},
			cpds:  []TabularCPD{binary("A", "B", 0.1, 0.2), binary("B", "A", 0.3, 0.4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNetwork(tt.edges, tt.cpds...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidNetwork), "got %v", err)
		})
	}
}

func TestDengueNetworkIsValid(t *testing.T) {
	n, err := DengueNetwork()
	require.NoError(t, err)

	vars := n.Variables()
	require.Len(t, vars, 7)
	assert.Equal(t, VarNexus, vars[0])
	assert.Equal(t, VarDengue, vars[1])
	for _, s := range symptoms {
		assert.Equal(t, []string{VarDengue}, n.Parents(s))
	}
}

func TestFactorProductAndSumOut(t *testing.T) {
	a := TabularCPD{Variable: "A", Card: 2, Values: [][]float64{{0.4}, {0.6}}}.factor()
	b := binary("B", "A", 0.1, 0.7).factor()

	joint := Product(a, b)
	assert.Equal(t, []string{"A", "B"}, joint.Vars())
	assert.InDeltaSlice(t, []float64{0.36, 0.04, 0.18, 0.42}, joint.Values(), 1e-12)

	pb := joint.SumOut("A")
	assert.Equal(t, []string{"B"}, pb.Vars())
	assert.InDeltaSlice(t, []float64{0.54, 0.46}, pb.Values(), 1e-12)

	reduced := joint.Reduce("B", 1)
	assert.Equal(t, []string{"A"}, reduced.Vars())
	assert.InDeltaSlice(t, []float64{0.04, 0.42}, reduced.Values(), 1e-12)

	// the source factor is not modified
	assert.InDeltaSlice(t, []float64{0.36, 0.04, 0.18, 0.42}, joint.Values(), 1e-12)
}
