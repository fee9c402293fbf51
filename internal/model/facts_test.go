package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFactsDefaults(t *testing.T) {
	f, err := ParseFacts(map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, 36.5, f.Temperature)
	assert.Equal(t, 5.0, f.HeadacheIntensity)
	assert.Equal(t, 5.0, f.CoughIntensity)
	assert.False(t, f.Cough)
	assert.False(t, f.Summer)
	assert.Equal(t, DefaultFacts(), f)
}

func TestParseFactsFormValues(t *testing.T) {
	f, err := ParseFacts(map[string]any{
		"fiebre":          "38.5",
		"tos":             "on",
		"dolor_garganta":  "",
		"viaje_brasil":    true,
		"contacto_dengue": "false",
		"vive_corrientes": "1",
		"intensidad_tos":  7,
		"verano":          json.Number("1"),
		"dolor_cabeza":    0,
		"unknown_key":     "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, 38.5, f.Temperature)
	assert.True(t, f.Cough)
	assert.False(t, f.SoreThroat)
	assert.True(t, f.TravelEndemic)
	assert.False(t, f.ContactCase)
	assert.True(t, f.ResidesEndemic)
	assert.Equal(t, 7.0, f.CoughIntensity)
	assert.Equal(t, 5.0, f.HeadacheIntensity)
	assert.True(t, f.Summer)
	assert.False(t, f.Headache)
}

func TestParseFactsRejectsBadTypes(t *testing.T) {
	t.Run("bool as number", func(t *testing.T) {
		_, err := ParseFacts(map[string]any{"tos": 3.0})
		assert.Error(t, err)
	})

	t.Run("bool as json number", func(t *testing.T) {
		_, err := ParseFacts(map[string]any{"tos": json.Number("2")})
		assert.Error(t, err)
	})

	t.Run("garbage bool", func(t *testing.T) {
		_, err := ParseFacts(map[string]any{"verano": "maybe"})
		assert.Error(t, err)
	})

	t.Run("garbage number", func(t *testing.T) {
		_, err := ParseFacts(map[string]any{"fiebre": "hot"})
		assert.Error(t, err)
	})
}

func TestFactsRoundTrip(t *testing.T) {
	orig := Facts{
		Temperature:       39.2,
		Cough:             true,
		SoreThroat:        false,
		Headache:          true,
		TravelEndemic:     true,
		ContactCase:       false,
		ResidesEndemic:    true,
		Summer:            false,
		HeadacheIntensity: 8,
		CoughIntensity:    1.5,
	}

	again, err := ParseFacts(orig.Map())
	require.NoError(t, err)
	assert.Equal(t, orig, again)

	b, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded Facts
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, orig, decoded)
}

func TestFactsUnmarshalPartial(t *testing.T) {
	var f Facts
	require.NoError(t, json.Unmarshal([]byte(`{"fiebre": 39, "tos": true}`), &f))

	assert.Equal(t, 39.0, f.Temperature)
	assert.True(t, f.Cough)
	assert.Equal(t, DefaultIntensity, f.HeadacheIntensity)
	assert.Equal(t, DefaultIntensity, f.CoughIntensity)
}

func TestNewDiagnosisClampsConfidence(t *testing.T) {
	assert.Equal(t, 1.0, NewDiagnosis("x", 1.7, nil).Confidence)
	assert.Equal(t, 0.0, NewDiagnosis("x", -0.2, nil).Confidence)
	assert.Equal(t, 0.0, NewDiagnosis("x", math.NaN(), nil).Confidence)
	assert.Equal(t, 0.42, NewDiagnosis("x", 0.42, nil).Confidence)
}

func TestNewDiagnosisCopiesTrace(t *testing.T) {
	trace := []string{"a", "b"}
	d := NewDiagnosis("x", 0.5, trace)
	trace[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, d.Reasoning)
}

func TestErrorDiagnosis(t *testing.T) {
	d := ErrorDiagnosis("Inference error", errors.New("boom"), "step 1")
	assert.Equal(t, "Inference error", d.Label)
	assert.Zero(t, d.Confidence)
	assert.Equal(t, []string{"step 1", "Error: boom"}, d.Reasoning)
}
