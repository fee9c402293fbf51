// Package model defines the core diagnostic data types.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Fact vector keys as submitted by the intake form.
const (
	KeyFever             = "fiebre"
	KeyCough             = "tos"
	KeySoreThroat        = "dolor_garganta"
	KeyHeadache          = "dolor_cabeza"
	KeyTravel            = "viaje_brasil"
	KeyContact           = "contacto_dengue"
	KeyResides           = "vive_corrientes"
	KeySummer            = "verano"
	KeyHeadacheIntensity = "intensidad_dolor_cabeza"
	KeyCoughIntensity    = "intensidad_tos"
)

// Defaults substituted for omitted keys.
const (
	DefaultTemperature = 36.5
	DefaultIntensity   = 5.0
)

// Facts is the normalized patient observation vector shared by all engines.
// It is a value type: engines receive a copy and cannot alter the caller's.
type Facts struct {
	Temperature       float64 `json:"fiebre"`
	Cough             bool    `json:"tos"`
	SoreThroat        bool    `json:"dolor_garganta"`
	Headache          bool    `json:"dolor_cabeza"`
	TravelEndemic     bool    `json:"viaje_brasil"`
	ContactCase       bool    `json:"contacto_dengue"`
	ResidesEndemic    bool    `json:"vive_corrientes"`
	Summer            bool    `json:"verano"`
	HeadacheIntensity float64 `json:"intensidad_dolor_cabeza"`
	CoughIntensity    float64 `json:"intensidad_tos"`
}

// DefaultFacts returns the vector used when the caller supplies nothing.
func DefaultFacts() Facts {
	return Facts{
		Temperature:       DefaultTemperature,
		HeadacheIntensity: DefaultIntensity,
		CoughIntensity:    DefaultIntensity,
	}
}

// ParseFacts builds a Facts from a loosely typed mapping. Missing keys keep
// their defaults and unknown keys are ignored.
func ParseFacts(m map[string]any) (Facts, error) {
	f := DefaultFacts()

	floats := map[string]*float64{
		KeyFever:             &f.Temperature,
		KeyHeadacheIntensity: &f.HeadacheIntensity,
		KeyCoughIntensity:    &f.CoughIntensity,
	}
	for key, dst := range floats {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		n, err := toFloat(v)
		if err != nil {
			return Facts{}, fmt.Errorf("fact %q: %w", key, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		KeyCough:      &f.Cough,
		KeySoreThroat: &f.SoreThroat,
		KeyHeadache:   &f.Headache,
		KeyTravel:     &f.TravelEndemic,
		KeyContact:    &f.ContactCase,
		KeyResides:    &f.ResidesEndemic,
		KeySummer:     &f.Summer,
	}
	for key, dst := range bools {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		b, err := toBool(v)
		if err != nil {
			return Facts{}, fmt.Errorf("fact %q: %w", key, err)
		}
		*dst = b
	}

	return f, nil
}

// Map returns every fact under its wire key, defaults included.
func (f Facts) Map() map[string]any {
	return map[string]any{
		KeyFever:             f.Temperature,
		KeyCough:             f.Cough,
		KeySoreThroat:        f.SoreThroat,
		KeyHeadache:          f.Headache,
		KeyTravel:            f.TravelEndemic,
		KeyContact:           f.ContactCase,
		KeyResides:           f.ResidesEndemic,
		KeySummer:            f.Summer,
		KeyHeadacheIntensity: f.HeadacheIntensity,
		KeyCoughIntensity:    f.CoughIntensity,
	}
}

// UnmarshalJSON decodes through ParseFacts so omitted keys get defaults.
func (f *Facts) UnmarshalJSON(data []byte) error {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return err
	}
	parsed, err := ParseFacts(m)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, fmt.Errorf("empty number")
		}
		return strconv.ParseFloat(s, 64)
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case json.Number:
		return toBool(string(b))
	case float64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
		return false, fmt.Errorf("invalid boolean %v", b)
	case int:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
		return false, fmt.Errorf("invalid boolean %d", b)
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "on", "true", "1", "yes":
			return true, nil
		case "off", "false", "0", "no", "":
			return false, nil
		}
		return false, fmt.Errorf("invalid boolean %q", b)
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}
