package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"astramate/internal/domain"
)

var ErrInvalidInput = errors.New("invalid input")

// Normalize convierte respuestas crudas en un Profile.
// Rasgos sin responder quedan en 0.5; valores presentes fuera de 1..5 son ErrInvalidInput.
// Las preferencias no se validan contra las opciones del quiz.
func Normalize(answers domain.RawAnswers) (domain.Profile, error) {
	var traits [5]float64
	for i, key := range domain.TraitKeys {
		v, err := normalizeTrait(key, answers[key])
		if err != nil {
			return domain.Profile{}, err
		}
		traits[i] = v
	}

	var prefs [4]domain.Preference
	for i, key := range domain.PreferenceKeys {
		p, err := normalizePreference(key, answers[key])
		if err != nil {
			return domain.Profile{}, err
		}
		prefs[i] = p
	}

	return domain.Profile{
		Openness:          traits[0],
		Conscientiousness: traits[1],
		Extraversion:      traits[2],
		Agreeableness:     traits[3],
		Neuroticism:       traits[4],
		LoveLanguage:      prefs[0],
		Attachment:        prefs[1],
		Family:            prefs[2],
		Relocate:          prefs[3],
	}, nil
}

// MustNormalize es Normalize para fixtures estaticos; entra en panico ante error.
func MustNormalize(answers domain.RawAnswers) domain.Profile {
	p, err := Normalize(answers)
	if err != nil {
		panic(err)
	}
	return p
}

func normalizeTrait(key string, raw any) (float64, error) {
	if raw == nil {
		return domain.NeutralTrait, nil
	}
	v, ok := likertValue(raw)
	if !ok || v < domain.LikertMin || v > domain.LikertMax {
		return 0, fmt.Errorf("%w: %s must be an integer between %d and %d, got %v",
			ErrInvalidInput, key, domain.LikertMin, domain.LikertMax, raw)
	}
	return float64(v-1) / 4, nil
}

func normalizePreference(key string, raw any) (domain.Preference, error) {
	if raw == nil {
		return domain.NoPreference, nil
	}
	s, ok := raw.(string)
	if !ok {
		return domain.NoPreference, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidInput, key, raw)
	}
	return domain.NewPreference(s), nil
}

// likertValue acepta enteros y numeros JSON sin parte fraccionaria.
func likertValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return integralLikert(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return integralLikert(f)
	}
	return 0, false
}

func integralLikert(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) ||
		v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
