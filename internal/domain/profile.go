package domain

import (
	"encoding/json"
	"math"
)

// Claves de las preguntas del quiz. Son también las claves de RawAnswers.
const (
	QuestionOpenness          = "openness"
	QuestionConscientiousness = "conscientiousness"
	QuestionExtraversion      = "extraversion"
	QuestionAgreeableness     = "agreeableness"
	QuestionNeuroticism       = "neuroticism"
	QuestionLoveLanguage      = "loveLanguage"
	QuestionAttachment        = "attachment"
	QuestionFamily            = "family"
	QuestionRelocate          = "relocate"
)

// TraitKeys lista los rasgos Big Five en el orden del vector de rasgos.
var TraitKeys = []string{
	QuestionOpenness,
	QuestionConscientiousness,
	QuestionExtraversion,
	QuestionAgreeableness,
	QuestionNeuroticism,
}

// PreferenceKeys lista las preferencias categoricas.
var PreferenceKeys = []string{
	QuestionLoveLanguage,
	QuestionAttachment,
	QuestionFamily,
	QuestionRelocate,
}

// NeutralTrait es el valor de un rasgo sin responder.
const NeutralTrait = 0.5

// RawAnswers mapea id de pregunta a un entero Likert (1..5) o a una opcion.
// Las claves ausentes son preguntas sin responder.
type RawAnswers map[string]any

// Clone devuelve una copia superficial; los valores son escalares.
func (a RawAnswers) Clone() RawAnswers {
	out := make(RawAnswers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Preference es un valor categorico opcional. El valor cero significa "sin respuesta"
// y nunca se representa con un string vacio.
type Preference struct {
	value string
	set   bool
}

// NoPreference es el centinela de preferencia ausente.
var NoPreference = Preference{}

// NewPreference construye una preferencia; un string vacio produce NoPreference.
func NewPreference(v string) Preference {
	if v == "" {
		return NoPreference
	}
	return Preference{value: v, set: true}
}

func (p Preference) Value() (string, bool) { return p.value, p.set }

func (p Preference) IsSet() bool { return p.set }

// Is reporta si la preferencia esta presente y vale v.
func (p Preference) Is(v string) bool { return p.set && p.value == v }

func (p Preference) String() string {
	if !p.set {
		return "—"
	}
	return p.value
}

func (p Preference) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}

func (p *Preference) UnmarshalJSON(data []byte) error {
	var v *string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*p = NoPreference
		return nil
	}
	*p = NewPreference(*v)
	return nil
}

// Profile es el perfil normalizado: cinco rasgos en [0,1] y cuatro preferencias.
// Es un valor inmutable derivado de un RawAnswers.
type Profile struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`

	LoveLanguage Preference `json:"loveLanguage"`
	Attachment   Preference `json:"attachment"`
	Family       Preference `json:"family"`
	Relocate     Preference `json:"relocate"`
}

// TraitVector devuelve los rasgos en el orden de TraitKeys.
func (p Profile) TraitVector() [5]float64 {
	return [5]float64{p.Openness, p.Conscientiousness, p.Extraversion, p.Agreeableness, p.Neuroticism}
}

// Preference devuelve la preferencia asociada a la clave, o NoPreference si la clave no existe.
func (p Profile) Preference(key string) Preference {
	switch key {
	case QuestionLoveLanguage:
		return p.LoveLanguage
	case QuestionAttachment:
		return p.Attachment
	case QuestionFamily:
		return p.Family
	case QuestionRelocate:
		return p.Relocate
	}
	return NoPreference
}

// TraitPercentages expresa cada rasgo como porcentaje entero para mostrar.
func (p Profile) TraitPercentages() map[string]int {
	vec := p.TraitVector()
	out := make(map[string]int, len(vec))
	for i, key := range TraitKeys {
		out[key] = int(math.Round(vec[i] * 100))
	}
	return out
}
