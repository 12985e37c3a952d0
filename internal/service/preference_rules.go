package service

import "astramate/internal/domain"

// PreferencePolicy decide si dos preferencias presentes otorgan el bono.
// Solo se invoca cuando ambas preferencias estan presentes.
type PreferencePolicy func(a, b string) bool

// PreferenceRule es una fila de la tabla de bonos.
type PreferenceRule struct {
	Key    string
	Bonus  float64
	Policy PreferencePolicy
}

// Apply devuelve el bono de la regla para el par de perfiles.
func (r PreferenceRule) Apply(a, b domain.Profile) float64 {
	av, aok := a.Preference(r.Key).Value()
	bv, bok := b.Preference(r.Key).Value()
	if !aok || !bok || r.Policy == nil {
		return 0
	}
	if r.Policy(av, bv) {
		return r.Bonus
	}
	return 0
}

// PolicyEqual otorga el bono cuando ambos valores coinciden.
func PolicyEqual(a, b string) bool { return a == b }

// PolicyEither otorga el bono cuando alguno de los dos vale v.
func PolicyEither(v string) PreferencePolicy {
	return func(a, b string) bool { return a == v || b == v }
}

// PolicyEqualOrEither combina PolicyEqual y PolicyEither.
func PolicyEqualOrEither(v string) PreferencePolicy {
	either := PolicyEither(v)
	return func(a, b string) bool { return a == b || either(a, b) }
}

// PolicyNotBoth otorga el bono salvo que ambos valgan v.
func PolicyNotBoth(v string) PreferencePolicy {
	return func(a, b string) bool { return a != v || b != v }
}

// DefaultPreferenceRules es la tabla de bonos por preferencia.
func DefaultPreferenceRules() []PreferenceRule {
	return []PreferenceRule{
		{Key: domain.QuestionLoveLanguage, Bonus: 0.10, Policy: PolicyEqual},
		{Key: domain.QuestionAttachment, Bonus: 0.05, Policy: PolicyEither(domain.AttachmentSecure)},
		{Key: domain.QuestionFamily, Bonus: 0.05, Policy: PolicyEqualOrEither(domain.FamilyFlexible)},
		{Key: domain.QuestionRelocate, Bonus: 0.03, Policy: PolicyNotBoth(domain.RelocateNo)},
	}
}

func equalPresent(a, b domain.Preference) bool {
	av, aok := a.Value()
	bv, bok := b.Value()
	return aok && bok && av == bv
}
