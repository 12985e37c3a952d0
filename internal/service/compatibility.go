package service

import (
	"math"

	"astramate/internal/domain"
)

// Weights pondera los tres terminos del puntaje final.
type Weights struct {
	Psych float64
	Astro float64
	Bonus float64
}

var DefaultWeights = Weights{Psych: 0.4, Astro: 0.4, Bonus: 0.2}

// maxTraitDistance normaliza la distancia euclidea sobre los cinco rasgos.
var maxTraitDistance = math.Sqrt(float64(len(domain.TraitKeys)))

// CompatibilityScorer combina similitud de rasgos, bonos por preferencias y el termino
// astrologico. Es inmutable tras construirse y seguro para uso concurrente.
type CompatibilityScorer struct {
	astro   AstrologyScorer
	rules   []PreferenceRule
	weights Weights
}

type ScorerOption func(*CompatibilityScorer)

func WithAstrology(a AstrologyScorer) ScorerOption {
	return func(s *CompatibilityScorer) {
		if a != nil {
			s.astro = a
		}
	}
}

func WithWeights(w Weights) ScorerOption {
	return func(s *CompatibilityScorer) { s.weights = w }
}

// WithRules reemplaza la tabla de bonos. La tabla se copia.
func WithRules(rules []PreferenceRule) ScorerOption {
	return func(s *CompatibilityScorer) {
		s.rules = append([]PreferenceRule(nil), rules...)
	}
}

func NewCompatibilityScorer(opts ...ScorerOption) *CompatibilityScorer {
	s := &CompatibilityScorer{
		astro:   DefaultAstrology,
		rules:   DefaultPreferenceRules(),
		weights: DefaultWeights,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultScorer es el scorer con pesos, reglas y astrologia por defecto.
var DefaultScorer = NewCompatibilityScorer()

// Score devuelve la compatibilidad de a con b en [0,1] usando DefaultScorer.
func Score(a, b domain.Profile) float64 {
	return DefaultScorer.Score(a, b)
}

func (s *CompatibilityScorer) Score(a, b domain.Profile) float64 {
	return s.Breakdown(a, b).Score
}

// Breakdown calcula todos los terminos intermedios y el puntaje final acotado a [0,1].
func (s *CompatibilityScorer) Breakdown(a, b domain.Profile) domain.Breakdown {
	psych := TraitSimilarity(a, b)
	astro := s.astro.Score(a, b)

	bonuses := make(map[string]float64, len(s.rules))
	var bonusTotal float64
	for _, r := range s.rules {
		v := r.Apply(a, b)
		bonuses[r.Key] = v
		bonusTotal += v
	}

	final := s.weights.Psych*psych + s.weights.Astro*astro + s.weights.Bonus*bonusTotal
	final = clamp01(final)

	return domain.Breakdown{
		Psych:      psych,
		Astro:      astro,
		Bonuses:    bonuses,
		BonusTotal: bonusTotal,
		Score:      final,
		Percent:    Percent(final),
	}
}

// TraitSimilarity es 1 menos la distancia euclidea normalizada por sqrt(5).
// Con rasgos en [0,1] el resultado queda en [0,1].
func TraitSimilarity(a, b domain.Profile) float64 {
	av, bv := a.TraitVector(), b.TraitVector()
	var sum float64
	for i := range av {
		d := av[i] - bv[i]
		sum += d * d
	}
	return 1 - math.Sqrt(sum)/maxTraitDistance
}

// Percent convierte un puntaje en porcentaje entero redondeado.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
