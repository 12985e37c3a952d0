package service

import "astramate/internal/domain"

// AstrologyScorer calcula el termino astrologico entre dos perfiles, en [0,1].
type AstrologyScorer interface {
	Score(a, b domain.Profile) float64
}

// PlaceholderAstrology reemplaza a un calculo real de carta natal: una base fija
// mas un extra cuando ambos comparten love language.
type PlaceholderAstrology struct {
	Base              float64
	LoveLanguageMatch float64
}

// DefaultAstrology es la implementacion usada por defecto (0.6 + 0.2).
var DefaultAstrology = PlaceholderAstrology{Base: 0.6, LoveLanguageMatch: 0.2}

func (p PlaceholderAstrology) Score(a, b domain.Profile) float64 {
	if equalPresent(a.LoveLanguage, b.LoveLanguage) {
		return p.Base + p.LoveLanguageMatch
	}
	return p.Base
}
