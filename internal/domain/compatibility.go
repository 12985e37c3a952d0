package domain

// Breakdown detalla cada termino del puntaje de compatibilidad.
type Breakdown struct {
	Psych      float64            `json:"psych"`
	Astro      float64            `json:"astro"`
	Bonuses    map[string]float64 `json:"bonuses"`
	BonusTotal float64            `json:"bonus_total"`
	Score      float64            `json:"score"`
	Percent    int                `json:"percent"`
}

// MatchResult es un candidato puntuado contra un perfil.
type MatchResult struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
	Percent   int       `json:"percent"`
	Breakdown Breakdown `json:"breakdown"`
}
