package domain

import (
	"math"
	"time"
)

// QuizSession guarda las respuestas de una corrida del quiz mientras se construyen.
type QuizSession struct {
	ID        string     `json:"id"`
	Answers   RawAnswers `json:"answers"`
	Step      int        `json:"step"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TotalSteps es la cantidad de preguntas del quiz.
func TotalSteps() int {
	return len(Questions())
}

// Progress devuelve el avance como porcentaje entero.
func (s QuizSession) Progress() int {
	return int(math.Round(float64(s.Step) / float64(TotalSteps()) * 100))
}

// Done reporta si ya se recorrieron todas las preguntas.
func (s QuizSession) Done() bool {
	return s.Step >= TotalSteps()
}

// Current devuelve la pregunta del paso actual; false cuando el quiz termino.
func (s QuizSession) Current() (Question, bool) {
	qs := Questions()
	if s.Step < 0 || s.Step >= len(qs) {
		return Question{}, false
	}
	return qs[s.Step], true
}
