package domain

// QuestionKind distingue preguntas Likert de preguntas de opcion multiple.
type QuestionKind string

const (
	QuestionKindLikert QuestionKind = "likert"
	QuestionKindChoice QuestionKind = "choice"
)

// Escala Likert.
const (
	LikertMin = 1
	LikertMax = 5
)

// Opciones de las preguntas categoricas.
const (
	LoveLanguageWords = "Words"
	LoveLanguageActs  = "Acts"
	LoveLanguageGifts = "Gifts"
	LoveLanguageTime  = "Time"
	LoveLanguageTouch = "Touch"

	AttachmentSecure       = "Secure"
	AttachmentAnxious      = "Anxious"
	AttachmentAvoidant     = "Avoidant"
	AttachmentDisorganized = "Disorganized"

	FamilyJoint    = "Joint"
	FamilyNuclear  = "Nuclear"
	FamilyFlexible = "Flexible"

	RelocateYes   = "Yes"
	RelocateNo    = "No"
	RelocateMaybe = "Maybe"
)

type Question struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Kind    QuestionKind `json:"kind"`
	Options []string     `json:"options,omitempty"`
}

// HasOption reporta si v es una de las opciones de la pregunta.
func (q Question) HasOption(v string) bool {
	for _, op := range q.Options {
		if op == v {
			return true
		}
	}
	return false
}

// Questions devuelve el cuestionario en orden. Cada llamada devuelve una copia nueva.
func Questions() []Question {
	return []Question{
		{ID: QuestionOpenness, Prompt: "I enjoy trying new activities and experiences.", Kind: QuestionKindLikert},
		{ID: QuestionConscientiousness, Prompt: "I prefer to plan and stick to routines.", Kind: QuestionKindLikert},
		{ID: QuestionExtraversion, Prompt: "I feel energized by social interactions.", Kind: QuestionKindLikert},
		{ID: QuestionAgreeableness, Prompt: "I try to avoid conflict in relationships.", Kind: QuestionKindLikert},
		{ID: QuestionNeuroticism, Prompt: "I often worry about relationship outcomes.", Kind: QuestionKindLikert},
		{
			ID:      QuestionLoveLanguage,
			Prompt:  "Primary love language?",
			Kind:    QuestionKindChoice,
			Options: []string{LoveLanguageWords, LoveLanguageActs, LoveLanguageGifts, LoveLanguageTime, LoveLanguageTouch},
		},
		{
			ID:      QuestionAttachment,
			Prompt:  "Attachment style?",
			Kind:    QuestionKindChoice,
			Options: []string{AttachmentSecure, AttachmentAnxious, AttachmentAvoidant, AttachmentDisorganized},
		},
		{
			ID:      QuestionFamily,
			Prompt:  "Preferred family setup?",
			Kind:    QuestionKindChoice,
			Options: []string{FamilyJoint, FamilyNuclear, FamilyFlexible},
		},
		{
			ID:      QuestionRelocate,
			Prompt:  "Willing to relocate for a partner?",
			Kind:    QuestionKindChoice,
			Options: []string{RelocateYes, RelocateNo, RelocateMaybe},
		},
	}
}

// FindQuestion busca una pregunta por id.
func FindQuestion(id string) (Question, bool) {
	for _, q := range Questions() {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
