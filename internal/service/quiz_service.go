package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"astramate/internal/domain"
)

var ErrServiceNotConfigured = errors.New("service not configured")

// QuizService maneja el recorrido del quiz: respuestas incrementales, pasos y progreso.
type QuizService struct {
	store  SessionStore
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewQuizService(store SessionStore, logger *zap.Logger) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Questions devuelve el cuestionario fijo en el orden del quiz.
func (s *QuizService) Questions() []domain.Question {
	return domain.Questions()
}

// Start crea una sesion vacia parada en la primera pregunta.
func (s *QuizService) Start(ctx context.Context) (domain.QuizSession, error) {
	if s == nil || s.store == nil {
		return domain.QuizSession{}, ErrServiceNotConfigured
	}
	now := s.now()
	session := domain.QuizSession{
		ID:        s.newID(),
		Answers:   domain.RawAnswers{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return domain.QuizSession{}, fmt.Errorf("save quiz session: %w", err)
	}
	s.logger.Info("quiz session started", zap.String("session_id", session.ID))
	return session, nil
}

func (s *QuizService) Get(ctx context.Context, id string) (domain.QuizSession, error) {
	if s == nil || s.store == nil {
		return domain.QuizSession{}, ErrServiceNotConfigured
	}
	return s.store.Get(ctx, strings.TrimSpace(id))
}

// Answer guarda la respuesta y avanza un paso. Likert solo acepta 1..5 y las preguntas
// de opcion solo sus opciones.
func (s *QuizService) Answer(ctx context.Context, id, questionID string, value any) (domain.QuizSession, error) {
	q, ok := domain.FindQuestion(strings.TrimSpace(questionID))
	if !ok {
		return domain.QuizSession{}, fmt.Errorf("%w: unknown question %q", ErrInvalidInput, questionID)
	}
	stored, err := validateAnswer(q, value)
	if err != nil {
		return domain.QuizSession{}, err
	}
	return s.update(ctx, id, func(session *domain.QuizSession) {
		session.Answers[q.ID] = stored
		session.Step = min(session.Step+1, domain.TotalSteps())
	})
}

// Back vuelve a la pregunta anterior.
func (s *QuizService) Back(ctx context.Context, id string) (domain.QuizSession, error) {
	return s.update(ctx, id, func(session *domain.QuizSession) {
		session.Step = max(0, session.Step-1)
	})
}

// Next saltea la pregunta actual sin responderla.
func (s *QuizService) Next(ctx context.Context, id string) (domain.QuizSession, error) {
	return s.update(ctx, id, func(session *domain.QuizSession) {
		session.Step = min(domain.TotalSteps(), session.Step+1)
	})
}

// Restart borra las respuestas y vuelve al inicio.
func (s *QuizService) Restart(ctx context.Context, id string) (domain.QuizSession, error) {
	return s.update(ctx, id, func(session *domain.QuizSession) {
		session.Answers = domain.RawAnswers{}
		session.Step = 0
	})
}

// Profile normaliza lo respondido hasta ahora.
func (s *QuizService) Profile(ctx context.Context, id string) (domain.Profile, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	return Normalize(session.Answers)
}

// update aplica fn dentro de Store.Update, asi dos requests sobre la misma sesion no
// se pisan las respuestas.
func (s *QuizService) update(ctx context.Context, id string, fn func(*domain.QuizSession)) (domain.QuizSession, error) {
	if s == nil || s.store == nil {
		return domain.QuizSession{}, ErrServiceNotConfigured
	}
	session, err := s.store.Update(ctx, strings.TrimSpace(id), func(session *domain.QuizSession) error {
		if session.Answers == nil {
			session.Answers = domain.RawAnswers{}
		}
		fn(session)
		session.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionConflict) {
			return domain.QuizSession{}, err
		}
		return domain.QuizSession{}, fmt.Errorf("update quiz session: %w", err)
	}
	s.logger.Debug("quiz session updated",
		zap.String("session_id", session.ID),
		zap.Int("step", session.Step),
		zap.Int("progress", session.Progress()),
	)
	return session, nil
}

func validateAnswer(q domain.Question, value any) (any, error) {
	switch q.Kind {
	case domain.QuestionKindLikert:
		v, ok := likertValue(value)
		if !ok || v < domain.LikertMin || v > domain.LikertMax {
			return nil, fmt.Errorf("%w: %s expects a value between %d and %d", ErrInvalidInput, q.ID, domain.LikertMin, domain.LikertMax)
		}
		return v, nil
	case domain.QuestionKindChoice:
		v, ok := value.(string)
		if !ok || !q.HasOption(v) {
			return nil, fmt.Errorf("%w: %s expects one of %s", ErrInvalidInput, q.ID, strings.Join(q.Options, ", "))
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unsupported question kind %q", ErrInvalidInput, q.Kind)
}
