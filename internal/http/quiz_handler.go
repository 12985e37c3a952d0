package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"astramate/internal/domain"
	"astramate/internal/service"
)

// QuizHandler mantiene dependencias para los endpoints del quiz.
type QuizHandler struct {
	logger  *zap.Logger
	quiz    *service.QuizService
	matches *service.MatchService
}

// NewQuizHandler crea una instancia de QuizHandler con dependencias necesarias.
func NewQuizHandler(logger *zap.Logger, quiz *service.QuizService, matches *service.MatchService) *QuizHandler {
	return &QuizHandler{
		logger:  logger,
		quiz:    quiz,
		matches: matches,
	}
}

type sessionView struct {
	domain.QuizSession
	Progress int              `json:"progress"`
	Done     bool             `json:"done"`
	Current  *domain.Question `json:"current,omitempty"`
}

func newSessionView(s domain.QuizSession) sessionView {
	view := sessionView{QuizSession: s, Progress: s.Progress(), Done: s.Done()}
	if q, ok := s.Current(); ok {
		view.Current = &q
	}
	return view
}

type profileView struct {
	Profile     domain.Profile `json:"profile"`
	Percentages map[string]int `json:"percentages"`
}

func newProfileView(p domain.Profile) profileView {
	return profileView{Profile: p, Percentages: p.TraitPercentages()}
}

// ListQuestions maneja GET /quiz/questions.
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.quiz.Questions()})
}

// StartSession maneja POST /quiz/sessions.
func (h *QuizHandler) StartSession(c *gin.Context) {
	session, err := h.quiz.Start(c.Request.Context())
	if err != nil {
		h.respondError(c, "start quiz session", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": newSessionView(session)})
}

// GetSession maneja GET /quiz/sessions/:id.
func (h *QuizHandler) GetSession(c *gin.Context) {
	session, err := h.quiz.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "get quiz session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": newSessionView(session)})
}

// AnswerQuestion maneja POST /quiz/sessions/:id/answers.
func (h *QuizHandler) AnswerQuestion(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		Value      any    `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.quiz.Answer(c.Request.Context(), c.Param("id"), req.QuestionID, req.Value)
	if err != nil {
		h.respondError(c, "answer question", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": newSessionView(session)})
}

// Back maneja POST /quiz/sessions/:id/back.
func (h *QuizHandler) Back(c *gin.Context) {
	h.move(c, "quiz back", h.quiz.Back)
}

// Next maneja POST /quiz/sessions/:id/next.
func (h *QuizHandler) Next(c *gin.Context) {
	h.move(c, "quiz next", h.quiz.Next)
}

// Restart maneja POST /quiz/sessions/:id/restart.
func (h *QuizHandler) Restart(c *gin.Context) {
	h.move(c, "quiz restart", h.quiz.Restart)
}

// GetProfile maneja GET /quiz/sessions/:id/profile.
func (h *QuizHandler) GetProfile(c *gin.Context) {
	profile, err := h.quiz.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "session profile", err)
		return
	}
	c.JSON(http.StatusOK, newProfileView(profile))
}

// GetMatches maneja GET /quiz/sessions/:id/matches.
func (h *QuizHandler) GetMatches(c *gin.Context) {
	profile, err := h.quiz.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "session profile", err)
		return
	}
	results, err := h.matches.Match(c.Request.Context(), profile)
	if err != nil {
		h.respondError(c, "match candidates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": results})
}

func (h *QuizHandler) move(c *gin.Context, op string, fn func(ctx context.Context, id string) (domain.QuizSession, error)) {
	session, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": newSessionView(session)})
}

func (h *QuizHandler) respondError(c *gin.Context, op string, err error) {
	respondServiceError(c, h.logger, op, err)
}

// respondServiceError traduce errores de servicio a respuestas HTTP.
func respondServiceError(c *gin.Context, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		logger.Warn(op+" rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrSessionConflict):
		logger.Warn(op+" conflict", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "session changed concurrently, retry"})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
