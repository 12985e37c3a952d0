package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"astramate/internal/domain"
	"astramate/internal/service"
)

// CompatibilityHandler expone el normalizador y el scorer sin estado de sesion.
type CompatibilityHandler struct {
	logger  *zap.Logger
	scorer  *service.CompatibilityScorer
	matches *service.MatchService
}

// NewCompatibilityHandler crea una instancia de CompatibilityHandler.
func NewCompatibilityHandler(logger *zap.Logger, scorer *service.CompatibilityScorer, matches *service.MatchService) *CompatibilityHandler {
	if scorer == nil {
		scorer = service.DefaultScorer
	}
	return &CompatibilityHandler{
		logger:  logger,
		scorer:  scorer,
		matches: matches,
	}
}

// NormalizeProfile maneja POST /profiles.
func (h *CompatibilityHandler) NormalizeProfile(c *gin.Context) {
	var req struct {
		Answers domain.RawAnswers `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid normalize request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := service.Normalize(req.Answers)
	if err != nil {
		respondServiceError(c, h.logger, "normalize profile", err)
		return
	}
	c.JSON(http.StatusOK, newProfileView(profile))
}

// Compare maneja POST /compatibility con dos conjuntos de respuestas.
func (h *CompatibilityHandler) Compare(c *gin.Context) {
	var req struct {
		A domain.RawAnswers `json:"a"`
		B domain.RawAnswers `json:"b"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid compatibility request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	a, err := service.Normalize(req.A)
	if err != nil {
		respondServiceError(c, h.logger, "normalize profile a", err)
		return
	}
	b, err := service.Normalize(req.B)
	if err != nil {
		respondServiceError(c, h.logger, "normalize profile b", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"a":         a,
		"b":         b,
		"breakdown": h.scorer.Breakdown(a, b),
	})
}

// MatchAnswers maneja POST /matches: normaliza y puntua contra el catalogo.
func (h *CompatibilityHandler) MatchAnswers(c *gin.Context) {
	var req struct {
		Answers domain.RawAnswers `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid match request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := service.Normalize(req.Answers)
	if err != nil {
		respondServiceError(c, h.logger, "normalize profile", err)
		return
	}
	results, err := h.matches.Match(c.Request.Context(), profile)
	if err != nil {
		respondServiceError(c, h.logger, "match candidates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "matches": results})
}
