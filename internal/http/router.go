package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"astramate/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	quizH *QuizHandler,
	compatH *CompatibilityHandler,
	limiter service.RateLimiter,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	quiz := r.Group("/quiz")
	quiz.GET("/questions", quizH.ListQuestions)
	quiz.POST("/sessions", rateLimitMiddleware(logger, limiter), quizH.StartSession)
	quiz.GET("/sessions/:id", quizH.GetSession)
	quiz.POST("/sessions/:id/answers", quizH.AnswerQuestion)
	quiz.POST("/sessions/:id/back", quizH.Back)
	quiz.POST("/sessions/:id/next", quizH.Next)
	quiz.POST("/sessions/:id/restart", quizH.Restart)
	quiz.GET("/sessions/:id/profile", quizH.GetProfile)
	quiz.GET("/sessions/:id/matches", quizH.GetMatches)

	r.POST("/profiles", compatH.NormalizeProfile)
	r.POST("/compatibility", compatH.Compare)
	r.POST("/matches", compatH.MatchAnswers)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// rateLimitMiddleware corta con 429 cuando la IP del cliente supera el limite.
// Con limiter nil no limita nada.
func rateLimitMiddleware(logger *zap.Logger, limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !limiter.Allow(c.Request.Context(), ip) {
			logger.Warn("rate limited", zap.String("client_ip", ip), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
