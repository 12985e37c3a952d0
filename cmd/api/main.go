package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"astramate/internal/config"
	"astramate/internal/db"
	apihttp "astramate/internal/http"
	applog "astramate/internal/logger"
	"astramate/internal/repository"
	"astramate/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := applog.New(applog.Options{Service: "astramate-api", JSON: cfg.LogJSON, Debug: cfg.LogDebug})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var candidates repository.CandidateRepository = repository.NewStaticCandidateRepository(repository.DemoCandidates())
	switch {
	case cfg.DatabaseURL != "":
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		candidates = repository.NewPgCandidateRepository(pool)
		logger.Info("using postgres candidate catalog")
	case cfg.CandidatesFile != "":
		list, err := repository.LoadCandidatesFile(cfg.CandidatesFile)
		if err != nil {
			logger.Fatal("load candidates", zap.Error(err))
		}
		candidates = repository.NewStaticCandidateRepository(list)
		logger.Info("using file candidate catalog", zap.String("path", cfg.CandidatesFile), zap.Int("candidates", len(list)))
	}

	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	window := time.Duration(cfg.RateWindowSeconds) * time.Second
	sessions := service.NewMemorySessionStore(ttl)
	limiter := service.NewMemoryRateLimiter(window, cfg.SessionRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, keeping in-memory sessions", zap.Error(err))
		} else {
			sessions = service.NewRedisSessionStore(redisClient, ttl)
			limiter = service.NewRedisRateLimiter(redisClient, window, cfg.SessionRateLimit)
			logger.Info("using redis session store")
		}
		cancel()
	}

	scorer := service.DefaultScorer
	quizSvc := service.NewQuizService(sessions, logger)
	matchSvc := service.NewMatchService(candidates, scorer, logger)

	quizHandler := apihttp.NewQuizHandler(logger, quizSvc, matchSvc)
	compatHandler := apihttp.NewCompatibilityHandler(logger, scorer, matchSvc)
	router := apihttp.NewRouter(logger, quizHandler, compatHandler, limiter)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
