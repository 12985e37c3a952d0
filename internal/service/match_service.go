package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"astramate/internal/domain"
	"astramate/internal/repository"
)

// MatchService puntua un perfil contra todo el catalogo de candidatos.
type MatchService struct {
	candidates repository.CandidateRepository
	scorer     *CompatibilityScorer
	logger     *zap.Logger
}

func NewMatchService(candidates repository.CandidateRepository, scorer *CompatibilityScorer, logger *zap.Logger) *MatchService {
	if scorer == nil {
		scorer = DefaultScorer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{candidates: candidates, scorer: scorer, logger: logger}
}

// Match devuelve todos los candidatos ordenados por puntaje descendente; empates por id.
func (s *MatchService) Match(ctx context.Context, profile domain.Profile) ([]domain.MatchResult, error) {
	if s == nil || s.candidates == nil {
		return nil, ErrServiceNotConfigured
	}
	candidates, err := s.candidates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		b := s.scorer.Breakdown(profile, c.Profile)
		results = append(results, domain.MatchResult{
			Candidate: c,
			Score:     b.Score,
			Percent:   b.Percent,
			Breakdown: b,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Candidate.ID < results[j].Candidate.ID
	})

	s.logger.Debug("candidates scored", zap.Int("count", len(results)))
	return results, nil
}
