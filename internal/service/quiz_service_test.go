package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"astramate/internal/domain"
)

func newTestQuizService() *QuizService {
	svc := NewQuizService(NewMemorySessionStore(0), zap.NewNop())
	svc.newID = func() string { return "session-1" }
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestQuizService_NotConfigured(t *testing.T) {
	var nilSvc *QuizService
	_, err := nilSvc.Start(context.Background())
	assert.ErrorIs(t, err, ErrServiceNotConfigured)

	svc := NewQuizService(nil, nil)
	_, err = svc.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrServiceNotConfigured)
}

func TestQuizService_StartAndAnswerAdvances(t *testing.T) {
	svc := newTestQuizService()
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session-1", session.ID)
	assert.Equal(t, 0, session.Step)
	assert.Equal(t, 0, session.Progress())

	session, err = svc.Answer(ctx, session.ID, domain.QuestionOpenness, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Step)
	assert.Equal(t, 11, session.Progress())
	assert.Equal(t, 4, session.Answers[domain.QuestionOpenness])

	// float64 from JSON is stored as int
	session, err = svc.Answer(ctx, session.ID, domain.QuestionConscientiousness, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Answers[domain.QuestionConscientiousness])
}

func TestQuizService_AnswerValidation(t *testing.T) {
	svc := newTestQuizService()
	ctx := context.Background()
	session, err := svc.Start(ctx)
	require.NoError(t, err)

	cases := []struct {
		question string
		value    any
	}{
		{"unknown", 3},
		{domain.QuestionOpenness, 0},
		{domain.QuestionOpenness, 6},
		{domain.QuestionOpenness, "3"},
		{domain.QuestionLoveLanguage, "Hugs"},
		{domain.QuestionLoveLanguage, 1},
	}
	for _, tc := range cases {
		_, err := svc.Answer(ctx, session.ID, tc.question, tc.value)
		assert.ErrorIs(t, err, ErrInvalidInput, "%s=%v", tc.question, tc.value)
	}

	got, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Step, "rejected answers must not advance")
	assert.Empty(t, got.Answers)
}

func TestQuizService_Navigation(t *testing.T) {
	svc := newTestQuizService()
	ctx := context.Background()
	session, err := svc.Start(ctx)
	require.NoError(t, err)

	session, err = svc.Back(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.Step, "back never goes below zero")

	total := domain.TotalSteps()
	for i := 0; i < total+3; i++ {
		session, err = svc.Next(ctx, session.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, total, session.Step, "next stops at the end")
	assert.True(t, session.Done())
	assert.Equal(t, 100, session.Progress())

	session, err = svc.Back(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, total-1, session.Step)

	// answering the last question clamps at the end as well
	session, err = svc.Answer(ctx, session.ID, domain.QuestionRelocate, domain.RelocateNo)
	require.NoError(t, err)
	assert.Equal(t, total, session.Step)
	session, err = svc.Answer(ctx, session.ID, domain.QuestionRelocate, domain.RelocateYes)
	require.NoError(t, err)
	assert.Equal(t, total, session.Step)
	assert.Equal(t, domain.RelocateYes, session.Answers[domain.QuestionRelocate])

	session, err = svc.Restart(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.Step)
	assert.Empty(t, session.Answers)
}

func TestQuizService_Profile(t *testing.T) {
	svc := newTestQuizService()
	ctx := context.Background()
	session, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.Answer(ctx, session.ID, domain.QuestionExtraversion, 5)
	require.NoError(t, err)
	_, err = svc.Answer(ctx, session.ID, domain.QuestionAttachment, domain.AttachmentSecure)
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, profile.Extraversion)
	assert.Equal(t, 0.5, profile.Openness)
	assert.True(t, profile.Attachment.Is(domain.AttachmentSecure))
	assert.False(t, profile.LoveLanguage.IsSet())

	_, err = svc.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type failingStore struct{ SessionStore }

func (failingStore) Save(context.Context, domain.QuizSession) error { return errors.New("disk full") }

func TestQuizService_StoreErrorsAreWrapped(t *testing.T) {
	svc := NewQuizService(failingStore{NewMemorySessionStore(0)}, zap.NewNop())
	_, err := svc.Start(context.Background())
	assert.ErrorContains(t, err, "save quiz session")
	assert.ErrorContains(t, err, "disk full")
}

// slowGetStore demora cada Get como lo haria un round trip a redis.
type slowGetStore struct{ SessionStore }

func (s slowGetStore) Get(ctx context.Context, id string) (domain.QuizSession, error) {
	session, err := s.SessionStore.Get(ctx, id)
	time.Sleep(time.Millisecond)
	return session, err
}

func TestQuizService_ConcurrentAnswersAreAllKept(t *testing.T) {
	svc := NewQuizService(slowGetStore{NewMemorySessionStore(0)}, zap.NewNop())
	ctx := context.Background()
	session, err := svc.Start(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i, key := range domain.TraitKeys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Answer(ctx, session.ID, key, i+1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Answers, len(domain.TraitKeys))
	assert.Equal(t, len(domain.TraitKeys), got.Step)
	for i, key := range domain.TraitKeys {
		assert.Equal(t, i+1, got.Answers[key], key)
	}
}

type conflictStore struct{ SessionStore }

func (conflictStore) Update(context.Context, string, func(*domain.QuizSession) error) (domain.QuizSession, error) {
	return domain.QuizSession{}, fmt.Errorf("update session x: %w", ErrSessionConflict)
}

func TestQuizService_UpdateConflictIsReturned(t *testing.T) {
	svc := NewQuizService(conflictStore{NewMemorySessionStore(0)}, zap.NewNop())
	_, err := svc.Next(context.Background(), "x")
	assert.ErrorIs(t, err, ErrSessionConflict)
}
