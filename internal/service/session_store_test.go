package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astramate/internal/domain"
)

func TestMemorySessionStore_RoundTripAndIsolation(t *testing.T) {
	store := NewMemorySessionStore(0)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	session := domain.QuizSession{ID: "s1", Answers: domain.RawAnswers{domain.QuestionOpenness: 4}, Step: 1}
	require.NoError(t, store.Save(ctx, session))

	// mutating the caller's map must not leak into the store
	session.Answers[domain.QuestionOpenness] = 1

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Answers[domain.QuestionOpenness])
	assert.Equal(t, 1, got.Step)

	got.Answers[domain.QuestionNeuroticism] = 2
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, again.Answers, domain.QuestionNeuroticism)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStore_RejectsEmptyID(t *testing.T) {
	store := NewMemorySessionStore(0)
	err := store.Save(context.Background(), domain.QuizSession{ID: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMemorySessionStore_Expires(t *testing.T) {
	store := NewMemorySessionStore(time.Minute).(*memorySessionStore)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), domain.QuizSession{ID: "s1", Answers: domain.RawAnswers{}}))
	_, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type mockRedisKV struct {
	data       map[string][]byte
	ttls       map[string]time.Duration
	getErr     error
	setErr     error
	watchErr   error
	watchCalls int
	watchKeys  []string
}

func newMockRedisKV() *mockRedisKV {
	return &mockRedisKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockRedisKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(v))
	return cmd
}

func (m *mockRedisKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	m.data[key] = value.([]byte)
	m.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

// Watch no puede fabricar un *redis.Tx sin servidor; devuelve watchErr tal cual.
func (m *mockRedisKV) Watch(_ context.Context, _ func(*redis.Tx) error, keys ...string) error {
	m.watchCalls++
	m.watchKeys = keys
	return m.watchErr
}

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	kv := newMockRedisKV()
	store := newRedisSessionStore(kv, 30*time.Minute)
	ctx := context.Background()

	session := domain.QuizSession{
		ID:      "abc",
		Answers: domain.RawAnswers{domain.QuestionOpenness: 5, domain.QuestionFamily: domain.FamilyJoint},
		Step:    2,
	}
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, 30*time.Minute, kv.ttls["quiz:session:abc"])

	var stored map[string]any
	require.NoError(t, json.Unmarshal(kv.data["quiz:session:abc"], &stored))
	assert.Equal(t, "abc", stored["id"])

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Step)
	assert.Equal(t, domain.FamilyJoint, got.Answers[domain.QuestionFamily])

	// JSON numbers come back as float64 and still normalize.
	profile, err := Normalize(got.Answers)
	require.NoError(t, err)
	assert.Equal(t, 1.0, profile.Openness)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStore_Errors(t *testing.T) {
	kv := newMockRedisKV()
	store := newRedisSessionStore(kv, 0)
	assert.Equal(t, time.Hour, store.ttl)

	_, err := store.Get(context.Background(), " ")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	kv.getErr = errors.New("connection refused")
	_, err = store.Get(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	kv.setErr = errors.New("readonly")
	err = store.Save(context.Background(), domain.QuizSession{ID: "abc"})
	assert.ErrorContains(t, err, "readonly")

	kv.data["quiz:session:bad"] = []byte("{not json")
	kv.getErr = nil
	_, err = store.Get(context.Background(), "bad")
	assert.ErrorContains(t, err, "decode session")
}

func TestNewRedisSessionStore_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisSessionStore(nil, time.Minute))
}

func TestMemorySessionStore_UpdateConcurrentWritersKeepAllAnswers(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.QuizSession{ID: "s1"}))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "s1", func(s *domain.QuizSession) error {
				s.Answers[fmt.Sprintf("q%d", i)] = i
				s.Step++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Answers, writers)
	assert.Equal(t, writers, got.Step)
}

func TestMemorySessionStore_UpdateErrors(t *testing.T) {
	store := NewMemorySessionStore(0)
	ctx := context.Background()

	_, err := store.Update(ctx, "missing", func(*domain.QuizSession) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, domain.QuizSession{ID: "s1", Step: 2}))
	boom := errors.New("boom")
	_, err = store.Update(ctx, "s1", func(s *domain.QuizSession) error {
		s.Step = 9
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Step, "failed update must not be saved")
}

func TestMemorySessionStore_EvictKeepsSessionSavedAfterExpiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute).(*memorySessionStore)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.QuizSession{ID: "s1", Step: 1}))

	// Get leyo la entrada vencida; antes de tomar el lock de escritura llega un Save nuevo.
	readAt := start.Add(2 * time.Minute)
	now = readAt
	require.NoError(t, store.Save(ctx, domain.QuizSession{ID: "s1", Step: 3}))

	entry, ok := store.evictExpired("s1", readAt)
	require.True(t, ok)
	assert.Equal(t, 3, entry.session.Step)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Step)
}

func TestMemorySessionStore_SweepsAbandonedSessions(t *testing.T) {
	store := NewMemorySessionStore(time.Minute).(*memorySessionStore)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Save(ctx, domain.QuizSession{ID: fmt.Sprintf("old-%d", i)}))
	}
	require.Len(t, store.items, 10)

	now = now.Add(5 * time.Minute)
	require.NoError(t, store.Save(ctx, domain.QuizSession{ID: "fresh"}))

	assert.Len(t, store.items, 1)
	assert.Contains(t, store.items, "fresh")
}

func TestRedisSessionStore_UpdateRetriesThenConflicts(t *testing.T) {
	kv := newMockRedisKV()
	kv.watchErr = redis.TxFailedErr
	store := newRedisSessionStore(kv, time.Minute)

	_, err := store.Update(context.Background(), "abc", func(*domain.QuizSession) error { return nil })
	assert.ErrorIs(t, err, ErrSessionConflict)
	assert.Equal(t, store.maxRetries, kv.watchCalls)
	assert.Equal(t, []string{"quiz:session:abc"}, kv.watchKeys)
}

func TestRedisSessionStore_UpdatePassesThroughErrors(t *testing.T) {
	kv := newMockRedisKV()
	store := newRedisSessionStore(kv, time.Minute)
	noop := func(*domain.QuizSession) error { return nil }

	_, err := store.Update(context.Background(), " ", noop)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, kv.watchCalls)

	kv.watchErr = ErrSessionNotFound
	_, err = store.Update(context.Background(), "abc", noop)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, kv.watchCalls)
}
