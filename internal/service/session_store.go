package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"astramate/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("quiz session not found")
	ErrSessionConflict = errors.New("quiz session changed concurrently")
)

// SessionStore guarda sesiones del quiz. Get devuelve ErrSessionNotFound si no existe o expiro.
// Update aplica fn sobre la version actual de forma atomica respecto de otros Update.
type SessionStore interface {
	Get(ctx context.Context, id string) (domain.QuizSession, error)
	Save(ctx context.Context, session domain.QuizSession) error
	Update(ctx context.Context, id string, fn func(*domain.QuizSession) error) (domain.QuizSession, error)
	Delete(ctx context.Context, id string) error
}

type memorySessionEntry struct {
	session   domain.QuizSession
	expiresAt time.Time
}

func (e memorySessionEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type memorySessionStore struct {
	mu        sync.RWMutex
	ttl       time.Duration
	items     map[string]memorySessionEntry
	lastSweep time.Time
	now       func() time.Time
}

// NewMemorySessionStore crea un store en memoria. ttl <= 0 desactiva la expiracion.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		ttl:   ttl,
		items: make(map[string]memorySessionEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *memorySessionStore) Get(_ context.Context, id string) (domain.QuizSession, error) {
	now := s.now()
	s.mu.RLock()
	entry, ok := s.items[id]
	s.mu.RUnlock()
	if ok && entry.expired(now) {
		entry, ok = s.evictExpired(id, now)
	}
	if !ok {
		return domain.QuizSession{}, ErrSessionNotFound
	}
	return copySession(entry.session), nil
}

// evictExpired vuelve a mirar la entrada bajo el lock de escritura: un Save que llego
// entre medio deja una entrada vigente que no se borra.
func (s *memorySessionStore) evictExpired(id string, now time.Time) (memorySessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return memorySessionEntry{}, false
	}
	if entry.expired(now) {
		delete(s.items, id)
		return memorySessionEntry{}, false
	}
	return entry, true
}

func (s *memorySessionStore) Save(_ context.Context, session domain.QuizSession) error {
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidInput)
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(copySession(session), now)
	s.sweepLocked(now)
	return nil
}

func (s *memorySessionStore) Update(_ context.Context, id string, fn func(*domain.QuizSession) error) (domain.QuizSession, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[id]
	if !ok || entry.expired(now) {
		delete(s.items, id)
		return domain.QuizSession{}, ErrSessionNotFound
	}
	session := copySession(entry.session)
	if err := fn(&session); err != nil {
		return domain.QuizSession{}, err
	}
	s.putLocked(copySession(session), now)
	s.sweepLocked(now)
	return session, nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *memorySessionStore) putLocked(session domain.QuizSession, now time.Time) {
	entry := memorySessionEntry{session: session}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.items[session.ID] = entry
}

// sweepLocked descarta sesiones vencidas, como mucho una vez por ttl.
func (s *memorySessionStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for id, entry := range s.items {
		if entry.expired(now) {
			delete(s.items, id)
		}
	}
}

func copySession(session domain.QuizSession) domain.QuizSession {
	session.Answers = session.Answers.Clone()
	if session.Answers == nil {
		session.Answers = domain.RawAnswers{}
	}
	return session
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
}

type redisSessionStore struct {
	client     redisKV
	ttl        time.Duration
	prefix     string
	timeout    time.Duration
	maxRetries int
}

// NewRedisSessionStore guarda cada sesion como JSON bajo "quiz:session:<id>" con TTL.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if client == nil {
		return nil
	}
	return newRedisSessionStore(client, ttl)
}

func newRedisSessionStore(client redisKV, ttl time.Duration) *redisSessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisSessionStore{
		client:     client,
		ttl:        ttl,
		prefix:     "quiz:session:",
		timeout:    500 * time.Millisecond,
		maxRetries: 5,
	}
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (domain.QuizSession, error) {
	if strings.TrimSpace(id) == "" {
		return domain.QuizSession{}, ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuizSession{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.QuizSession{}, fmt.Errorf("redis get session: %w", err)
	}
	return decodeSession(raw)
}

func (s *redisSessionStore) Save(ctx context.Context, session domain.QuizSession) error {
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidInput)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+session.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Update hace WATCH sobre la clave y escribe con MULTI/EXEC. Si otra escritura gano la
// carrera reintenta; agotados los reintentos devuelve ErrSessionConflict.
func (s *redisSessionStore) Update(ctx context.Context, id string, fn func(*domain.QuizSession) error) (domain.QuizSession, error) {
	if strings.TrimSpace(id) == "" {
		return domain.QuizSession{}, ErrSessionNotFound
	}
	key := s.prefix + id

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var updated domain.QuizSession
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.client.Watch(opCtx, func(tx *redis.Tx) error {
			raw, err := tx.Get(opCtx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			if err != nil {
				return fmt.Errorf("redis get session: %w", err)
			}
			session, err := decodeSession(raw)
			if err != nil {
				return err
			}
			if err := fn(&session); err != nil {
				return err
			}
			payload, err := json.Marshal(session)
			if err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
			_, err = tx.TxPipelined(opCtx, func(pipe redis.Pipeliner) error {
				pipe.Set(opCtx, key, payload, s.ttl)
				return nil
			})
			if err != nil {
				return err
			}
			updated = session
			return nil
		}, key)
		cancel()

		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return domain.QuizSession{}, err
		}
	}
	return domain.QuizSession{}, fmt.Errorf("update session %s: %w", id, ErrSessionConflict)
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+id).Err()
}

func decodeSession(raw []byte) (domain.QuizSession, error) {
	var session domain.QuizSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.QuizSession{}, fmt.Errorf("decode session: %w", err)
	}
	if session.Answers == nil {
		session.Answers = domain.RawAnswers{}
	}
	return session, nil
}
