package security

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MaxPinAttempts is the failure count that triggers a lockout.
	MaxPinAttempts = 5
	// PinLockoutDuration is how long an identifier stays locked out.
	PinLockoutDuration = 15 * time.Minute
)

// PinAttemptState tracks failures against one identifier (e.g. shop+purpose).
// Ephemeral: created on first failure, cleared on success or expiry.
type PinAttemptState struct {
	Identifier   string     `json:"identifier"`
	Attempts     int        `json:"attempts"`
	LockoutUntil *time.Time `json:"lockoutUntil,omitempty"`
}

// AttemptStore persists PinAttemptState with expiry. The memory store covers
// a single instance; the redis store keeps lockouts consistent across
// instances and restarts.
type AttemptStore interface {
	Get(ctx context.Context, id string) (*PinAttemptState, error)
	Put(ctx context.Context, state *PinAttemptState, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// PinSecurityGuard rate-limits failed PIN attempts per identifier.
type PinSecurityGuard struct {
	Store AttemptStore

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewPinSecurityGuard(store AttemptStore) *PinSecurityGuard {
	return &PinSecurityGuard{Store: store}
}

func (g *PinSecurityGuard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// RecordFailedAttempt increments the failure count and returns the remaining
// attempts before lockout. At the threshold the identifier is locked out and
// 0 is returned.
func (g *PinSecurityGuard) RecordFailedAttempt(ctx context.Context, id string) (int, error) {
	now := g.now()

	state, err := g.Store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if state == nil || (state.LockoutUntil != nil && !now.Before(*state.LockoutUntil)) {
		state = &PinAttemptState{Identifier: id}
	}

	state.Attempts++
	if state.Attempts >= MaxPinAttempts {
		until := now.Add(PinLockoutDuration)
		state.LockoutUntil = &until
		if err := g.Store.Put(ctx, state, PinLockoutDuration); err != nil {
			return 0, err
		}
		return 0, nil
	}

	if err := g.Store.Put(ctx, state, PinLockoutDuration); err != nil {
		return 0, err
	}
	return MaxPinAttempts - state.Attempts, nil
}

// IsLockedOut reports whether the identifier is currently locked out,
// lazily evicting expired records.
func (g *PinSecurityGuard) IsLockedOut(ctx context.Context, id string) (bool, error) {
	state, err := g.Store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if state == nil || state.LockoutUntil == nil {
		return false, nil
	}
	if g.now().Before(*state.LockoutUntil) {
		return true, nil
	}
	// expired; evict so the next failure starts a fresh count
	if err := g.Store.Delete(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// LockoutRemaining returns how long the identifier stays locked out; zero
// when it is not.
func (g *PinSecurityGuard) LockoutRemaining(ctx context.Context, id string) (time.Duration, error) {
	state, err := g.Store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if state == nil || state.LockoutUntil == nil {
		return 0, nil
	}
	remaining := state.LockoutUntil.Sub(g.now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// RecordSuccessfulAttempt clears the failure record.
func (g *PinSecurityGuard) RecordSuccessfulAttempt(ctx context.Context, id string) error {
	return g.Store.Delete(ctx, id)
}

// MemoryAttemptStore is the in-process AttemptStore. Attempts from a second
// server instance are not visible here; use RedisAttemptStore when running
// more than one.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	states  map[string]*memoryEntry
	nowFunc func() time.Time
}

type memoryEntry struct {
	state     PinAttemptState
	expiresAt time.Time
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{
		states:  make(map[string]*memoryEntry),
		nowFunc: time.Now,
	}
}

func (s *MemoryAttemptStore) Get(ctx context.Context, id string) (*PinAttemptState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[id]
	if !ok {
		return nil, nil
	}
	if s.nowFunc().After(entry.expiresAt) {
		delete(s.states, id)
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

func (s *MemoryAttemptStore) Put(ctx context.Context, state *PinAttemptState, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.Identifier] = &memoryEntry{
		state:     *state,
		expiresAt: s.nowFunc().Add(ttl),
	}
	return nil
}

func (s *MemoryAttemptStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, id)
	return nil
}

// RedisAttemptStore keeps attempt state in redis with a TTL, so lockouts
// survive restarts and apply across instances.
type RedisAttemptStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{Client: client, Prefix: "pin-attempts:"}
}

func (s *RedisAttemptStore) key(id string) string {
	return s.Prefix + id
}

func (s *RedisAttemptStore) Get(ctx context.Context, id string) (*PinAttemptState, error) {
	val, err := s.Client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var state PinAttemptState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("unmarshal attempt state: %w", err)
	}
	return &state, nil
}

func (s *RedisAttemptStore) Put(ctx context.Context, state *PinAttemptState, ttl time.Duration) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal attempt state: %w", err)
	}
	if err := s.Client.Set(ctx, s.key(state.Identifier), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisAttemptStore) Delete(ctx context.Context, id string) error {
	if err := s.Client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
