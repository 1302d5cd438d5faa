package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	domrepo "AlgoSensei/internal/domain/repository"
	"AlgoSensei/pkg/cache"
)

const sessionKeyspace = "session"

// CacheSessionStores hands out SessionStores backed by a cache.Service
// (Redis in production, the in-memory cache for single-instance runs and tests).
type CacheSessionStores struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheSessionStores creates a factory whose markers expire after ttl.
// A non-positive ttl keeps markers until they are cleared.
func NewCacheSessionStores(c cache.Service, ttl time.Duration) *CacheSessionStores {
	return &CacheSessionStores{cache: c, ttl: ttl}
}

// ForContext scopes a store to one browser context.
func (f *CacheSessionStores) ForContext(contextID string) domrepo.SessionStore {
	return &CacheSessionStore{cache: f.cache, ttl: f.ttl, contextID: contextID}
}

// CacheSessionStore stores markers under session:<context id>:<key>.
type CacheSessionStore struct {
	cache     cache.Service
	ttl       time.Duration
	contextID string
}

func (s *CacheSessionStore) key(k string) string {
	return cache.GenerateKeyWithParams(sessionKeyspace, s.contextID, k)
}

func (s *CacheSessionStore) keys(ks []string) []string {
	full := make([]string, len(ks))
	for i, k := range ks {
		full[i] = s.key(k)
	}
	return full
}

func (s *CacheSessionStore) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	found, err := s.cache.MGet(ctx, s.keys(keys)...)
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	for _, k := range keys {
		if v, ok := found[s.key(k)]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *CacheSessionStore) Set(ctx context.Context, key, value string) error {
	if err := s.cache.Set(ctx, s.key(key), value, s.ttl); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (s *CacheSessionStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.cache.Delete(ctx, s.keys(keys)...); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *CacheSessionStore) Touch(ctx context.Context, keys ...string) error {
	if s.ttl <= 0 {
		return nil
	}
	for _, k := range keys {
		if _, err := s.cache.Expire(ctx, s.key(k), s.ttl); err != nil {
			return fmt.Errorf("session touch %s: %w", k, err)
		}
	}
	return nil
}

func (s *CacheSessionStore) Clear(ctx context.Context) error {
	// The context id becomes part of a glob pattern.
	if s.contextID == "" || strings.ContainsAny(s.contextID, `*?[]\`) {
		return fmt.Errorf("session clear: invalid context id %q", s.contextID)
	}
	prefix := cache.GenerateKeyWithParams(sessionKeyspace, s.contextID) + ":"
	if err := s.cache.DeleteByPattern(ctx, cache.BuildPattern(prefix)); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
