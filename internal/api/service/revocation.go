package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/internal/api/store"
)

// RevocationList is the deny list of token ids that must be refused before
// their natural expiry. Reads are lock-free; the store is the durable copy and
// is reloaded on startup.
type RevocationList struct {
	store   store.Store // nil keeps the list in memory only
	entries sync.Map    // jti -> time.Time (token expiry)
}

func NewRevocationList(st store.Store) *RevocationList {
	return &RevocationList{store: st}
}

// Load pulls every still-relevant revocation from the store into memory.
func (l *RevocationList) Load(ctx context.Context, now time.Time) (int, error) {
	if l.store == nil {
		return 0, nil
	}

	tokens, err := l.store.RevokedTokens().ListActiveRevokedTokens(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("load revoked tokens: %w", err)
	}
	for _, t := range tokens {
		l.entries.Store(t.JTI, t.ExpiresAt)
	}
	return len(tokens), nil
}

// Revoke denies jti until exp. It reports false when jti was already revoked,
// which lets exactly one of several concurrent callers win.
func (l *RevocationList) Revoke(ctx context.Context, jti string, exp time.Time) (bool, error) {
	if _, loaded := l.entries.LoadOrStore(jti, exp); loaded {
		return false, nil
	}

	if l.store != nil {
		err := l.store.RevokedTokens().RevokeToken(ctx, domain.RevokedToken{JTI: jti, ExpiresAt: exp})
		if err != nil {
			l.entries.Delete(jti)
			return false, fmt.Errorf("persist revoked token: %w", err)
		}
	}
	return true, nil
}

func (l *RevocationList) IsRevoked(jti string) bool {
	_, ok := l.entries.Load(jti)
	return ok
}

// Purge forgets revocations for tokens that have expired by now; those tokens
// fail validation on their own.
func (l *RevocationList) Purge(ctx context.Context, now time.Time) (int64, error) {
	l.entries.Range(func(k, v any) bool {
		if !now.Before(v.(time.Time)) {
			l.entries.Delete(k)
		}
		return true
	})

	if l.store == nil {
		return 0, nil
	}
	return l.store.RevokedTokens().DeleteExpiredRevokedTokens(ctx, now)
}
