package dbm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// mintToken produces a fresh version token. The wall-clock prefix keeps
// tokens roughly sortable when inspecting the store by hand.
func mintToken(now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10) + "_" + uuid.NewString()[:8]
}

// versionToken resolves the current token stored under versionKey, minting
// and storing a new one when absent. Tokens are stored as raw bytes, not
// codec payloads, so they stay readable across codec choices. Store
// failures degrade to a throwaway token: the resulting composite key will
// miss, the caller falls through to the database, and correctness holds.
func (m *Manager) versionToken(ctx context.Context, versionKey string, ttl time.Duration) string {
	data, found, err := m.store.Get(ctx, versionKey)
	if err != nil {
		m.log.Warn().Err(err).Str("key", versionKey).Msg("version token read failed; using throwaway token")
		return mintToken(time.Now())
	}
	if found {
		return string(data)
	}
	token := mintToken(time.Now())
	if err := m.store.Set(ctx, versionKey, []byte(token), ttl); err != nil {
		m.log.Warn().Err(err).Str("key", versionKey).Msg("version token write failed")
	}
	return token
}

// RotateVersion installs a fresh token under versionKey, orphaning every
// list entry cached under the previous token in one write. Orphans are
// never touched again and age out through their own TTLs. The new token is
// returned so callers can log or assert on it.
func (m *Manager) RotateVersion(ctx context.Context, versionKey string, ttl time.Duration) (string, error) {
	if m.store == nil {
		return "", fmt.Errorf("rotate version %q: no store configured", versionKey)
	}
	token := mintToken(time.Now())
	if err := m.store.Set(ctx, versionKey, []byte(token), ttl); err != nil {
		return "", fmt.Errorf("rotate version %q: %w", versionKey, err)
	}
	m.log.Debug().Str("key", versionKey).Str("token", token).Msg("version rotated")
	return token, nil
}
