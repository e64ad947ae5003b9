package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// User is the authenticated merchant identity returned by the backend.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	MerchantID string `json:"merchant_id,omitempty"`
}

// Session is the authenticated identity and token held by the running
// application. A zero ExpiresAt means the session never self-expires and must
// be invalidated by the server via 401. A nil User means the identity has not
// been verified yet (legacy token-only sessions).
type Session struct {
	Token     string
	User      *User
	ExpiresAt time.Time
}

// Expired reports whether the session has a set expiry that has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store persists the session between runs. Load returns (nil, nil) when no
// usable session exists: absent, corrupted, and unparseable records all
// degrade to "logged out". Clear is idempotent and removes the session record
// together with its session-scoped secondary keys (legacy token mirror,
// selected tenant, cached user blob).
type Store interface {
	Save(ctx context.Context, sess Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error

	// Selected tenant (merchant) scoped to the session lifetime.

	SaveTenant(ctx context.Context, tenantID string) error
	LoadTenant(ctx context.Context) (string, error)
}

// record is the wire format of the persisted session. Expiry is stored as
// epoch milliseconds, matching what the backend hands out.
type record struct {
	Token       string `json:"token"`
	User        *User  `json:"user,omitempty"`
	ExpiresAtMs int64  `json:"expires_at_ms,omitempty"`
}

func encodeRecord(sess Session) ([]byte, error) {
	r := record{Token: sess.Token, User: sess.User}
	if !sess.ExpiresAt.IsZero() {
		r.ExpiresAtMs = sess.ExpiresAt.UnixMilli()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*Session, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if r.Token == "" {
		return nil, fmt.Errorf("session record has no token")
	}
	sess := Session{Token: r.Token, User: r.User}
	if r.ExpiresAtMs != 0 {
		sess.ExpiresAt = time.UnixMilli(r.ExpiresAtMs)
	}
	return &sess, nil
}

// upgradeLegacyToken lifts a bare persisted token into the full session shape:
// no user, no expiry.
func upgradeLegacyToken(token string) *Session {
	return &Session{Token: token}
}
