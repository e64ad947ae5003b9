package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/crypto"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(dir, crypto.NoopService{}), dir
}

func testUser() *User {
	return &User{
		ID:         "u1",
		Email:      "merchant@example.com",
		Username:   "merchant1",
		Role:       "owner",
		MerchantID: "m42",
	}
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	expiry := time.Now().Add(1 * time.Hour).Truncate(time.Millisecond)
	sess := Session{Token: "tok_abc", User: testUser(), ExpiresAt: expiry}
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok_abc", loaded.Token)
	assert.Equal(t, testUser(), loaded.User)
	assert.True(t, expiry.Equal(loaded.ExpiresAt), "expiry should round-trip")
}

func TestFileStore_SaveLoadRoundtrip_NoUserNoExpiry(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "tok_bare"}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok_bare", loaded.Token)
	assert.Nil(t, loaded.User)
	assert.True(t, loaded.ExpiresAt.IsZero())
}

func TestFileStore_Load_Absent(t *testing.T) {
	store, _ := newTestFileStore(t)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_Load_Corrupt(t *testing.T) {
	store, dir := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, sessionFile), []byte("{not json"), 0o600))

	loaded, err := store.Load(ctx)
	require.NoError(t, err, "corruption must degrade to logged out, not fail")
	assert.Nil(t, loaded)
}

func TestFileStore_Load_EmptyToken(t *testing.T) {
	store, dir := newTestFileStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, sessionFile), []byte(`{"user":{"id":"u1"}}`), 0o600))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_LegacyBareToken_Upgraded(t *testing.T) {
	store, dir := newTestFileStore(t)

	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, legacyFile), []byte("legacy_tok\n"), 0o600))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "legacy_tok", loaded.Token)
	assert.Nil(t, loaded.User)
	assert.True(t, loaded.ExpiresAt.IsZero())
}

func TestFileStore_StructuredRecordWinsOverLegacy(t *testing.T) {
	store, dir := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "structured_tok", User: testUser()}))
	// Disagreeing legacy mirror must never be consulted.
	require.NoError(t, os.WriteFile(filepath.Join(dir, legacyFile), []byte("stale_tok"), 0o600))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "structured_tok", loaded.Token)
}

func TestFileStore_Save_WritesLegacyMirror(t *testing.T) {
	store, dir := newTestFileStore(t)

	require.NoError(t, store.Save(context.Background(), Session{Token: "tok_mirror"}))

	data, err := os.ReadFile(filepath.Join(dir, legacyFile))
	require.NoError(t, err)
	assert.Equal(t, "tok_mirror", string(data))
}

func TestFileStore_Clear_RemovesAllKeys(t *testing.T) {
	store, dir := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "tok", User: testUser()}))
	require.NoError(t, store.SaveTenant(ctx, "m42"))

	require.NoError(t, store.Clear(ctx))

	for _, name := range []string{sessionFile, legacyFile, tenantFile, userFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), "%s should be removed", name)
	}

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_Clear_Idempotent(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
}

func TestFileStore_TenantRoundtrip(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	tenant, err := store.LoadTenant(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenant)

	require.NoError(t, store.SaveTenant(ctx, "m42"))
	tenant, err = store.LoadTenant(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m42", tenant)
}

func TestFileStore_EncryptedRoundtrip(t *testing.T) {
	svc, err := crypto.NewAesGcmService(testEncryptionKey)
	require.NoError(t, err)
	dir := t.TempDir()
	store := NewFileStore(dir, svc)
	ctx := context.Background()

	sess := Session{Token: "tok_secret", User: testUser()}
	require.NoError(t, store.Save(ctx, sess))

	// Record on disk must not contain the token in plaintext.
	raw, err := os.ReadFile(filepath.Join(dir, sessionFile))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok_secret")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok_secret", loaded.Token)
	assert.Equal(t, testUser(), loaded.User)
}

func TestFileStore_WrongKey_DegradesToLoggedOut(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	svc, err := crypto.NewAesGcmService(testEncryptionKey)
	require.NoError(t, err)
	require.NoError(t, NewFileStore(dir, svc).Save(ctx, Session{Token: "tok"}))

	otherKey := "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	other, err := crypto.NewAesGcmService(otherKey)
	require.NoError(t, err)

	loaded, err := NewFileStore(dir, other).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
