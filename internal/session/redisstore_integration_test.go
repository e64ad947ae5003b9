package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/crypto"
)

func setupTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	client := setupTestRedis(t)
	return NewRedisStore(client, "autoteile:test", crypto.NoopService{})
}

func TestRedisStore_SaveLoadRoundtrip(t *testing.T) {
	store := setupTestRedisStore(t)
	ctx := context.Background()

	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Millisecond)
	sess := Session{Token: "tok_redis", User: testUser(), ExpiresAt: expiry}
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok_redis", loaded.Token)
	assert.Equal(t, testUser(), loaded.User)
	assert.True(t, expiry.Equal(loaded.ExpiresAt))
}

func TestRedisStore_Load_Absent(t *testing.T) {
	store := setupTestRedisStore(t)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_LegacyBareToken_Upgraded(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "autoteile:test", crypto.NoopService{})
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "autoteile:test:token", "legacy_tok", 0).Err())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "legacy_tok", loaded.Token)
	assert.Nil(t, loaded.User)
	assert.True(t, loaded.ExpiresAt.IsZero())
}

func TestRedisStore_Load_Corrupt(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "autoteile:test", crypto.NoopService{})
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "autoteile:test:session", "{not json", 0).Err())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_Clear_RemovesAllKeys(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "autoteile:test", crypto.NoopService{})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "tok", User: testUser()}))
	require.NoError(t, store.SaveTenant(ctx, "m42"))

	require.NoError(t, store.Clear(ctx))

	for _, suffix := range []string{"session", "token", "tenant", "user"} {
		exists, err := client.Exists(ctx, "autoteile:test:"+suffix).Result()
		require.NoError(t, err)
		assert.Zero(t, exists, "key %s should be removed", suffix)
	}
}

func TestRedisStore_Clear_Idempotent(t *testing.T) {
	store := setupTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
}

func TestRedisStore_TenantRoundtrip(t *testing.T) {
	store := setupTestRedisStore(t)
	ctx := context.Background()

	tenant, err := store.LoadTenant(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenant)

	require.NoError(t, store.SaveTenant(ctx, "m99"))
	tenant, err = store.LoadTenant(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m99", tenant)
}

func TestRedisStore_EncryptedRoundtrip(t *testing.T) {
	client := setupTestRedis(t)
	svc, err := crypto.NewAesGcmService(testEncryptionKey)
	require.NoError(t, err)
	store := NewRedisStore(client, "autoteile:test", svc)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "tok_secret"}))

	raw, err := client.Get(ctx, "autoteile:test:session").Result()
	require.NoError(t, err)
	assert.NotContains(t, raw, "tok_secret")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok_secret", loaded.Token)
}
