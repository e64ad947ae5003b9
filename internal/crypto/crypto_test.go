package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewAesGcmService_InvalidKey(t *testing.T) {
	_, err := NewAesGcmService("not-hex")
	assert.Error(t, err)

	// Valid hex but wrong key length for AES
	_, err = NewAesGcmService("abcd")
	assert.Error(t, err)
}

func TestAesGcm_SealOpenRoundtrip(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	plaintext := []byte(`{"token":"tok_12345","user":{"id":"u1"}}`)
	sealed, err := svc.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := svc.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestAesGcm_NoncesDiffer(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	a, err := svc.Seal([]byte("same input"))
	require.NoError(t, err)
	b, err := svc.Seal([]byte("same input"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestAesGcm_TamperedCiphertext(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	sealed, err := svc.Seal([]byte("secret"))
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	if tampered[len(tampered)-1] == 'f' {
		tampered[len(tampered)-1] = '0'
	} else {
		tampered[len(tampered)-1] = 'f'
	}
	_, err = svc.Open(tampered)
	assert.Error(t, err)
}

func TestAesGcm_TooShort(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	_, err = svc.Open([]byte("abcd"))
	assert.Error(t, err)
}

func TestNoopService_Passthrough(t *testing.T) {
	svc := NoopService{}

	sealed, err := svc.Seal([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), sealed)

	opened, err := svc.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), opened)
}
