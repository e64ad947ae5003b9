package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

type Service interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

// NoopService passes records through without encryption (dev/test mode).
type NoopService struct{}

func (NoopService) Seal(plaintext []byte) ([]byte, error)  { return plaintext, nil }
func (NoopService) Open(ciphertext []byte) ([]byte, error) { return ciphertext, nil }

type AesGcmService struct {
	gcm cipher.AEAD
}

func NewAesGcmService(hexKey string) (*AesGcmService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key hex: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AesGcmService{gcm: gcm}, nil
}

func (c *AesGcmService) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the encrypted data to nonce, returning nonce || ciphertext || tag
	sealed := c.gcm.Seal(nonce, nonce, plaintext, nil)

	out := make([]byte, hex.EncodedLen(len(sealed)))
	hex.Encode(out, sealed)
	return out, nil
}

func (c *AesGcmService) Open(ciphertext []byte) ([]byte, error) {
	buffer := make([]byte, hex.DecodedLen(len(ciphertext)))
	n, err := hex.Decode(buffer, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex: %w", err)
	}
	buffer = buffer[:n]

	nonceSize := c.gcm.NonceSize()
	if len(buffer) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, cipherBytes := buffer[:nonceSize], buffer[nonceSize:]
	plain, err := c.gcm.Open(nil, nonce, cipherBytes, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plain, nil
}
