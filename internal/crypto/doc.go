// Package crypto provides encryption services for data at rest.
//
// Implements AES-256-GCM sealing for the persisted session record (the bearer
// token is a credential and must not sit in plaintext on disk or in Redis).
// Two implementations: AesGcmService (production) and NoopService (dev/test
// plaintext passthrough).
package crypto
