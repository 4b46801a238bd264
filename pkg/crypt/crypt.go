// Package crypt seals small secrets (the persisted bearer token) with
// AES-256-GCM before they reach a persistent store.
//
// Output is base64url(nonce || ciphertext || tag), safe for any string-valued
// store:
//
//	s, _ := crypt.New(config.AppKey())
//	sealed, _ := s.Seal(token)
//	token, err := s.Open(sealed)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

// ErrNoKey is returned by New for an empty secret.
var ErrNoKey = errors.New("crypt: APP_KEY not configured")

// Sealer encrypts and decrypts with one derived key.
type Sealer struct {
	aead cipher.AEAD
}

// New derives a 32-byte AES key from secret via SHA-256.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, ErrNoKey
	}
	k := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Any tampering or wrong key yields ErrDecrypt.
func (s *Sealer) Open(encoded string) (string, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", ErrDecrypt
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
