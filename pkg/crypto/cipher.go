package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength     = 32 // AES-256
	kdfIterations = 100_000

	// Fixed application salt: key derivation must be deterministic
	// across restarts so previously stored ciphertext stays readable.
	kdfSalt = "telegive_auth_salt"
)

var (
	ErrMissingMasterSecret = errors.New("master secret is required")
	ErrEmptyPlaintext      = errors.New("plaintext cannot be empty")
	ErrDecryptFailed       = errors.New("decryption failed")
)

// Cipher encrypts bot tokens at rest with AES-256-GCM under a key
// derived once from the configured master secret. Construct it at
// process start and inject it; the derived key lives for the process
// lifetime.
type Cipher struct {
	aead cipher.AEAD
}

func NewCipher(masterSecret string) (*Cipher, error) {
	if masterSecret == "" {
		return nil, ErrMissingMasterSecret
	}

	key := pbkdf2.Key([]byte(masterSecret), []byte(kdfSalt), kdfIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm mode: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals the plaintext and returns base64url(nonce || ciphertext).
// A fresh random nonce is drawn per call, so encrypting the same
// plaintext twice yields different output; storage-level uniqueness
// constraints must not assume determinism.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any failure (empty input, malformed
// encoding, truncated payload, tamper, wrong key) returns
// ErrDecryptFailed; it never partially succeeds.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", ErrDecryptFailed
	}

	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", fmt.Errorf("%w: payload too short", ErrDecryptFailed)
	}

	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}

	return string(plaintext), nil
}
