package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestNewCipher_RequiresSecret(t *testing.T) {
	if _, err := NewCipher(""); !errors.Is(err, ErrMissingMasterSecret) {
		t.Fatalf("NewCipher(\"\") error = %v, want %v", err, ErrMissingMasterSecret)
	}
	if _, err := NewCipher("some-secret"); err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher("master-secret")
	if err != nil {
		t.Fatal(err)
	}

	plaintexts := []string{
		"123456789:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"x",
		strings.Repeat("long-", 200),
	}
	for _, plaintext := range plaintexts {
		ciphertext, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) error = %v", plaintext, err)
		}
		if ciphertext == plaintext {
			t.Error("ciphertext equals plaintext")
		}
		if strings.Contains(ciphertext, plaintext) && len(plaintext) > 4 {
			t.Error("ciphertext leaks plaintext")
		}

		got, err := c.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if got != plaintext {
			t.Errorf("Decrypt() = %q, want %q", got, plaintext)
		}
	}
}

// Same plaintext, fresh nonce: ciphertexts must differ but both decrypt.
func TestCipher_EncryptNotDeterministic(t *testing.T) {
	c, _ := NewCipher("master-secret")

	const plaintext = "123456789:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	first, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("two encryptions produced identical ciphertext")
	}

	for _, ciphertext := range []string{first, second} {
		if got, err := c.Decrypt(ciphertext); err != nil || got != plaintext {
			t.Errorf("Decrypt(%q) = %q, %v", ciphertext, got, err)
		}
	}
}

func TestCipher_EncryptEmpty(t *testing.T) {
	c, _ := NewCipher("master-secret")
	if _, err := c.Encrypt(""); !errors.Is(err, ErrEmptyPlaintext) {
		t.Fatalf("Encrypt(\"\") error = %v, want %v", err, ErrEmptyPlaintext)
	}
}

// Every decryption failure collapses into ErrDecryptFailed, whatever
// the cause.
func TestCipher_DecryptFailures(t *testing.T) {
	c, _ := NewCipher("master-secret")
	other, _ := NewCipher("different-secret")

	valid, err := c.Encrypt("123456789:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		cipher     *Cipher
		ciphertext string
	}{
		{name: "wrong key", cipher: other, ciphertext: valid},
		{name: "not base64", cipher: c, ciphertext: "%%%not-base64%%%"},
		{name: "too short for nonce", cipher: c, ciphertext: "AAAA"},
		{name: "empty", cipher: c, ciphertext: ""},
		{name: "tampered", cipher: c, ciphertext: tamper(valid)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := test.cipher.Decrypt(test.ciphertext); !errors.Is(err, ErrDecryptFailed) {
				t.Errorf("Decrypt() error = %v, want %v", err, ErrDecryptFailed)
			}
		})
	}
}

// Two ciphers from the same secret must interoperate: key derivation is
// deterministic.
func TestCipher_SameSecretInteroperates(t *testing.T) {
	a, _ := NewCipher("shared-secret")
	b, _ := NewCipher("shared-secret")

	ciphertext, err := a.Encrypt("payload")
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Decrypt(ciphertext)
	if err != nil || got != "payload" {
		t.Fatalf("Decrypt() across instances = %q, %v", got, err)
	}
}

// tamper flips a character late in the ciphertext, past the nonce.
func tamper(ciphertext string) string {
	b := []byte(ciphertext)
	i := len(b) - 2
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
