// Package encrypt implements the public-key encryption of client
// submissions to the aggregation servers: X25519 ephemeral key
// agreement, an HKDF-SHA256 key schedule and AES-256-GCM sealing. Each
// client seals each share to the public key of exactly one server, so
// that neither server can read the share addressed to its peer.
package encrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	publicKeySize = 32
	nonceSize     = 12
	aesKeySize    = 32
)

// hkdfInfo domain-separates the derived AES keys from any other use of
// the shared secret.
var hkdfInfo = []byte("dprio share encryption v1")

// ErrDecryptionFailed is the error returned when a sealed submission
// cannot be opened, because it is truncated, corrupted or addressed to
// a different key.
var ErrDecryptionFailed = errors.New("decryption failed")

// PrivateKey is a server's X25519 decryption key.
type PrivateKey struct {
	key *ecdh.PrivateKey
}

// PublicKey is a server's X25519 encryption key, distributed to the
// clients.
type PublicKey struct {
	key *ecdh.PublicKey
}

// GenerateKey generates a fresh private key from crypto/rand.
func GenerateKey() (*PrivateKey, error) {

	key, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cannot GenerateKey: %w", err)
	}

	return &PrivateKey{key: key}, nil
}

// NewPrivateKeyFromBase64 decodes a private key from its base64
// representation.
func NewPrivateKeyFromBase64(s string) (*PrivateKey, error) {

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	key, err := ecdh.X25519().NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &PrivateKey{key: key}, nil
}

// Base64 returns the base64 representation of the private key.
func (sk *PrivateKey) Base64() string {
	return base64.StdEncoding.EncodeToString(sk.key.Bytes())
}

// Public returns the public key of the private key.
func (sk *PrivateKey) Public() *PublicKey {
	return &PublicKey{key: sk.key.PublicKey()}
}

// NewPublicKeyFromBase64 decodes a public key from its base64
// representation.
func NewPublicKeyFromBase64(s string) (*PublicKey, error) {

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	key, err := ecdh.X25519().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	return &PublicKey{key: key}, nil
}

// Base64 returns the base64 representation of the public key.
func (pk *PublicKey) Base64() string {
	return base64.StdEncoding.EncodeToString(pk.key.Bytes())
}

// Equal returns true if the two public keys are identical.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.key.Equal(other.key)
}

// Seal encrypts the plaintext to the recipient public key. The sealed
// layout is ephemeral public key (32 bytes) || nonce (12 bytes) ||
// ciphertext and tag.
func Seal(recipient *PublicKey, plaintext []byte) ([]byte, error) {

	ephemeral, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cannot Seal: %w", err)
	}

	shared, err := ephemeral.ECDH(recipient.key)
	if err != nil {
		return nil, fmt.Errorf("cannot Seal: %w", err)
	}

	ephemeralPub := ephemeral.PublicKey().Bytes()

	gcm, err := aead(shared, ephemeralPub, recipient.key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("cannot Seal: %w", err)
	}

	out := make([]byte, publicKeySize+nonceSize, publicKeySize+nonceSize+len(plaintext)+gcm.Overhead())
	copy(out, ephemeralPub)

	nonce := out[publicKeySize : publicKeySize+nonceSize]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cannot Seal: %w", err)
	}

	return gcm.Seal(out, nonce, plaintext, ephemeralPub), nil
}

// Open decrypts a sealed submission with the recipient private key. It
// returns ErrDecryptionFailed on any truncated, corrupted or misdirected
// input.
func Open(recipient *PrivateKey, sealed []byte) ([]byte, error) {

	if len(sealed) < publicKeySize+nonceSize {
		return nil, fmt.Errorf("%w: sealed input of %d bytes is truncated", ErrDecryptionFailed, len(sealed))
	}

	ephemeralPub := sealed[:publicKeySize]

	ephemeral, err := ecdh.X25519().NewPublicKey(ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	shared, err := recipient.key.ECDH(ephemeral)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	gcm, err := aead(shared, ephemeralPub, recipient.key.PublicKey().Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	nonce := sealed[publicKeySize : publicKeySize+nonceSize]

	plaintext, err := gcm.Open(nil, nonce, sealed[publicKeySize+nonceSize:], ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// aead derives the AES-256-GCM cipher from the shared secret, binding
// the key to both the ephemeral and the recipient public keys.
func aead(shared, ephemeralPub, recipientPub []byte) (cipher.AEAD, error) {

	salt := make([]byte, 0, len(ephemeralPub)+len(recipientPub))
	salt = append(salt, ephemeralPub...)
	salt = append(salt, recipientPub...)

	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, salt, hkdfInfo), key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
