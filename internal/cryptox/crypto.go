// Package cryptox derives the keys used to sign and encrypt session cookies.
package cryptox

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// HashKeySize is the HMAC-SHA256 key length securecookie recommends.
	HashKeySize = 64
	// BlockKeySize selects AES-256 for cookie encryption.
	BlockKeySize = 32

	minSecretSize = 16
)

// ErrSecretTooShort is returned when the configured session secret cannot
// give keys enough entropy.
var ErrSecretTooShort = errors.New("session secret must be at least 16 bytes")

// CookieKeys is a hash/block key pair for securecookie.
type CookieKeys struct {
	Hash  []byte
	Block []byte
}

// DeriveCookieKeys expands secret into independent hash and block keys with
// HKDF-SHA256. The same secret always yields the same keys, so cookies
// survive restarts and stay valid across replicas sharing a secret.
func DeriveCookieKeys(secret []byte) (CookieKeys, error) {
	if len(secret) < minSecretSize {
		return CookieKeys{}, ErrSecretTooShort
	}

	hash, err := expand(secret, "authbridge cookie hash")
	if err != nil {
		return CookieKeys{}, err
	}
	block, err := expand(secret, "authbridge cookie block")
	if err != nil {
		return CookieKeys{}, err
	}

	return CookieKeys{Hash: hash[:HashKeySize], Block: block[:BlockKeySize]}, nil
}

func expand(secret []byte, info string) ([]byte, error) {
	out := make([]byte, HashKeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
