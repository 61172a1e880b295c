// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"deletion-server/commons"

	"github.com/alexedwards/argon2id"
)

var ErrPasswordMismatch = errors.New("password verification failed")

func envUint(key, fallback string) uint64 {
	v, err := strconv.ParseUint(commons.GetEnv(key, fallback), 10, 32)
	if err != nil {
		v, _ = strconv.ParseUint(fallback, 10, 32)
	}
	return v
}

func NewCrypto() *Crypto {
	return &Crypto{
		ArgonTime:    uint32(envUint("ARGON2_TIME", "1")),
		ArgonMemory:  uint32(envUint("ARGON2_MEMORY", "65536")),
		ArgonThreads: uint8(envUint("ARGON2_THREADS", "2")),
		ArgonKeyLen:  uint32(envUint("ARGON2_KEYLEN", "32")),
		ArgonSaltLen: uint32(envUint("ARGON2_SALTLEN", "16")),
	}
}

func (c *Crypto) HashPassword(password string) (string, error) {
	commons.Logger.Debug("Hashing password")
	params := &argon2id.Params{
		Memory:      c.ArgonMemory,
		Iterations:  c.ArgonTime,
		Parallelism: c.ArgonThreads,
		SaltLength:  c.ArgonSaltLen,
		KeyLength:   c.ArgonKeyLen,
	}
	hash, err := argon2id.CreateHash(password, params)
	if err != nil {
		return "", err
	}
	commons.Logger.Debug("Password hashed")
	return hash, nil
}

// VerifyPassword returns ErrPasswordMismatch for a wrong password and a
// decoding error for a malformed hash.
func (c *Crypto) VerifyPassword(password, encodedHash string) error {
	commons.Logger.Debug("Verifying password")
	match, err := argon2id.ComparePasswordAndHash(password, encodedHash)
	if err != nil {
		return err
	}
	if !match {
		return ErrPasswordMismatch
	}
	return nil
}

// GenerateRandomString returns prefix followed by length random bytes in the
// given encoding ("hex", "base64" or "base64url").
func GenerateRandomString(prefix string, length int, encoding string) (string, error) {
	supported_encodings := []string{"hex", "base64", "base64url"}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	switch encoding {
	case "hex":
		return prefix + hex.EncodeToString(b), nil
	case "base64":
		return prefix + base64.StdEncoding.EncodeToString(b), nil
	case "base64url":
		return prefix + base64.RawURLEncoding.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s, Supported encodings are: %s", encoding, supported_encodings)
	}
}
