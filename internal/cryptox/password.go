// Package cryptox implements password hashing for CoinKeeper accounts.
//
// A password digest is argon2id(password, salt) with a per-user random salt.
// The digest is deterministic for a fixed (password, salt) pair, so equality
// of digests is the authentication check. Comparison must always go through
// VerifyDigest, which is constant-time.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters: 1 pass, 64 MiB, 4 lanes, 32-byte key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	// SaltSize is the per-user salt length in bytes.
	SaltSize = 32
)

// GenerateSalt returns a new cryptographically random per-user salt.
func GenerateSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DigestPassword derives the stored digest from a password and salt.
// Always succeeds given non-nil inputs; hex-encoded for JSON-friendly storage.
func DigestPassword(password, salt []byte) string {
	key := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}

// VerifyDigest reports whether the password and salt produce the stored
// digest. The comparison is constant-time.
func VerifyDigest(digest string, password, salt []byte) bool {
	candidate := DigestPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(candidate)) == 1
}

// EncodeSalt and DecodeSalt convert between the raw salt and its stored
// hex form under the @auth_salt_<userId> key.
func EncodeSalt(salt []byte) string {
	return hex.EncodeToString(salt)
}

func DecodeSalt(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
