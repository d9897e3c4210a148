// Package cryptox implements the admin password verifier.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/prolens/internal/common"
	"golang.org/x/crypto/argon2"
)

const saltSize = 16

var ErrBadVerifier = errors.New("malformed password verifier")

// DeriveKey stretches password with argon2id (t=1, m=64MiB, p=4, 32 bytes).
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// HashPassword returns a self-describing verifier "argon2id$<salt>$<key>"
// with both parts base64 (raw std) encoded.
func HashPassword(password string) string {
	salt := common.GenerateRandByteArray(saltSize)
	return encode(salt, DeriveKey([]byte(password), salt))
}

// VerifyPassword reports whether password matches verifier. The comparison
// runs in constant time.
func VerifyPassword(password, verifier string) (bool, error) {
	salt, key, err := decode(verifier)
	if err != nil {
		return false, err
	}

	got := DeriveKey([]byte(password), salt)
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, key) == 1, nil
}

func encode(salt, key []byte) string {
	enc := base64.RawStdEncoding
	return "argon2id$" + enc.EncodeToString(salt) + "$" + enc.EncodeToString(key)
}

func decode(verifier string) (salt, key []byte, err error) {
	parts := strings.Split(verifier, "$")
	if len(parts) != 3 || parts[0] != "argon2id" {
		return nil, nil, ErrBadVerifier
	}

	enc := base64.RawStdEncoding
	if salt, err = enc.DecodeString(parts[1]); err != nil {
		return nil, nil, fmt.Errorf("%w: salt: %v", ErrBadVerifier, err)
	}
	if key, err = enc.DecodeString(parts[2]); err != nil {
		return nil, nil, fmt.Errorf("%w: key: %v", ErrBadVerifier, err)
	}

	return salt, key, nil
}
