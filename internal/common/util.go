package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// MakeRandHexString generates size random bytes and returns them hex encoded,
// so the result is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns n cryptographically random bytes.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray zeroes b in place. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NewLocalID returns a timestamp based token used as id for records created
// in the local document store: "<unix-ms>-<6 hex chars>". Ids created in the
// same millisecond still differ by their random suffix.
func NewLocalID(now time.Time) string {
	suffix, err := MakeRandHexString(3)
	if err != nil {
		suffix = fmt.Sprintf("%06x", now.Nanosecond()&0xffffff)
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}
