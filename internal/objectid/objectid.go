// Package objectid generates and validates the 24-character hex identifiers
// used as primary keys across the API. The format mirrors the store the
// endpoint policies were originally written against: a 4-byte big-endian
// unix-seconds prefix followed by 8 random bytes, hex-encoded.
package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

const encodedLen = 24

func New() string {
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(raw[4:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(raw[:])
}

// IsValid reports whether s is a well-formed 24-character hex identifier.
// The route canonicalizer relies on this to tell resource ids apart from
// literal sub-route segments.
func IsValid(s string) bool {
	if len(s) != encodedLen {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
