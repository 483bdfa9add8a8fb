package fpcache

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeySize is the length of a fingerprint in bytes.
const KeySize = sha256.Size

// Key is the SHA-256 fingerprint of a source text.
type Key [KeySize]byte

// Fingerprint returns the key for text. Equal texts always produce equal keys.
func Fingerprint(text string) Key {
	return sha256.Sum256([]byte(text))
}

// String returns the hex encoding of the key. It is meant for logs and is
// never parsed back.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Short returns the first eight hex digits, for compact log lines.
func (k Key) Short() string {
	return hex.EncodeToString(k[:4])
}
