package wikitree

import (
	"crypto/rand"
)

// docKeyAlphabet matches frappe's generate_hash: lowercase letters and
// digits, no padding characters that could be confused with URL syntax.
const docKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

const docKeyLength = 12

// NewDocKey returns a fresh 12-character uniform-random alphanumeric
// doc_key. Random bytes at or above the largest multiple of the alphabet
// size are discarded, so every character is equally likely. Collisions
// are astronomically unlikely (36^12 keyspace); a colliding key makes the
// caller's insert fail on its unique index, and no caller retries with a
// new key.
func NewDocKey() (string, error) {
	const limit = 256 - 256%len(docKeyAlphabet)
	buf := make([]byte, docKeyLength)
	out := make([]byte, 0, docKeyLength)
	for len(out) < docKeyLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) < limit && len(out) < docKeyLength {
				out = append(out, docKeyAlphabet[int(b)%len(docKeyAlphabet)])
			}
		}
	}
	return string(out), nil
}
