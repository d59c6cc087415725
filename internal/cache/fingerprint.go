package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Hash returns a stable content hash of v.
// Map keys are sorted before encoding, so insertion order never affects the result.
func Hash(v any) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode value for hashing: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// Key derives the cache key of a request: kind plus the hash of the whole input
func Key(kind Kind, input any) (string, error) {
	h, err := Hash(input)
	if err != nil {
		return "", err
	}
	return string(kind) + ":" + h, nil
}

// CountAndHash fingerprints a collection by its size and content hash
func CountAndHash(label string, n int, v any) (string, error) {
	h, err := Hash(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%s", label, n, h), nil
}
