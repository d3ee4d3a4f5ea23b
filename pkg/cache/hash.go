package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashKey builds a "stage:hash" key from the given components. Each part is
// fed to the hash with a NUL separator so adjacent parts cannot collide by
// concatenation.
func hashKey(stage string, parts ...any) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%+v\x00", p)
	}
	return stage + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the SHA-256 of data as a 64-character hex string. It is the
// content hash used for graph and layout identity throughout the pipeline.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
