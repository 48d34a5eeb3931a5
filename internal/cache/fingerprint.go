package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const fingerprintChunkSize = 64 * 1024

// Fingerprint returns the hex SHA-256 digest of the file at path, read in
// fixed-size chunks.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return FingerprintReader(f)
}

// FingerprintReader hashes everything readable from r.
func FingerprintReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, fingerprintChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
