package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintReader_KnownDigest(t *testing.T) {
	fp, err := FingerprintReader(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", fp)
}

func TestFingerprint_MatchesReaderAcrossChunks(t *testing.T) {
	content := strings.Repeat("slide-bytes-", fingerprintChunkSize/4)
	path := filepath.Join(t.TempDir(), "deck.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fromFile, err := Fingerprint(path)
	require.NoError(t, err)
	fromReader, err := FingerprintReader(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, fromReader, fromFile)
	assert.Len(t, fromFile, 64)
}

func TestFingerprint_DiffersOnContent(t *testing.T) {
	a, err := FingerprintReader(strings.NewReader("lecture 1"))
	require.NoError(t, err)
	b, err := FingerprintReader(strings.NewReader("lecture 2"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFingerprint_MissingFile(t *testing.T) {
	_, err := Fingerprint(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
}
