package bagit

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestNames(t *testing.T) {
	assert.Equal(t, "manifest-sha256.txt", PayloadManifestName("SHA256"))
	assert.Equal(t, "tagmanifest-md5.txt", TagManifestName("md5"))
	assert.True(t, IsTagManifestName("tagmanifest-sha1.txt"))
	assert.True(t, IsTagManifestName("tagmanifest-blake2b-256.txt"))
	assert.False(t, IsTagManifestName("manifest-sha1.txt"))
	assert.False(t, IsTagManifestName("tagmanifest-sha1.txt.bak"))
}

func TestPathEncoding(t *testing.T) {
	for _, p := range []string{"data/plain.txt", "data/100%.txt", "data/a\rb\nc.txt", "data/%0A literal"} {
		assert.Equal(t, p, DecodePath(EncodePath(p)))
	}
	assert.Equal(t, "data/100%25.txt", EncodePath("data/100%.txt"))
}

func TestPathsEncoded(t *testing.T) {
	assert.True(t, PathsEncoded("1.0"))
	assert.True(t, PathsEncoded(" 1.1"))
	assert.True(t, PathsEncoded(""))
	assert.False(t, PathsEncoded("0.97"))
	assert.False(t, PathsEncoded("0.96"))
}

func TestManifestKeepsParsedLines(t *testing.T) {
	content := "ABCD data/b.txt\n0123  data/50%.mp4\n"

	m, err := parseManifest("manifest-md5.txt", "md5", []byte(content), false)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"data/b.txt": "ABCD", "data/50%.mp4": "0123"}, m.Entries)
	assert.Equal(t, "0123  data/50%.mp4\nABCD data/b.txt\n", string(m.bytes(false)))

	m.Entries["data/b.txt"] = "ef01"
	m.Entries["data/c%.txt"] = "2345"
	assert.Equal(t, "0123  data/50%.mp4\nef01  data/b.txt\n2345  data/c%.txt\n", string(m.bytes(false)))

	m, err = parseManifest("manifest-md5.txt", "md5", []byte(content), true)
	require.NoError(t, err)
	assert.Contains(t, m.Entries, "data/50%.mp4")
	m.Entries["data/100%.txt"] = "6789"
	assert.Equal(t, "6789  data/100%25.txt\n0123  data/50%.mp4\nABCD data/b.txt\n", string(m.bytes(true)))
}

func TestRemove(t *testing.T) {
	m := NewManifest("sha1")
	m.Entries["data/a"] = "1"
	m.Entries["data/b"] = "2"
	m.Entries["data/c"] = "3"

	assert.Equal(t, 2, m.Remove("data/a", "data/c", "data/missing"))
	assert.Equal(t, map[string]string{"data/b": "2"}, m.Entries)
}

func TestNewHash(t *testing.T) {
	h, err := NewHash("SHA-1")
	require.NoError(t, err)
	_, _ = h.Write([]byte("abc"))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", hex.EncodeToString(h.Sum(nil)))

	for _, alg := range SupportedAlgorithms() {
		_, err := NewHash(alg)
		assert.NoError(t, err, alg)
	}

	_, err = NewHash("crc32")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected one of blake2b-256, blake2b-512, md5,")
}
