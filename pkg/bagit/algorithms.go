package bagit

import (
	"crypto/md5"  // #nosec
	"crypto/sha1" // #nosec
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit/status"
	blake2b "github.com/minio/blake2b-simd"
)

var algorithms = map[string]func() hash.Hash{
	"md5":         md5.New,
	"sha1":        sha1.New,
	"sha224":      sha256.New224,
	"sha256":      sha256.New,
	"sha384":      sha512.New384,
	"sha512":      sha512.New,
	"blake2b-256": blake2b.New256,
	"blake2b-512": blake2b.New512,
}

// NewHash returns a fresh digest for a manifest algorithm name such as "sha1" or "SHA-256"
func NewHash(algorithm string) (hash.Hash, error) {
	h, ok := algorithms[NormalizeAlgorithm(algorithm)]
	if !ok {
		return nil, status.ErrUnsupportedAlgorithm.WithDetails("%q, expected one of %s", algorithm, strings.Join(SupportedAlgorithms(), ", "))
	}
	return h(), nil
}

// NormalizeAlgorithm maps an algorithm name to its manifest spelling, e.g. "SHA-256" to "sha256"
func NormalizeAlgorithm(algorithm string) string {
	a := strings.ToLower(strings.TrimSpace(algorithm))
	if strings.HasPrefix(a, "sha-") {
		a = "sha" + strings.TrimPrefix(a, "sha-")
	}
	return a
}

// SupportedAlgorithms lists the known algorithms, sorted
func SupportedAlgorithms() []string {
	names := make([]string, 0, len(algorithms))
	for k := range algorithms {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
