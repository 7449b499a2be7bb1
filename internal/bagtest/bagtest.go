// Package bagtest builds bags on an afero file system, for tests.
package bagtest

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Builder of a test bag
type Builder struct {
	fs      afero.Fs
	dir     string
	info    []bagit.Field
	files   map[string][]byte
	payload []string
	tag     []string
}

// New bag builder at dir. By default the bag has sha1 payload and tag manifests.
func New(fs afero.Fs, dir string) *Builder {
	return &Builder{
		fs:      fs,
		dir:     dir,
		files:   make(map[string][]byte),
		payload: []string{"sha1"},
		tag:     []string{"sha1"},
	}
}

// WithInfo adds bag-info fields
func (b *Builder) WithInfo(fields ...bagit.Field) *Builder {
	b.info = append(b.info, fields...)
	return b
}

// WithFile adds a file, at a path relative to the bag root
func (b *Builder) WithFile(path string, content []byte) *Builder {
	b.files[path] = content
	return b
}

// WithAlgorithms replaces the algorithms of the payload and tag manifests
func (b *Builder) WithAlgorithms(payload, tag []string) *Builder {
	b.payload = payload
	b.tag = tag
	return b
}

// Build writes the bag with valid manifests
func (b *Builder) Build(t testing.TB) {
	t.Helper()
	write(t, b.fs, filepath.Join(b.dir, bagit.DeclarationFile), []byte("BagIt-Version: 1.0\nTag-File-Character-Encoding: UTF-8\n"))

	var octets, count int
	for path, content := range b.files {
		write(t, b.fs, filepath.Join(b.dir, path), content)
		if strings.HasPrefix(path, bagit.DataDir+"/") {
			octets += len(content)
			count++
		}
	}
	require.NoError(t, b.fs.MkdirAll(filepath.Join(b.dir, bagit.DataDir), 0755))

	var info bytes.Buffer
	for _, f := range b.info {
		value := f.Value
		if f.Key == bagit.PayloadOxum {
			value = fmt.Sprintf("%d.%d", octets, count)
		}
		fmt.Fprintf(&info, "%s: %s\n", f.Key, value)
	}
	write(t, b.fs, filepath.Join(b.dir, bagit.InfoFile), info.Bytes())

	for _, alg := range b.payload {
		entries := make(map[string]string)
		for path, content := range b.files {
			if strings.HasPrefix(path, bagit.DataDir+"/") {
				entries[path] = Digest(t, alg, content)
			}
		}
		writeManifest(t, b.fs, filepath.Join(b.dir, bagit.PayloadManifestName(alg)), entries)
	}

	// tag manifests checksum everything but the payload and themselves
	tagFiles := make(map[string][]byte)
	require.NoError(t, afero.Walk(b.fs, b.dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(b.dir, path)
		rel = filepath.ToSlash(rel)
		if fi.IsDir() {
			if rel == bagit.DataDir {
				return filepath.SkipDir
			}
			return nil
		}
		content, err := afero.ReadFile(b.fs, path)
		if err != nil {
			return err
		}
		tagFiles[rel] = content
		return nil
	}))
	for _, alg := range b.tag {
		entries := make(map[string]string)
		for path, content := range tagFiles {
			entries[path] = Digest(t, alg, content)
		}
		writeManifest(t, b.fs, filepath.Join(b.dir, bagit.TagManifestName(alg)), entries)
	}
}

// Digest of some content
func Digest(t testing.TB, algorithm string, content []byte) string {
	t.Helper()
	h, err := bagit.NewHash(algorithm)
	require.NoError(t, err)
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// FileDigest computes the digest of a file
func FileDigest(t testing.TB, fs afero.Fs, algorithm, path string) string {
	t.Helper()
	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return Digest(t, algorithm, content)
}

// ReadManifest parses a manifest file into a map of paths to checksums
func ReadManifest(t testing.TB, fs afero.Fs, path string) map[string]string {
	t.Helper()
	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	entries := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), "  ", 2)
		require.Len(t, parts, 2, "manifest line %q", scanner.Text())
		entries[parts[1]] = parts[0]
	}
	require.NoError(t, scanner.Err())
	return entries
}

// ReadInfo returns the lines of bag-info.txt
func ReadInfo(t testing.TB, fs afero.Fs, dir string) []string {
	t.Helper()
	content, err := afero.ReadFile(fs, filepath.Join(dir, bagit.InfoFile))
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

func writeManifest(t testing.TB, fs afero.Fs, path string, entries map[string]string) {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var buf bytes.Buffer
	for _, p := range paths {
		fmt.Fprintf(&buf, "%s  %s\n", entries[p], p)
	}
	write(t, fs, path, buf.Bytes())
}

func write(t testing.TB, fs afero.Fs, path string, content []byte) {
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, content, 0644))
}
