package bagit

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit/status"
)

var (
	payloadManifestRex = regexp.MustCompile(`^manifest-([a-zA-Z0-9-]+)\.txt$`)
	tagManifestRex     = regexp.MustCompile(`^tagmanifest-([a-zA-Z0-9-]+)\.txt$`)

	pathEncoder = strings.NewReplacer("%", "%25", "\n", "%0A", "\r", "%0D")
	pathDecoder = strings.NewReplacer("%0A", "\n", "%0a", "\n", "%0D", "\r", "%0d", "\r", "%25", "%")
)

// Manifest maps paths relative to the bag root to the hex checksum computed with Algorithm.
// Checksums read from a manifest are kept as written.
type Manifest struct {
	Algorithm string
	Entries   map[string]string

	// lines as read, written back as long as their checksum is unchanged
	lines map[string]parsedLine
}

type parsedLine struct {
	checksum string
	text     string
}

// NewManifest for some algorithm, without entries
func NewManifest(algorithm string) *Manifest {
	return &Manifest{
		Algorithm: strings.ToLower(algorithm),
		Entries:   make(map[string]string),
	}
}

// Paths in lexical order
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Entries))
	for p := range m.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Remove entries for the given paths. It returns the number of entries removed.
func (m *Manifest) Remove(paths ...string) int {
	removed := 0
	for _, p := range paths {
		if _, ok := m.Entries[p]; ok {
			delete(m.Entries, p)
			removed++
		}
	}
	return removed
}

// PayloadManifestName is the file name of the payload manifest for an algorithm
func PayloadManifestName(algorithm string) string {
	return "manifest-" + strings.ToLower(algorithm) + ".txt"
}

// TagManifestName is the file name of the tag manifest for an algorithm
func TagManifestName(algorithm string) string {
	return "tagmanifest-" + strings.ToLower(algorithm) + ".txt"
}

// IsTagManifestName tells if a file name at the bag root is a tag manifest
func IsTagManifestName(name string) bool {
	return tagManifestRex.MatchString(name)
}

// EncodePath percent-encodes the characters a manifest line cannot hold
func EncodePath(p string) string {
	return pathEncoder.Replace(p)
}

// DecodePath reverses EncodePath
func DecodePath(p string) string {
	return pathDecoder.Replace(p)
}

// PathsEncoded tells if the manifests of a bag with this BagIt-Version percent-encode their paths.
// Encoding starts with version 1.0; a missing version is taken as current.
func PathsEncoded(version string) bool {
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	n, err := strconv.Atoi(major)
	return err != nil || n >= 1
}

func parseManifest(name, algorithm string, content []byte, encoded bool) (*Manifest, error) {
	m := NewManifest(algorithm)
	m.lines = make(map[string]parsedLine)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.IndexAny(line, " \t")
		if idx <= 0 {
			return nil, status.ErrInvalidManifest.WithDetails("%s line %d: %q", name, lineNumber, line)
		}
		path := strings.TrimLeft(line[idx:], " \t")
		if path == "" {
			return nil, status.ErrInvalidManifest.WithDetails("%s line %d: missing path", name, lineNumber)
		}
		if encoded {
			path = DecodePath(path)
		}
		m.Entries[path] = line[:idx]
		m.lines[path] = parsedLine{checksum: line[:idx], text: line}
	}
	if err := scanner.Err(); err != nil {
		return nil, status.ErrInvalidManifest.WithDetails("%s", name).Wrap(err)
	}
	return m, nil
}

func (m *Manifest) bytes(encoded bool) []byte {
	var buf bytes.Buffer
	for _, p := range m.Paths() {
		if l, ok := m.lines[p]; ok && l.checksum == m.Entries[p] {
			buf.WriteString(l.text)
			buf.WriteByte('\n')
			continue
		}
		path := p
		if encoded {
			path = EncodePath(p)
		}
		fmt.Fprintf(&buf, "%s  %s\n", m.Entries[p], path)
	}
	return buf.Bytes()
}
