package bagit

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit/status"
)

// Well-known bag-info keys
const (
	IsVersionOf = "Is-Version-Of"
	Created     = "Created"
	PayloadOxum = "Payload-Oxum"
	BaseDOI     = "Base-DOI"
	BaseURN     = "Base-URN"
)

// Field is a single entry of bag-info metadata.
//
// Continuation lines are joined into Value with a single space.
type Field struct {
	Key   string
	Value string

	// text as read, continuation lines included. It is written back unless Key or Value changed.
	raw       string
	parsedKey string
	parsed    string
}

// Metadata holds the content of bag-info.txt.
//
// Keys may be repeated and their order is preserved. Lookups ignore case.
type Metadata struct {
	fields []Field
}

// NewMetadata builds metadata from key-value fields
func NewMetadata(fields ...Field) *Metadata {
	m := &Metadata{}
	for _, f := range fields {
		m.Add(f.Key, f.Value)
	}
	return m
}

// Add appends a field
func (m *Metadata) Add(key, value string) {
	m.fields = append(m.fields, Field{Key: key, Value: value})
}

// Get returns all values for key, in file order
func (m *Metadata) Get(key string) []string {
	var values []string
	for _, f := range m.fields {
		if strings.EqualFold(f.Key, key) {
			values = append(values, f.Value)
		}
	}
	return values
}

// First value for key
func (m *Metadata) First(key string) (string, bool) {
	for _, f := range m.fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// Has some value for key
func (m *Metadata) Has(key string) bool {
	_, ok := m.First(key)
	return ok
}

// Remove all fields with key
func (m *Metadata) Remove(key string) {
	kept := m.fields[:0]
	for _, f := range m.fields {
		if !strings.EqualFold(f.Key, key) {
			kept = append(kept, f)
		}
	}
	m.fields = kept
}

// Replace removes all fields with key, then appends a single one
func (m *Metadata) Replace(key, value string) {
	m.Remove(key)
	m.Add(key, value)
}

// Set updates the first field with key in place, or appends it when absent
func (m *Metadata) Set(key, value string) {
	for i, f := range m.fields {
		if strings.EqualFold(f.Key, key) {
			m.fields[i].Value = value
			return
		}
	}
	m.Add(key, value)
}

// Fields returns a copy of all fields
func (m *Metadata) Fields() []Field {
	return append([]Field(nil), m.fields...)
}

// Len is the number of fields
func (m *Metadata) Len() int {
	return len(m.fields)
}

// parseTagFile reads "Key: Value" lines. Lines starting with white space continue the previous value.
func parseTagFile(name string, content []byte) (*Metadata, error) {
	m := &Metadata{}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if len(m.fields) == 0 {
				return nil, status.ErrInvalidTagFile.WithDetails("%s line %d: continuation without a key", name, lineNumber)
			}
			last := &m.fields[len(m.fields)-1]
			last.Value += " " + strings.TrimSpace(line)
			last.parsed = last.Value
			last.raw += "\n" + line
			continue
		}
		idx := strings.Index(line, ":")
		if idx <= 0 {
			return nil, status.ErrInvalidTagFile.WithDetails("%s line %d: %q", name, lineNumber, line)
		}
		key, value := strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
		m.fields = append(m.fields, Field{Key: key, Value: value, raw: line, parsedKey: key, parsed: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, status.ErrInvalidTagFile.WithDetails("%s", name).Wrap(err)
	}
	return m, nil
}

func (m *Metadata) bytes() []byte {
	var buf bytes.Buffer
	for _, f := range m.fields {
		if f.raw != "" && f.Key == f.parsedKey && f.Value == f.parsed {
			buf.WriteString(f.raw)
			buf.WriteByte('\n')
			continue
		}
		buf.WriteString(f.Key)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
