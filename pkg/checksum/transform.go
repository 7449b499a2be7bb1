package checksum

import (
	"fmt"
	"sort"
)

type transformKind uint8

const (
	fullRecompute transformKind = iota
	removeEntries
)

// PayloadTransform describes how the payload manifests of a bag change
type PayloadTransform struct {
	kind  transformKind
	paths []string
}

// FullRecompute hashes the whole payload again
func FullRecompute() PayloadTransform {
	return PayloadTransform{kind: fullRecompute}
}

// RemoveEntries drops the entries of the given paths, relative to the bag root.
// Other entries are left untouched.
func RemoveEntries(paths ...string) PayloadTransform {
	p := append([]string(nil), paths...)
	sort.Strings(p)
	return PayloadTransform{kind: removeEntries, paths: p}
}

// IsFullRecompute tells if the payload is hashed again
func (t PayloadTransform) IsFullRecompute() bool {
	return t.kind == fullRecompute
}

// Paths removed by a RemoveEntries transform
func (t PayloadTransform) Paths() []string {
	return append([]string(nil), t.paths...)
}

func (t PayloadTransform) String() string {
	if t.kind == removeEntries {
		return fmt.Sprintf("remove %d entries", len(t.paths))
	}
	return "full recompute"
}
