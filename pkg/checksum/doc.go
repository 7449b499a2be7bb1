// Package checksum regenerates the payload and tag manifests of a bag.
//
// The payload manifests are either recomputed from scratch (FullRecompute) or
// pruned from entries of deleted files without hashing anything (RemoveEntries).
// In both cases the tag manifests are recomputed afterwards, since the payload
// manifests and the metadata they checksum have changed.
//
// A tag manifest never lists itself nor any other tag manifest at the bag root (RFC 8493, 2.2.1).
package checksum
