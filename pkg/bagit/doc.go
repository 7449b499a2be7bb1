// Package bagit reads and writes the tag files of a BagIt package (RFC 8493).
//
// A bag is a directory holding:
//
//	bagit.txt                  version and tag file character encoding
//	bag-info.txt               ordered, repeatable "Key: Value" metadata
//	manifest-<alg>.txt         checksums of the payload, one line per file under data/
//	tagmanifest-<alg>.txt      checksums of the tag files
//	data/                      the payload
//
// This package does not compute checksums: it exposes manifests as plain maps of
// relative paths to hex digests, and writes them back sorted by path.
package bagit
