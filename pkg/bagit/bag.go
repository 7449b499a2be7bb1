package bagit

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit/status"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
)

// Names of the tag files and of the payload directory
const (
	DeclarationFile = "bagit.txt"
	InfoFile        = "bag-info.txt"
	DataDir         = "data"

	versionKey  = "BagIt-Version"
	encodingKey = "Tag-File-Character-Encoding"

	fileMode = 0644
)

// Bag is a BagIt package rooted at some directory of a file system
type Bag struct {
	fs       afero.Fs
	dir      string
	version  string
	encName  string
	encoding encoding.Encoding

	// Info is the content of bag-info.txt
	Info *Metadata

	payload map[string]*Manifest
	tag     map[string]*Manifest
}

// Read the tag files of the bag located at dir
func Read(fs afero.Fs, dir string) (*Bag, error) {
	dir = filepath.Clean(dir)
	declaration, err := afero.ReadFile(fs, filepath.Join(dir, DeclarationFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.ErrNotABag.WithDetails("no %s in %s", DeclarationFile, dir)
		}
		return nil, status.ErrNotABag.WithDetails("%s", dir).Wrap(err)
	}

	// bagit.txt is always UTF-8
	decl, err := parseTagFile(DeclarationFile, declaration)
	if err != nil {
		return nil, err
	}
	b := &Bag{
		fs:      fs,
		dir:     dir,
		payload: make(map[string]*Manifest),
		tag:     make(map[string]*Manifest),
	}
	b.version, _ = decl.First(versionKey)
	b.encName, _ = decl.First(encodingKey)
	if b.encName == "" {
		b.encName = DefaultEncoding
	}
	if b.encoding, err = lookupEncoding(b.encName); err != nil {
		return nil, err
	}

	if b.Info, err = b.readInfo(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		name := fi.Name()
		if m := payloadManifestRex.FindStringSubmatch(name); m != nil {
			if b.payload[NormalizeAlgorithm(m[1])], err = b.readManifest(name, m[1]); err != nil {
				return nil, err
			}
			continue
		}
		if m := tagManifestRex.FindStringSubmatch(name); m != nil {
			if b.tag[NormalizeAlgorithm(m[1])], err = b.readManifest(name, m[1]); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// Dir is the root directory of the bag
func (b *Bag) Dir() string {
	return b.dir
}

// Fs is the file system holding the bag
func (b *Bag) Fs() afero.Fs {
	return b.fs
}

// Version declared by bagit.txt
func (b *Bag) Version() string {
	return b.version
}

// Encoding is the Tag-File-Character-Encoding declared by bagit.txt
func (b *Bag) Encoding() string {
	return b.encName
}

// PayloadManifests sorted by algorithm
func (b *Bag) PayloadManifests() []*Manifest {
	return sortedManifests(b.payload)
}

// TagManifests sorted by algorithm
func (b *Bag) TagManifests() []*Manifest {
	return sortedManifests(b.tag)
}

// SetPayloadManifests replaces the payload manifests held in memory
func (b *Bag) SetPayloadManifests(manifests []*Manifest) {
	b.payload = indexManifests(manifests)
}

// SetTagManifests replaces the tag manifests held in memory
func (b *Bag) SetTagManifests(manifests []*Manifest) {
	b.tag = indexManifests(manifests)
}

// WritePayloadManifests writes all payload manifests to the bag root
func (b *Bag) WritePayloadManifests() error {
	for _, m := range b.PayloadManifests() {
		if err := b.writeTagFile(PayloadManifestName(m.Algorithm), m.bytes(PathsEncoded(b.version))); err != nil {
			return err
		}
	}
	return nil
}

// WriteTagManifests writes all tag manifests to the bag root
func (b *Bag) WriteTagManifests() error {
	for _, m := range b.TagManifests() {
		if err := b.writeTagFile(TagManifestName(m.Algorithm), m.bytes(PathsEncoded(b.version))); err != nil {
			return err
		}
	}
	return nil
}

// WriteInfo writes bag-info.txt
func (b *Bag) WriteInfo() error {
	return b.writeTagFile(InfoFile, b.Info.bytes())
}

func (b *Bag) readInfo() (*Metadata, error) {
	content, err := b.readTagFile(InfoFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Metadata{}, nil
		}
		return nil, err
	}
	return parseTagFile(InfoFile, content)
}

func (b *Bag) readManifest(name, algorithm string) (*Manifest, error) {
	if _, err := NewHash(algorithm); err != nil {
		return nil, err
	}
	content, err := b.readTagFile(name)
	if err != nil {
		return nil, err
	}
	return parseManifest(name, algorithm, content, PathsEncoded(b.version))
}

func (b *Bag) readTagFile(name string) ([]byte, error) {
	raw, err := afero.ReadFile(b.fs, filepath.Join(b.dir, name))
	if err != nil {
		return nil, err
	}
	content, err := decode(b.encoding, raw)
	if err != nil {
		return nil, status.ErrUnsupportedEncoding.WithDetails("decoding %s as %s", name, b.encName).Wrap(err)
	}
	return content, nil
}

func (b *Bag) writeTagFile(name string, content []byte) error {
	raw, err := encode(b.encoding, content)
	if err != nil {
		return status.ErrUnsupportedEncoding.WithDetails("encoding %s as %s", name, b.encName).Wrap(err)
	}
	return afero.WriteFile(b.fs, filepath.Join(b.dir, name), raw, fileMode)
}

func sortedManifests(index map[string]*Manifest) []*Manifest {
	res := make([]*Manifest, 0, len(index))
	for _, m := range index {
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Algorithm < res[j].Algorithm })
	return res
}

func indexManifests(manifests []*Manifest) map[string]*Manifest {
	index := make(map[string]*Manifest, len(manifests))
	for _, m := range manifests {
		index[m.Algorithm] = m
	}
	return index
}
