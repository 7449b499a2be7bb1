// Package streaming adds the streaming renditions of AV files to a bag.
//
// An AV file too large to be played gets a sibling, with the same rights, holding
// a pre-rendered streaming version taken from the springfield directory.
package streaming

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/mapping"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/metadata"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/localfs"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/streaming/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const suffix = "-streaming"

// Substituter adds streaming files to a bag
type Substituter struct {
	fs    afero.Fs
	l     *zap.Logger
	doc   *metadata.Document
	group string

	// file identifier -> streaming file
	locations map[string]string

	// file identifier -> files.xml entry of the original file
	matches map[string]*metadata.FileEntry
}

// Option for the substituter
type Option func(*Substituter)

// Fs holding the mapping, the streaming files and the bag. It defaults to the OS file system.
func Fs(fs afero.Fs) Option {
	return func(s *Substituter) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// Logger for the substituter
func Logger(l *zap.Logger) Option {
	return func(s *Substituter) {
		if l != nil {
			s.l = l
		}
	}
}

// New substituter for the streaming files of group, which originals are listed by doc.
//
// Every streaming file must exist and match a file entry of doc.
func New(mappingCsv, streamingRoot, group string, doc *metadata.Document, opts ...Option) (*Substituter, error) {
	s := &Substituter{
		fs:      afero.NewOsFs(),
		l:       zap.NewNop(),
		doc:     doc,
		group:   group,
		matches: make(map[string]*metadata.FileEntry),
	}
	for _, apply := range opts {
		apply(s)
	}

	locations, err := mapping.StreamingLocations(s.fs, mappingCsv, streamingRoot, group, mapping.Logger(s.l))
	if err != nil {
		return nil, err
	}
	s.locations = locations

	for _, entry := range doc.Files() {
		id, ok := entry.Identifier()
		if !ok {
			continue
		}
		if _, ok = locations[id]; ok {
			s.matches[id] = entry
		}
	}
	if len(s.matches) != len(locations) {
		expected := sortedKeys(locations)
		found := make([]string, 0, len(s.matches))
		for id := range s.matches {
			found = append(found, id)
		}
		sort.Strings(found)
		s.l.Error("not all files found in files.xml", zap.String("group", group),
			zap.Strings("expected", expected), zap.Strings("found", found))
		return nil, status.ErrNotInMetadata.WithDetails("expected %v, found %v", expected, found)
	}
	return s, nil
}

// HasFilesToAdd tells if any streaming file applies to the bag
func (s *Substituter) HasFilesToAdd() bool {
	return len(s.matches) > 0
}

type addition struct {
	path   string
	source *metadata.FileEntry
}

// Apply copies the streaming files into the bag at bagDir and appends their entries to files.xml.
// An existing file at the streaming path is overwritten.
//
// It returns the paths of the added files, relative to the bag root.
func (s *Substituter) Apply(ctx context.Context, bagDir string) ([]string, error) {
	source := localfs.New(s.fs)
	target := localfs.NewAt(s.fs, bagDir)
	additions := make([]addition, 0, len(s.matches))

	for _, id := range sortedKeys(s.locations) {
		entry := s.matches[id]
		oldPath, ok := entry.Filepath()
		if !ok {
			return nil, status.ErrMissingFilepath.WithDetails("%s", id)
		}
		location := s.locations[id]
		newPath := StreamingPath(oldPath, strings.TrimPrefix(filepath.Ext(location), "."))
		if _, err := storage.Copy(ctx, source, location, target, newPath, storage.OverWrite); err != nil {
			return nil, status.ErrCopy.WithDetails("%s to %s", location, newPath).Wrap(err)
		}
		s.l.Debug("added streaming file", zap.String("id", id), zap.String("path", newPath))
		additions = append(additions, addition{path: newPath, source: entry})
	}

	added := make([]string, 0, len(additions))
	for _, a := range additions {
		s.doc.AppendFile(a.path, a.source.RightsElements()...)
		added = append(added, a.path)
	}
	s.l.Info("streaming files added", zap.String("bag", bagDir), zap.Strings("paths", added))
	return added, nil
}

// StreamingPath derives the path of the streaming rendition of oldPath, given the extension of the streaming file.
//
// With the same extension, a "-streaming" suffix is inserted before it: a/b.mp4 becomes a/b-streaming.mp4.
// Otherwise the extension is replaced: a/b.wav becomes a/b.mp4.
func StreamingPath(oldPath, newExt string) string {
	dir, base := path.Split(oldPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// a dot file has no extension
		stem, ext = base, ""
	}
	if strings.EqualFold(strings.TrimPrefix(ext, "."), newExt) {
		return dir + stem + suffix + ext
	}
	if newExt == "" {
		return dir + stem
	}
	return dir + stem + "." + newExt
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
