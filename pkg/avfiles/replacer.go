// Package avfiles substitutes the placeholders of externally stored AV files with their actual content.
//
// The files.xml entries with a dct:source marker point to zero-length placeholders in the payload.
// The mapping file tells where the real files live under the AV directory. Both must agree exactly
// on the set of files which belong to a bag: the bag is identified by the name of its parent directory,
// a unique token that the mapping paths contain.
package avfiles

import (
	"context"
	"sort"
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/avfiles/status"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/mapping"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/metadata"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/localfs"
	units "github.com/docker/go-units"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Replacer copies external files over their placeholders in a bag
type Replacer struct {
	fs     afero.Fs
	l      *zap.Logger
	bagDir string
	group  string

	// file identifier -> external file
	locations map[string]string

	// file identifier -> placeholder, relative to the bag root
	index map[string]string
}

// Option for the replacer
type Option func(*Replacer)

// Fs sets the file system holding the bag, the mapping and the AV files. It defaults to the OS file system.
func Fs(fs afero.Fs) Option {
	return func(r *Replacer) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// Logger for the replacer
func Logger(l *zap.Logger) Option {
	return func(r *Replacer) {
		if l != nil {
			r.l = l
		}
	}
}

// New replacer for the bag at bagDir, which placeholders are listed by doc.
//
// It fails if the mapping and the placeholders do not match one to one for the group, or when a mapped file is missing.
// On failure the bag directory is removed.
func New(bagDir, mappingCsv, avRoot string, doc *metadata.Document, group string, opts ...Option) (*Replacer, error) {
	r := &Replacer{
		fs:     afero.NewOsFs(),
		l:      zap.NewNop(),
		bagDir: bagDir,
		group:  group,
	}
	for _, apply := range opts {
		apply(r)
	}

	locations, err := mapping.ExternalLocations(r.fs, mappingCsv, avRoot, mapping.Logger(r.l))
	if err != nil {
		return nil, err
	}
	r.locations = locations
	r.index = metadata.BuildIndex(doc, metadata.IndexLogger(r.l), metadata.OnlyPlaceholders(r.fs, bagDir))

	if err = r.crossCheck(); err != nil {
		if e := r.fs.RemoveAll(bagDir); e != nil {
			err = multierr.Append(err, e)
		}
		return nil, err
	}
	return r, nil
}

// Index maps the identifiers of the placeholders to their path in the bag
func (r *Replacer) Index() map[string]string {
	index := make(map[string]string, len(r.index))
	for k, v := range r.index {
		index[k] = v
	}
	return index
}

// Replace overwrites every placeholder with its external file
func (r *Replacer) Replace(ctx context.Context) error {
	source := localfs.New(r.fs)
	target := localfs.NewAt(r.fs, r.bagDir)
	var total int64
	for _, id := range sortedKeys(r.index) {
		location, ok := r.locations[id]
		if !ok {
			r.l.Warn("no external location found", zap.String("id", id))
			continue
		}
		path := r.index[id]
		n, err := storage.Copy(ctx, source, location, target, path, storage.OverWrite)
		if err != nil {
			return status.ErrCopy.WithDetails("%s to %s", location, path).Wrap(err)
		}
		total += n
		r.l.Debug("replaced placeholder", zap.String("id", id), zap.String("path", path),
			zap.String("size", units.HumanSize(float64(n))))
	}
	r.l.Info("external files copied",
		zap.String("bag", r.bagDir),
		zap.Int("files", len(r.index)),
		zap.String("size", units.HumanSize(float64(total))),
	)
	return nil
}

// crossCheck requires the placeholders to match the mapped files of the group.
// The group is assumed unique: a mapping path containing it belongs to this bag.
func (r *Replacer) crossCheck() error {
	mapped := make(map[string]string)
	for id, location := range r.locations {
		if strings.Contains(location, r.group) {
			mapped[id] = location
		}
	}

	onlyInMapping := difference(mapped, r.index)
	onlyInIndex := difference(r.index, mapped)
	if len(onlyInMapping) > 0 {
		r.l.Error("files in mapping but not replaced", zap.String("group", r.group), zap.Strings("ids", onlyInMapping))
	}
	if len(onlyInIndex) > 0 {
		r.l.Error("replaced files not in mapping", zap.String("group", r.group), zap.Strings("ids", onlyInIndex))
	}
	if len(onlyInMapping) > 0 || len(onlyInIndex) > 0 {
		return status.ErrMappingMismatch.WithDetails("group %s", r.group)
	}

	for _, id := range sortedKeys(mapped) {
		exists, err := afero.Exists(r.fs, mapped[id])
		if err != nil {
			return err
		}
		if !exists {
			r.l.Error("external file not found", zap.String("id", id), zap.String("path", mapped[id]))
			return status.ErrMissingExternalFile.WithDetails("%s: %s", id, mapped[id])
		}
	}
	return nil
}

func difference(a, b map[string]string) []string {
	var res []string
	for k := range a {
		if _, ok := b[k]; !ok {
			res = append(res, k)
		}
	}
	sort.Strings(res)
	return res
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
