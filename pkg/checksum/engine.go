package checksum

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/localfs"
	units "github.com/docker/go-units"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultAlgorithm for the payload manifest of a bag that declares none
const DefaultAlgorithm = "sha1"

// Engine regenerates the manifests of bags
type Engine struct {
	fs         afero.Fs
	l          *zap.Logger
	algorithms []string
}

// Option for the checksum engine
type Option func(*Engine)

// Logger for the checksum engine
func Logger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.l = l
		}
	}
}

// DefaultAlgorithms are used for the payload manifests when a bag declares none
func DefaultAlgorithms(algorithms ...string) Option {
	return func(e *Engine) {
		if len(algorithms) > 0 {
			e.algorithms = algorithms
		}
	}
}

// New checksum engine working on bags stored on fs
func New(fs afero.Fs, opts ...Option) *Engine {
	e := &Engine{
		fs:         fs,
		l:          zap.NewNop(),
		algorithms: []string{DefaultAlgorithm},
	}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// RecomputeAll hashes the payload and the tag files of the bag at dir
func (e *Engine) RecomputeAll(ctx context.Context, dir string) error {
	return e.Update(ctx, dir, FullRecompute())
}

// RemoveEntries drops some paths from the payload manifests of the bag at dir, then recomputes its tag manifests
func (e *Engine) RemoveEntries(ctx context.Context, dir string, paths []string) error {
	return e.Update(ctx, dir, RemoveEntries(paths...))
}

// Update applies a payload transform to the bag at dir, then recomputes its tag manifests
func (e *Engine) Update(ctx context.Context, dir string, t PayloadTransform) error {
	start := time.Now()
	bag, err := bagit.Read(e.fs, dir)
	if err != nil {
		return err
	}

	var stats treeStats
	if t.IsFullRecompute() {
		stats, err = e.recomputePayload(ctx, bag)
	} else {
		stats, err = e.removePayloadEntries(ctx, bag, t.Paths())
	}
	if err != nil {
		return err
	}
	e.l.Info("payload manifests updated",
		zap.String("bag", dir),
		zap.Stringer("transform", t),
		zap.Int("files", stats.count),
		zap.String("size", units.HumanSize(float64(stats.octets))),
		zap.Duration("elapsed", time.Since(start)),
	)

	if bag.Info.Has(bagit.PayloadOxum) {
		bag.Info.Set(bagit.PayloadOxum, fmt.Sprintf("%d.%d", stats.octets, stats.count))
		if err = bag.WriteInfo(); err != nil {
			return fmt.Errorf("writing %s: %w", bagit.InfoFile, err)
		}
	}
	if err = bag.WritePayloadManifests(); err != nil {
		return fmt.Errorf("writing payload manifests: %w", err)
	}

	if err = e.recomputeTags(ctx, bag); err != nil {
		return err
	}
	if err = bag.WriteTagManifests(); err != nil {
		return fmt.Errorf("writing tag manifests: %w", err)
	}
	e.l.Debug("tag manifests updated", zap.String("bag", dir), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (e *Engine) recomputePayload(ctx context.Context, bag *bagit.Bag) (treeStats, error) {
	algorithms := algorithmsOf(bag.PayloadManifests())
	if len(algorithms) == 0 {
		algorithms = e.algorithms
	}
	dataDir := filepath.Join(bag.Dir(), bagit.DataDir)
	manifests, stats, err := hashTree(ctx, e.fs, bag.Dir(), dataDir, algorithms, nil)
	if err != nil {
		return stats, err
	}
	bag.SetPayloadManifests(manifests)
	return stats, nil
}

func (e *Engine) removePayloadEntries(ctx context.Context, bag *bagit.Bag, paths []string) (treeStats, error) {
	var stats treeStats
	manifests := bag.PayloadManifests()
	for _, m := range manifests {
		removed := m.Remove(paths...)
		e.l.Debug("removed manifest entries", zap.String("algorithm", m.Algorithm), zap.Int("removed", removed))
	}
	if len(manifests) == 0 {
		return stats, nil
	}
	payload := localfs.NewAt(e.fs, bag.Dir())
	for _, p := range manifests[0].Paths() {
		size, err := payload.Size(ctx, p)
		if err != nil {
			return stats, fmt.Errorf("payload file of manifest entry %q: %w", p, err)
		}
		stats.add(size)
	}
	return stats, nil
}

func (e *Engine) recomputeTags(ctx context.Context, bag *bagit.Bag) error {
	algorithms := algorithmsOf(bag.TagManifests())
	if len(algorithms) == 0 {
		return nil
	}
	root := bag.Dir()
	dataDir := filepath.Join(root, bagit.DataDir)
	skip := func(path string, fi os.FileInfo) (bool, error) {
		if fi.IsDir() {
			if path == dataDir {
				return true, filepath.SkipDir
			}
			return false, nil
		}
		return filepath.Dir(path) == root && bagit.IsTagManifestName(fi.Name()), nil
	}
	manifests, _, err := hashTree(ctx, e.fs, root, root, algorithms, skip)
	if err != nil {
		return err
	}
	bag.SetTagManifests(manifests)
	return nil
}

func algorithmsOf(manifests []*bagit.Manifest) []string {
	algorithms := make([]string, 0, len(manifests))
	for _, m := range manifests {
		algorithms = append(algorithms, m.Algorithm)
	}
	return algorithms
}

type treeStats struct {
	octets int64
	count  int
}

func (s *treeStats) add(size int64) {
	s.octets += size
	s.count++
}

// hashTree computes the digests of all regular files under dir, with all algorithms in one read.
// Manifest entries are relative to root.
func hashTree(ctx context.Context, fs afero.Fs, root, dir string, algorithms []string, skip func(string, os.FileInfo) (bool, error)) ([]*bagit.Manifest, treeStats, error) {
	var stats treeStats
	manifests := make([]*bagit.Manifest, 0, len(algorithms))
	for _, alg := range algorithms {
		if _, err := bagit.NewHash(alg); err != nil {
			return nil, stats, err
		}
		manifests = append(manifests, bagit.NewManifest(bagit.NormalizeAlgorithm(alg)))
	}

	err := afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
		if skip != nil {
			skipped, err := skip(path, fi)
			if err != nil || skipped {
				return err
			}
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sums, err := hashFile(fs, path, manifests)
		if err != nil {
			return err
		}
		for i, m := range manifests {
			m.Entries[filepath.ToSlash(rel)] = sums[i]
		}
		stats.add(fi.Size())
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return manifests, stats, nil
}

func hashFile(fs afero.Fs, path string, manifests []*bagit.Manifest) (sums []string, err error) {
	hashes := make([]hash.Hash, 0, len(manifests))
	writers := make([]io.Writer, 0, len(manifests))
	for _, m := range manifests {
		h, _ := bagit.NewHash(m.Algorithm)
		hashes = append(hashes, h)
		writers = append(writers, h)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if _, err = storage.PipeIO(io.MultiWriter(writers...), f); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}

	sums = make([]string, 0, len(hashes))
	for _, h := range hashes {
		sums = append(sums, hex.EncodeToString(h.Sum(nil)))
	}
	return sums, nil
}
