// Package rights removes the files nobody may see nor access from a bag.
package rights

import (
	"context"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/metadata"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/rights/status"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/localfs"
	storagestatus "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Pruner removes the NONE/NONE files of a bag
type Pruner struct {
	fs     afero.Fs
	l      *zap.Logger
	bagDir string
}

// Option for the pruner
type Option func(*Pruner)

// Fs holding the bag. It defaults to the OS file system.
func Fs(fs afero.Fs) Option {
	return func(p *Pruner) {
		if fs != nil {
			p.fs = fs
		}
	}
}

// Logger for the pruner
func Logger(l *zap.Logger) Option {
	return func(p *Pruner) {
		if l != nil {
			p.l = l
		}
	}
}

// New pruner for the bag at bagDir
func New(bagDir string, opts ...Option) *Pruner {
	p := &Pruner{
		fs:     afero.NewOsFs(),
		l:      zap.NewNop(),
		bagDir: bagDir,
	}
	for _, apply := range opts {
		apply(p)
	}
	return p
}

// Prune removes the file entries with NONE/NONE rights from doc and deletes their payload.
//
// It returns the paths of the deleted files, relative to the bag root. The caller saves doc.
func (p *Pruner) Prune(ctx context.Context, doc *metadata.Document) ([]string, error) {
	var removed []string
	bag := localfs.NewAt(p.fs, p.bagDir)
	for _, entry := range doc.Files() {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.IsNoneNone() {
			continue
		}
		path, ok := entry.Filepath()
		doc.Remove(entry)
		if !ok {
			p.l.Warn("no filepath attribute found", zap.String("node", entry.String()))
			continue
		}
		if err := deletePayload(ctx, bag, path); err != nil {
			return removed, status.ErrDelete.WithDetails("%s", path).Wrap(err)
		}
		p.l.Debug("removed file with NONE/NONE rights", zap.String("path", path))
		removed = append(removed, path)
	}
	p.l.Info("pruned files", zap.String("bag", p.bagDir), zap.Int("removed", len(removed)))
	return removed, nil
}

// deletePayload fails when the file listed in files.xml is missing
func deletePayload(ctx context.Context, bag storage.Store, path string) error {
	has, err := bag.Has(ctx, path)
	if err != nil {
		return err
	}
	if !has {
		return storagestatus.ErrNotExists.WithDetails("%s", path)
	}
	return bag.Delete(ctx, path)
}
