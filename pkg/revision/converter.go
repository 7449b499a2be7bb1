// Package revision builds the chain of revisions of an AV dataset.
//
// Starting from an input bag with placeholders for its AV files, it produces:
//
//	revision 1: the input with the actual AV files
//	revision 2: revision 1 without the files nobody may see nor access
//	revision 3: revision 2 with streaming renditions, only when the mapping lists some for the bag
//
// Every revision has valid manifests and refers to its predecessor.
// A failure aborts the conversion: complete revisions are left in place.
package revision

import (
	"context"
	"path/filepath"
	"time"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/avfiles"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/checksum"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/metadata"
	metadatastatus "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/metadata/status"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/model"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/revision/status"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/rights"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/localfs"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/streaming"
	units "github.com/docker/go-units"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Converter turns an input bag into a chain of revisions
type Converter struct {
	fs             afero.Fs
	l              *zap.Logger
	avDir          string
	springfieldDir string
	now            func() time.Time
	newID          func() string
	algorithms     []string
}

// NewConverter builds a converter
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		fs:         afero.NewOsFs(),
		l:          zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
		algorithms: []string{checksum.DefaultAlgorithm},
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// conversion holds the state shared by the revisions of one Convert call
type conversion struct {
	*Converter
	engine  *checksum.Engine
	doc     *metadata.Document
	mapping string
	chain   *model.Chain
}

// Convert builds the revisions of the bag at input into output.
//
// The returned chain lists the revisions completed so far, also on error.
func (c *Converter) Convert(ctx context.Context, input, mappingCsv, output string) (*model.Chain, error) {
	input = filepath.Clean(input)
	output = filepath.Clean(output)
	chain := &model.Chain{Input: input, Mapping: mappingCsv, Output: output}

	if c.avDir == "" {
		return chain, status.ErrMissingDirectory.WithDetails("AV directory")
	}
	if c.springfieldDir == "" {
		return chain, status.ErrMissingDirectory.WithDetails("springfield directory")
	}
	group := filepath.Base(filepath.Dir(input))
	if group == "." || group == string(filepath.Separator) {
		return chain, status.ErrInvalidInput.WithDetails("%s has no group directory", input)
	}
	if _, err := bagit.Read(c.fs, input); err != nil {
		return chain, status.ErrInvalidInput.WithDetails("%s", input).Wrap(err)
	}
	doc, err := metadata.ReadDocument(c.fs, filepath.Join(input, metadata.FilesXMLPath))
	if err != nil {
		return chain, err
	}
	if err = c.fs.MkdirAll(output, 0755); err != nil {
		return chain, err
	}
	c.l.Debug("converting AV dataset", zap.String("input", input), zap.String("output", output))

	conv := &conversion{
		Converter: c,
		engine:    checksum.New(c.fs, checksum.Logger(c.l), checksum.DefaultAlgorithms(c.algorithms...)),
		doc:       doc,
		mapping:   mappingCsv,
		chain:     chain,
	}

	rev1, err := conv.revision1(ctx, input, group, filepath.Base(input))
	if err != nil {
		return chain, err
	}
	rev2, err := conv.revision2(ctx, rev1)
	if err != nil {
		return chain, err
	}
	if _, err = conv.revision3(ctx, rev1, rev2); err != nil {
		return chain, err
	}
	return chain, nil
}

func (c *conversion) revision1(ctx context.Context, input, group, name string) (model.Revision, error) {
	rev := model.Revision{
		Number: 1,
		Group:  group,
		ID:     name,
		Dir:    filepath.Join(c.chain.Output, group, name),
	}
	if err := c.copyBag(ctx, input, rev.Dir); err != nil {
		return rev, err
	}

	replacer, err := avfiles.New(rev.Dir, c.mapping, c.avDir, c.doc, group, avfiles.Fs(c.fs), avfiles.Logger(c.l))
	if err != nil {
		return rev, err
	}
	if err = replacer.Replace(ctx); err != nil {
		return rev, err
	}
	if err = c.doc.Write(c.fs, filepath.Join(rev.Dir, metadata.FilesXMLPath)); err != nil {
		return rev, err
	}
	if err = c.engine.RecomputeAll(ctx, rev.Dir); err != nil {
		return rev, err
	}
	c.done(rev)
	return rev, nil
}

func (c *conversion) revision2(ctx context.Context, previous model.Revision) (model.Revision, error) {
	rev := c.newRevision(2, previous)
	if err := c.copyBag(ctx, previous.Dir, rev.Dir); err != nil {
		return rev, err
	}

	removed, err := rights.New(rev.Dir, rights.Fs(c.fs), rights.Logger(c.l)).Prune(ctx, c.doc)
	if err != nil {
		return rev, err
	}
	rev.Removed = removed
	if err = c.doc.Write(c.fs, filepath.Join(rev.Dir, metadata.FilesXMLPath)); err != nil {
		return rev, err
	}
	if err = c.updateBagInfo(&rev, true); err != nil {
		return rev, err
	}
	if err = c.engine.RemoveEntries(ctx, rev.Dir, removed); err != nil {
		return rev, err
	}
	c.done(rev)
	return rev, nil
}

// revision3 is only created when the mapping lists streaming files for the group of the input
func (c *conversion) revision3(ctx context.Context, first, previous model.Revision) (*model.Revision, error) {
	substituter, err := streaming.New(c.mapping, c.springfieldDir, first.Group, c.doc,
		streaming.Fs(c.fs), streaming.Logger(c.l))
	if err != nil {
		return nil, err
	}
	if !substituter.HasFilesToAdd() {
		c.l.Info("no streaming files to add", zap.String("group", first.Group))
		return nil, nil
	}

	rev := c.newRevision(3, previous)
	if err = c.copyBag(ctx, previous.Dir, rev.Dir); err != nil {
		return nil, err
	}
	if rev.Added, err = substituter.Apply(ctx, rev.Dir); err != nil {
		return nil, err
	}
	if err = c.doc.Write(c.fs, filepath.Join(rev.Dir, metadata.FilesXMLPath)); err != nil {
		return nil, err
	}
	if err = c.updateBagInfo(&rev, false); err != nil {
		return nil, err
	}
	if err = c.engine.RecomputeAll(ctx, rev.Dir); err != nil {
		return nil, err
	}
	c.done(rev)
	return &rev, nil
}

func (c *conversion) newRevision(number int, previous model.Revision) model.Revision {
	group, id := c.newID(), c.newID()
	return model.Revision{
		Number:      number,
		Group:       group,
		ID:          id,
		Dir:         filepath.Join(c.chain.Output, group, id),
		IsVersionOf: previous.URN(),
	}
}

func (c *conversion) done(rev model.Revision) {
	c.chain.Add(rev)
	c.l.Info("revision created", zap.Int("revision", rev.Number), zap.String("dir", rev.Dir))
}

// copyBag copies a bag to a new directory, which must not exist
func (c *conversion) copyBag(ctx context.Context, source, target string) error {
	exists, err := afero.Exists(c.fs, target)
	if err != nil {
		return err
	}
	if exists {
		return status.ErrRevisionExists.WithDetails("%s", target)
	}
	count, size, err := storage.CopyTree(ctx, localfs.NewAt(c.fs, source), localfs.NewAt(c.fs, target), storage.NoOverWrite)
	if err != nil {
		return err
	}
	// an empty payload directory is not copied along with the files
	if err = c.fs.MkdirAll(filepath.Join(target, bagit.DataDir), 0755); err != nil {
		return err
	}
	c.l.Debug("copied bag", zap.String("from", source), zap.String("to", target),
		zap.Int("files", count), zap.String("size", units.HumanSize(float64(size))))
	return nil
}

// updateBagInfo points the revision to its predecessor. The first derived revision also inherits
// the DOI and URN of the dataset.
func (c *conversion) updateBagInfo(rev *model.Revision, addBaseIdentifiers bool) error {
	bag, err := bagit.Read(c.fs, rev.Dir)
	if err != nil {
		return err
	}
	rev.Created = c.now().Format(time.RFC3339)
	bag.Info.Replace(bagit.IsVersionOf, rev.IsVersionOf)
	bag.Info.Replace(bagit.Created, rev.Created)

	if addBaseIdentifiers {
		fields, err := metadata.BaseIdentifiers(c.fs, filepath.Join(rev.Dir, metadata.DatasetXMLPath))
		switch {
		case errors.Is(err, metadatastatus.ErrMissingDocument):
			c.l.Warn("no dataset.xml found for base identifiers", zap.String("bag", rev.Dir))
		case err != nil:
			return err
		}
		for _, f := range fields {
			bag.Info.Add(f.Key, f.Value)
			rev.BaseIdentifiers = append(rev.BaseIdentifiers, model.Identifier{Key: f.Key, Value: f.Value})
		}
	}
	return bag.WriteInfo()
}
