// Package mapping loads the CSV file which relates file identifiers to
// their AV source file and their streaming (springfield) rendition.
package mapping

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/mapping/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Column names. Each column is also recognized by a legacy spelling.
const (
	FileIDColumn          = "easy_file_id"
	AVPathColumn          = "path_in_AV_dir"
	SpringfieldPathColumn = "path_in_springfield_dir"
)

var legacyColumns = map[string]string{
	"easy-file-id":            FileIDColumn,
	"path-in-AV-dir":          AVPathColumn,
	"path-in-springfield-dir": SpringfieldPathColumn,
}

// Record is a row of the mapping file
type Record struct {
	Line            int
	FileID          string
	AVPath          string
	SpringfieldPath string
}

// Read parses mapping records and passes them to fn, in file order.
//
// Iteration stops on the first error returned by fn.
func Read(r io.Reader, fn func(Record) error) error {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return status.ErrMissingColumn.WithDetails("empty mapping, expected a header with %s and %s", FileIDColumn, AVPathColumn)
	}
	if err != nil {
		return status.ErrInvalidMapping.Wrap(err)
	}
	columns := indexColumns(header)
	for _, required := range []string{FileIDColumn, AVPathColumn} {
		if _, ok := columns[required]; !ok {
			return status.ErrMissingColumn.WithDetails("%s", required)
		}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return status.ErrInvalidMapping.Wrap(err)
		}
		line, _ := reader.FieldPos(0)
		rec := Record{
			Line:            line,
			FileID:          strings.TrimSpace(row[columns[FileIDColumn]]),
			AVPath:          strings.TrimSpace(row[columns[AVPathColumn]]),
			SpringfieldPath: field(row, columns, SpringfieldPathColumn),
		}
		if err = fn(rec); err != nil {
			return err
		}
	}
}

// ReadFile parses the mapping file at path
func ReadFile(fs afero.Fs, path string, fn func(Record) error) error {
	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Read(f, fn)
}

// Option for loading locations
type Option func(*options)

type options struct {
	l *zap.Logger
}

// Logger for warnings about skipped rows
func Logger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

func defaultOptions(opts []Option) *options {
	o := &options{l: zap.NewNop()}
	for _, apply := range opts {
		apply(o)
	}
	return o
}

// ExternalLocations maps file identifiers to their AV source file, resolved under avRoot.
//
// Rows without an AV path are skipped. A duplicate identifier maps to its last row.
func ExternalLocations(fs afero.Fs, csvPath, avRoot string, opts ...Option) (map[string]string, error) {
	o := defaultOptions(opts)
	locations := make(map[string]string)
	err := ReadFile(fs, csvPath, func(rec Record) error {
		if rec.AVPath == "" {
			o.l.Warn("no AV path found", zap.Int("line", rec.Line), zap.String("id", rec.FileID))
			return nil
		}
		locations[rec.FileID] = filepath.Join(avRoot, rec.AVPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// StreamingLocations maps file identifiers to their streaming rendition, resolved under streamingRoot.
//
// Only rows with a streaming path and which AV path starts with group are retained.
// Every retained streaming file must exist.
func StreamingLocations(fs afero.Fs, csvPath, streamingRoot, group string, opts ...Option) (map[string]string, error) {
	o := defaultOptions(opts)
	locations := make(map[string]string)
	err := ReadFile(fs, csvPath, func(rec Record) error {
		if rec.SpringfieldPath == "" || !strings.HasPrefix(rec.AVPath, group) {
			return nil
		}
		path := filepath.Join(streamingRoot, rec.SpringfieldPath)
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return err
		}
		if !exists {
			o.l.Error("file does not exist in springfield directory",
				zap.String("group", group), zap.String("path", rec.SpringfieldPath))
			return status.ErrMissingStreamingFile.WithDetails("%s -- %s", group, rec.SpringfieldPath)
		}
		locations[rec.FileID] = path
		return nil
	})
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if canonical, ok := legacyColumns[name]; ok {
			name = canonical
		}
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}
	return columns
}

func field(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
