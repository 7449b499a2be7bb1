package metadata

import (
	"io"
	"os"
	"path/filepath"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/metadata/status"
	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

// Locations of the metadata documents, relative to the bag root
const (
	FilesXMLPath   = "metadata/files.xml"
	DatasetXMLPath = "metadata/dataset.xml"

	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	indent         = 2
)

// Document is a files.xml document: a root "files" element with "file" children
type Document struct {
	doc *etree.Document
}

// ParseDocument reads a files.xml document
func ParseDocument(r io.Reader) (*Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, status.ErrInvalidDocument.Wrap(err)
	}
	if doc.Root() == nil {
		return nil, status.ErrInvalidDocument.WithDetails("no root element")
	}
	return &Document{doc: doc}, nil
}

// ReadDocument reads a files.xml document from a file
func ReadDocument(fs afero.Fs, path string) (*Document, error) {
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.ErrMissingDocument.WithDetails("%s", path).Wrap(err)
		}
		return nil, err
	}
	defer f.Close()

	d, err := ParseDocument(f)
	if err != nil {
		return nil, status.ErrInvalidDocument.WithDetails("%s", path).Wrap(err)
	}
	return d, nil
}

// WriteTo serializes the document with 2 spaces indentation
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var written int64
	if !d.hasDeclaration() {
		n, err := io.WriteString(w, xmlDeclaration)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	d.doc.Indent(indent)
	n, err := d.doc.WriteTo(w)
	return written + n, err
}

// Write saves the document to a file, replacing any previous content
func (d *Document) Write(fs afero.Fs, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return status.ErrWriteDocument.WithDetails("%s", path).Wrap(err)
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return status.ErrWriteDocument.WithDetails("%s", path).Wrap(err)
	}
	if _, err = d.WriteTo(f); err != nil {
		_ = f.Close()
		return status.ErrWriteDocument.WithDetails("%s", path).Wrap(err)
	}
	if err = f.Close(); err != nil {
		return status.ErrWriteDocument.WithDetails("%s", path).Wrap(err)
	}
	return nil
}

// Files returns a snapshot of all "file" elements, in document order.
//
// Removing or appending entries does not affect a snapshot taken before.
func (d *Document) Files() []*FileEntry {
	elements := d.doc.FindElements("//file")
	entries := make([]*FileEntry, 0, len(elements))
	for _, el := range elements {
		entries = append(entries, &FileEntry{el: el})
	}
	return entries
}

// FindByIdentifier returns the first file entry with the given dct:identifier
func (d *Document) FindByIdentifier(id string) (*FileEntry, bool) {
	for _, f := range d.Files() {
		if fid, ok := f.Identifier(); ok && fid == id {
			return f, true
		}
	}
	return nil, false
}

// Remove a file entry from the document. It returns false if the entry was detached already.
func (d *Document) Remove(f *FileEntry) bool {
	parent := f.el.Parent()
	if parent == nil {
		return false
	}
	return parent.RemoveChild(f.el) != nil
}

// AppendFile adds a new "file" element to the file list, with a filepath attribute
// and deep copies of the given elements.
func (d *Document) AppendFile(path string, children ...*etree.Element) *FileEntry {
	el := etree.NewElement("file")
	el.CreateAttr(filepathAttr, path)
	for _, c := range children {
		if c != nil {
			el.AddChild(c.Copy())
		}
	}
	d.filesElement().AddChild(el)
	return &FileEntry{el: el}
}

func (d *Document) filesElement() *etree.Element {
	root := d.doc.Root()
	if root.Tag == "files" {
		return root
	}
	if el := root.FindElement(".//files"); el != nil {
		return el
	}
	return root
}

func (d *Document) hasDeclaration() bool {
	for _, t := range d.doc.Child {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			return true
		}
	}
	return false
}
