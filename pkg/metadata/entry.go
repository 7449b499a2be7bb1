package metadata

import (
	"strings"

	"github.com/beevik/etree"
)

const (
	filepathAttr = "filepath"
	identifier   = ".//dct:identifier"
	source       = ".//dct:source"

	// AccessibleToRights is the element holding the access category of a file
	AccessibleToRights = "accessibleToRights"

	// VisibleToRights is the element holding the visibility category of a file
	VisibleToRights = "visibleToRights"

	// RightsNone is the rights category of files that nobody may see nor access
	RightsNone = "NONE"
)

// FileEntry is a "file" element of files.xml
type FileEntry struct {
	el *etree.Element
}

// Identifier is the text of the dct:identifier descendant, if any
func (f *FileEntry) Identifier() (string, bool) {
	el := f.el.FindElement(identifier)
	if el == nil {
		return "", false
	}
	return strings.TrimSpace(el.Text()), true
}

// Filepath is the path of the file relative to the bag root, if any
func (f *FileEntry) Filepath() (string, bool) {
	p := f.el.SelectAttrValue(filepathAttr, "")
	return p, p != ""
}

// IsExternal tells if the entry carries a dct:source marker: its payload is a placeholder for an external file
func (f *FileEntry) IsExternal() bool {
	return f.el.FindElement(source) != nil
}

// Rights returns the text of the rights element with the given tag, if any
func (f *FileEntry) Rights(tag string) (string, bool) {
	el := f.rightsElement(tag)
	if el == nil {
		return "", false
	}
	return strings.TrimSpace(el.Text()), true
}

// IsNoneNone tells if nobody may either access or see the file.
//
// A missing rights element counts as NONE.
func (f *FileEntry) IsNoneNone() bool {
	return f.isNone(AccessibleToRights) && f.isNone(VisibleToRights)
}

// RightsElements returns the rights elements of the entry, accessibility first
func (f *FileEntry) RightsElements() []*etree.Element {
	var res []*etree.Element
	for _, tag := range []string{AccessibleToRights, VisibleToRights} {
		if el := f.rightsElement(tag); el != nil {
			res = append(res, el)
		}
	}
	return res
}

// String serializes the element
func (f *FileEntry) String() string {
	doc := etree.NewDocument()
	doc.SetRoot(f.el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return err.Error()
	}
	return s
}

func (f *FileEntry) isNone(tag string) bool {
	v, ok := f.Rights(tag)
	return !ok || v == RightsNone
}

func (f *FileEntry) rightsElement(tag string) *etree.Element {
	return f.el.FindElement(".//" + tag)
}
