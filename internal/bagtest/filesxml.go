package bagtest

import (
	"fmt"
	"strings"
)

// FileXML describes a "file" element of files.xml
type FileXML struct {
	Path       string
	ID         string
	External   bool
	Accessible string
	Visible    string
}

// FilesXML renders a files.xml document
func FilesXML(files ...FileXML) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<files xmlns="http://easy.dans.knaw.nl/schemas/bag/metadata/files/" xmlns:dct="http://purl.org/dc/terms/">` + "\n")
	for _, f := range files {
		if f.Path != "" {
			fmt.Fprintf(&b, "    <file filepath=%q>\n", f.Path)
		} else {
			b.WriteString("    <file>\n")
		}
		if f.ID != "" {
			fmt.Fprintf(&b, "        <dct:identifier>%s</dct:identifier>\n", f.ID)
		}
		if f.External {
			fmt.Fprintf(&b, "        <dct:source>https://example.org/%s</dct:source>\n", f.ID)
		}
		if f.Accessible != "" {
			fmt.Fprintf(&b, "        <accessibleToRights>%s</accessibleToRights>\n", f.Accessible)
		}
		if f.Visible != "" {
			fmt.Fprintf(&b, "        <visibleToRights>%s</visibleToRights>\n", f.Visible)
		}
		b.WriteString("    </file>\n")
	}
	b.WriteString("</files>\n")
	return []byte(b.String())
}

// DatasetXML renders a dataset.xml document with the given DOI and URN identifiers
func DatasetXML(doi, urn string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<ddm:DDM xmlns:ddm="http://schemas.dans.knaw.nl/dataset/ddm-v2/" xmlns:dct="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:id-type="http://easy.dans.knaw.nl/schemas/vocab/identifier-type/">
    <ddm:dcmiMetadata>
        <dct:identifier xsi:type="id-type:DOI">%s</dct:identifier>
        <dct:identifier xsi:type="id-type:URN">%s</dct:identifier>
    </ddm:dcmiMetadata>
</ddm:DDM>
`, doi, urn))
}
