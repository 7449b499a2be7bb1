package metadata

import (
	"os"
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/metadata/status"
	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

const idTypePrefix = "id-type:"

var baseKeys = map[string]string{
	"DOI": bagit.BaseDOI,
	"URN": bagit.BaseURN,
}

// BaseIdentifiers returns the DOI and URN identifiers of a dataset.xml document, as bag-info fields.
//
// Only the dct:identifier elements under ddm:dcmiMetadata are considered, in document order.
func BaseIdentifiers(fs afero.Fs, path string) ([]bagit.Field, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.ErrMissingDocument.WithDetails("%s", path).Wrap(err)
		}
		return nil, err
	}
	doc := etree.NewDocument()
	if err = doc.ReadFromBytes(content); err != nil {
		return nil, status.ErrInvalidDocument.WithDetails("%s", path).Wrap(err)
	}

	dcmi := doc.FindElement("//ddm:dcmiMetadata")
	if dcmi == nil {
		return nil, nil
	}
	var fields []bagit.Field
	for _, id := range dcmi.FindElements(".//dct:identifier") {
		idType := strings.TrimPrefix(id.SelectAttrValue("xsi:type", ""), idTypePrefix)
		key, ok := baseKeys[idType]
		if !ok {
			continue
		}
		fields = append(fields, bagit.Field{Key: key, Value: strings.TrimSpace(id.Text())})
	}
	return fields, nil
}
