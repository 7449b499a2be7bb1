package bagit

import (
	"strings"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit/status"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding for tag files
const DefaultEncoding = "UTF-8"

func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" || strings.EqualFold(name, DefaultEncoding) {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, status.ErrUnsupportedEncoding.WithDetails("%q", name).Wrap(err)
	}
	if enc == nil {
		return nil, status.ErrUnsupportedEncoding.WithDetails("%q", name)
	}
	return enc, nil
}

func decode(enc encoding.Encoding, b []byte) ([]byte, error) {
	d, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return nil, err
	}
	// a leading byte order mark is not part of the content
	return []byte(strings.TrimPrefix(string(d), "\ufeff")), nil
}

func encode(enc encoding.Encoding, b []byte) ([]byte, error) {
	return enc.NewEncoder().Bytes(b)
}
