package contacts

import (
	"fmt"
	"io"
	"strings"

	"phone_standardizer/platform/apperr"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewDecoder returns a transformer that decodes the named charset to UTF-8.
// Labels follow the WHATWG encoding standard ("utf-8", "windows-1252",
// "iso-8859-1", "utf-16le", ...). A byte order mark, when present, overrides
// the label and is removed. Invalid UTF-8 is rejected rather than replaced.
func NewDecoder(label string) (transform.Transformer, error) {
	name := strings.ToLower(strings.TrimSpace(label))
	if name == "" {
		name = "utf-8"
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("unsupported input encoding %q", label), err)
	}

	if enc == unicode.UTF8 {
		return unicode.BOMOverride(encoding.UTF8Validator), nil
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

// DecodeReader wraps r with the decoder for label.
func DecodeReader(r io.Reader, label string) (io.Reader, error) {
	dec, err := NewDecoder(label)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, dec), nil
}
