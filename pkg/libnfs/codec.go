package libnfs

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultCodec is used by text-mode handles when no codec is given.
var DefaultCodec encoding.Encoding = unicode.UTF8

// LookupCodec returns the encoding registered under an IANA name such as
// "utf-8", "iso-8859-1" or "shift_jis".
func LookupCodec(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown codec %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("codec %q is not supported", name)
	}
	return enc, nil
}

func encodeText(codec encoding.Encoding, s string) ([]byte, error) {
	if codec == nil {
		return []byte(s), nil
	}
	return codec.NewEncoder().Bytes([]byte(s))
}

func decodeText(codec encoding.Encoding, b []byte) (string, error) {
	if codec == nil {
		return string(b), nil
	}
	out, err := codec.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
