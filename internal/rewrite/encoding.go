package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUndecodable reports file content that is not valid text in the
// encoding it was detected as.
var ErrUndecodable = errors.New("content is not valid text")

const (
	EncodingUTF8    = "utf-8"
	EncodingUTF16LE = "utf-16le"
	EncodingUTF16BE = "utf-16be"
)

type EncodingResult struct {
	Encoding string
	HasBOM   bool
}

func (e EncodingResult) String() string {
	if e.HasBOM {
		return e.Encoding + " (bom)"
	}
	return e.Encoding
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding looks only at the byte order mark. Anything without one is
// treated as UTF-8.
func DetectEncoding(data []byte) EncodingResult {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingResult{Encoding: EncodingUTF8, HasBOM: true}
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingResult{Encoding: EncodingUTF16LE, HasBOM: true}
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingResult{Encoding: EncodingUTF16BE, HasBOM: true}
	default:
		return EncodingResult{Encoding: EncodingUTF8}
	}
}

func (e EncodingResult) codec() encoding.Encoding {
	switch e.Encoding {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		if e.HasBOM {
			return unicode.UTF8BOM
		}
		return nil
	}
}

// Decode returns data as UTF-8 text with any BOM removed.
func Decode(data []byte) (string, EncodingResult, error) {
	detected := DetectEncoding(data)

	switch detected.Encoding {
	case EncodingUTF8:
		body := data
		if detected.HasBOM {
			body = data[len(bomUTF8):]
		}
		if !utf8.Valid(body) {
			return "", detected, fmt.Errorf("%w: invalid utf-8", ErrUndecodable)
		}
		return string(body), detected, nil

	case EncodingUTF16LE, EncodingUTF16BE:
		if len(data)%2 != 0 {
			return "", detected, fmt.Errorf("%w: odd length %s", ErrUndecodable, detected.Encoding)
		}
		codec := detected.codec()
		text, _, err := transform.Bytes(codec.NewDecoder(), data)
		if err != nil {
			return "", detected, fmt.Errorf("%w: %v", ErrUndecodable, err)
		}
		// The decoder maps unpaired surrogates to U+FFFD without failing, so
		// only text that encodes back to the same bytes is accepted.
		back, _, err := transform.Bytes(codec.NewEncoder(), text)
		if err != nil || !bytes.Equal(back, data) {
			return "", detected, fmt.Errorf("%w: unpaired surrogate in %s", ErrUndecodable, detected.Encoding)
		}
		return string(text), detected, nil
	}

	return "", detected, fmt.Errorf("%w: unsupported encoding %s", ErrUndecodable, detected.Encoding)
}

// Encode converts text back into the encoding it was read from.
func Encode(text string, enc EncodingResult) ([]byte, error) {
	codec := enc.codec()
	if codec == nil {
		return []byte(text), nil
	}

	out, _, err := transform.Bytes(codec.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", enc, err)
	}
	return out, nil
}
