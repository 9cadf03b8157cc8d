package document

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	utf16LE = []byte{0xFF, 0xFE}
	utf16BE = []byte{0xFE, 0xFF}
)

// plainText decodes UTF-8, honouring a UTF-8 or UTF-16 byte order mark.
// Input that is not valid UTF-8 and carries no UTF-16 mark is read as Windows-1252.
func plainText(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if !bytes.HasPrefix(data, utf16LE) && !bytes.HasPrefix(data, utf16BE) && !utf8.Valid(data) {
		decoder = charmap.Windows1252.NewDecoder()
	}

	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}

	return string(out), nil
}
