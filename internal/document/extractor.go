// Package document turns uploaded files into plain text. Extraction never
// fails loudly: any problem is logged and yields an empty string.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	PDF  = ".pdf"
	DOCX = ".docx"
	TXT  = ".txt"
)

// ErrUnsupported is returned for file types without a decoder.
var ErrUnsupported = errors.New("unsupported document type")

// Extractor decodes PDF, DOCX and plain-text documents.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Supported reports whether ext (with or without the leading dot) has a decoder.
func Supported(ext string) bool {
	switch normalizeExt(ext) {
	case PDF, DOCX, TXT:
		return true
	default:
		return false
	}
}

// Extensions lists the supported extensions.
func Extensions() []string {
	return []string{PDF, DOCX, TXT}
}

// Text decodes data according to ext. The result is empty when the type is
// unsupported or decoding fails.
func (e *Extractor) Text(data []byte, ext string) string {
	text, err := Extract(data, ext)
	if err != nil {
		e.logger.Warn("could not extract document text",
			zap.String("extension", ext),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		return ""
	}
	return text
}

// ReadFile reads path and decodes it by its extension.
func (e *Extractor) ReadFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("could not read document", zap.String("path", path), zap.Error(err))
		return ""
	}
	return e.Text(data, filepath.Ext(path))
}

// Extract decodes data according to ext and reports why it could not.
func Extract(data []byte, ext string) (text string, err error) {
	ext = normalizeExt(ext)

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%s decoder panicked: %v", ext, r)
		}
	}()

	switch ext {
	case PDF:
		return pdfText(bytes.NewReader(data), int64(len(data)))
	case DOCX:
		return docxText(bytes.NewReader(data), int64(len(data)))
	case TXT:
		return plainText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
