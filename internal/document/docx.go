package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

var errNoDocumentBody = errors.New("docx: word/document.xml not found")

// docxText returns the paragraph text of the main document part, one paragraph per line.
func docxText(r io.ReaderAt, size int64) (string, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX container: %w", err)
	}

	for _, f := range archive.File {
		if f.Name != docxBody {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", docxBody, err)
		}
		defer rc.Close()

		return paragraphs(rc)
	}

	return "", errNoDocumentBody
}

func paragraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		lines  []string
		line   strings.Builder
		inText bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", docxBody, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			case "br", "cr":
				line.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				lines = append(lines, line.String())
				line.Reset()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}

	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n"), nil
}
