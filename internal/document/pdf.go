package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

func pdfText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// a broken page should not cost the rest of the document
			continue
		}

		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String(), nil
}
