package paper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText pulls plain text from a PDF draft so it can be fed to the
// section parser. Page breaks become blank lines; layout beyond reading
// order is not preserved.
func ExtractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	totalPages := reader.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n\n")
	}

	out := strings.TrimSpace(buf.String())
	if out == "" {
		return "", fmt.Errorf("PDF %s contains no extractable text", path)
	}
	return out, nil
}
