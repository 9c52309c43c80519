package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfchat/internal/models"
)

// ParsePDF extracts the plain text of every page, in page order, from a raw
// PDF byte stream and applies the cleaning filter to the concatenation.
func ParsePDF(raw []byte) (*models.Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, &ParseError{Source: "pdf", Err: err}
	}

	numPages := reader.NumPage()
	var text strings.Builder
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &ParseError{Source: fmt.Sprintf("pdf page %d", i), Err: err}
		}
		text.WriteString(pageText)
	}

	return &models.Document{
		Title: pdfTitle(reader),
		Pages: numPages,
		Raw:   raw,
		Text:  Clean(text.String()),
	}, nil
}

func pdfTitle(reader *pdf.Reader) string {
	info := reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return defaultTitle
	}
	title := info.Key("Title")
	if title.Kind() != pdf.String {
		return defaultTitle
	}
	if s := strings.TrimSpace(title.Text()); s != "" {
		return s
	}
	return defaultTitle
}
