package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdfchat/internal/models"
)

const defaultTitle = "Unknown"

// ParseError means the input could not be read as a document. Fatal to the
// upload; nothing partial is returned.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse extracts the cleaned text and metadata of a document file. The
// format is picked by extension; PDF is the primary path.
func Parse(filePath string) (*models.Document, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, &ParseError{Source: filePath, Err: err}
		}
		return ParsePDF(raw)
	case ".docx":
		return parseDOCX(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	case ".ods":
		return parseODS(filePath)
	case ".md", ".markdown":
		return parseMarkdown(filePath)
	case ".txt":
		return parseText(filePath)
	default:
		return nil, &ParseError{Source: filePath, Err: fmt.Errorf("unsupported file format: %s", ext)}
	}
}
