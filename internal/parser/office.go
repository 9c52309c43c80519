package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"pdfchat/internal/models"
)

func parseDOCX(filePath string) (*models.Document, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ParseError{Source: filePath, Err: err}
	}
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, &ParseError{Source: filePath, Err: err}
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var text strings.Builder
	for _, paragraph := range strings.Split(content, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		text.WriteString(paragraph)
		text.WriteString("\n")
	}

	return &models.Document{
		Title: titleFromPath(filePath),
		Pages: 1, // DOCX carries no page boundaries
		Raw:   raw,
		Text:  Clean(text.String()),
	}, nil
}

func parseXLSX(filePath string) (*models.Document, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ParseError{Source: filePath, Err: err}
	}
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, &ParseError{Source: filePath, Err: err}
	}

	var text strings.Builder
	for _, sheet := range f.Sheets {
		text.WriteString(fmt.Sprintf("Sheet %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String())
				text.WriteString("\t")
			}
			text.WriteString("\n")
		}
	}

	return &models.Document{
		Title: titleFromPath(filePath),
		Pages: len(f.Sheets), // one "page" per sheet
		Raw:   raw,
		Text:  Clean(text.String()),
	}, nil
}

func parseODS(filePath string) (*models.Document, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ParseError{Source: filePath, Err: err}
	}
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, &ParseError{Source: filePath, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var text strings.Builder
	for _, sheetName := range sheets {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(fmt.Sprintf("Sheet %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell)
				text.WriteString("\t")
			}
			text.WriteString("\n")
		}
	}

	return &models.Document{
		Title: titleFromPath(filePath),
		Pages: len(sheets),
		Raw:   raw,
		Text:  Clean(text.String()),
	}, nil
}

func parseText(filePath string) (*models.Document, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ParseError{Source: filePath, Err: err}
	}
	return &models.Document{
		Title: titleFromPath(filePath),
		Pages: 1,
		Raw:   raw,
		Text:  Clean(string(raw)),
	}, nil
}

func titleFromPath(filePath string) string {
	base := filepath.Base(filePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return defaultTitle
	}
	return name
}
