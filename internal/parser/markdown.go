package parser

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"pdfchat/internal/models"
)

func parseMarkdown(filePath string) (*models.Document, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ParseError{Source: filePath, Err: err}
	}
	return &models.Document{
		Title: titleFromPath(filePath),
		Pages: 1,
		Raw:   raw,
		Text:  Clean(flattenMarkdown(raw)),
	}, nil
}

// flattenMarkdown walks the goldmark AST and keeps only the text content,
// with a blank line between blocks so paragraph boundaries survive for the
// chunker.
func flattenMarkdown(source []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(source))

	var text strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			if text.Len() > 0 {
				text.WriteString("\n\n")
			}
		case *ast.Text:
			text.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				text.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	return text.String()
}
