package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xyz")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	_, err := Parse(path)
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParsePDF_InvalidBytes(t *testing.T) {
	_, err := ParsePDF([]byte("this is not a pdf document"))
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParse_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	content := "NIT Uttarakhand was established in 2009. Budget was €5 million."
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "notes", doc.Title)
	assert.Equal(t, 1, doc.Pages)
	assert.Contains(t, doc.Text, "NIT Uttarakhand was established in 2009.")
	assert.NotContains(t, doc.Text, "€")
	assert.Equal(t, []byte(content), doc.Raw)
}

func TestParse_Markdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readme.md")
	content := "# Heading\n\nSome *emphasis* text.\n\n- first item\n- second item\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := Parse(path)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "Heading")
	assert.Contains(t, doc.Text, "Some emphasis text.")
	assert.Contains(t, doc.Text, "first item")
	assert.NotContains(t, doc.Text, "#")
	assert.NotContains(t, doc.Text, "*")
}

func TestDocument_Words(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("one two  three\nfour"), 0o644))

	doc, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 4, doc.Words())
}
