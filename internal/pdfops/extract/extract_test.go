package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(0, 20, fmt.Sprintf("marker-%d", i))
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
}

func TestPages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 5)

	out := filepath.Join(dir, "subset.pdf")
	res, err := Pages(src, []int{0, 2, 4}, out, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, res.PagesExtracted)
	assert.Equal(t, 3, res.PageCount)

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPagesEmptySelection(t *testing.T) {
	_, err := Pages("doc.pdf", nil, "out.pdf", testLogger())
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 3)

	res, err := Text(src, []int{1}, "", "txt", testLogger())
	require.NoError(t, err)
	assert.Contains(t, res.Text, "--- Page 2 ---")
	assert.Contains(t, res.Text, "marker-2")
	assert.NotContains(t, res.Text, "marker-1")
	assert.Equal(t, 1, res.PageCount)
	assert.Equal(t, len(res.Text), res.CharCount)
	assert.Empty(t, res.OutputPath)
}

func TestTextAllPagesMarkdown(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 2)

	out := filepath.Join(dir, "doc.md")
	res, err := Text(src, nil, out, "md", testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)
	assert.Contains(t, res.Text, "## Page 1")
	assert.Contains(t, res.Text, "## Page 2")
	assert.Equal(t, out, res.OutputPath)

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Text, string(saved))
}

func TestTextPageOutOfRange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 2)

	_, err := Text(src, []int{5}, "", "txt", testLogger())
	assert.Error(t, err)
}

func TestAllText(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 2)

	text, err := AllText(src, testLogger())
	require.NoError(t, err)
	assert.Contains(t, text, "marker-1")
	assert.Contains(t, text, "marker-2")
}

func TestImagesNoEmbeddedImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 2)

	out := filepath.Join(dir, "images")
	res, err := Images(src, out, nil, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalImages)
	assert.Equal(t, out, res.OutputDir)
}
