package split

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
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
		pdf.Cell(0, 20, fmt.Sprintf("page %d", i))
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	require.NoError(t, err)
	return n
}

func TestByPagesConsecutive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 10)

	res, err := ByPages(src, dir, []int{1, 2, 3}, "", testLogger())
	require.NoError(t, err)
	require.Len(t, res.OutputFiles, 1)
	assert.Equal(t, "doc_pages_2-4.pdf", filepath.Base(res.OutputFiles[0]))
	assert.Equal(t, 3, pageCount(t, res.OutputFiles[0]))
}

func TestByPagesGrouped(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 10)

	// 1-3 and 8-9 in one-based terms.
	res, err := ByPages(src, dir, []int{0, 1, 2, 7, 8}, "", testLogger())
	require.NoError(t, err)
	require.Len(t, res.OutputFiles, 2)
	assert.Equal(t, "doc_pages_1-3.pdf", filepath.Base(res.OutputFiles[0]))
	assert.Equal(t, "doc_pages_8-9.pdf", filepath.Base(res.OutputFiles[1]))
	assert.Equal(t, 3, pageCount(t, res.OutputFiles[0]))
	assert.Equal(t, 2, pageCount(t, res.OutputFiles[1]))
}

func TestByPagesEmpty(t *testing.T) {
	_, err := ByPages("doc.pdf", t.TempDir(), nil, "", testLogger())
	assert.Error(t, err)
}

func TestByChunks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 10)

	chunks, err := pagerange.ParseChunks("1-3,5,2-4", 10)
	require.NoError(t, err)

	res, err := ByChunks(src, dir, chunks, "", testLogger())
	require.NoError(t, err)
	require.Len(t, res.OutputFiles, 3)
	assert.Equal(t, "doc_chunk_001_pages_1-3.pdf", filepath.Base(res.OutputFiles[0]))
	assert.Equal(t, "doc_chunk_002_page_5.pdf", filepath.Base(res.OutputFiles[1]))
	assert.Equal(t, "doc_chunk_003_pages_2-4.pdf", filepath.Base(res.OutputFiles[2]))
	assert.Equal(t, 3, pageCount(t, res.OutputFiles[0]))
	assert.Equal(t, 1, pageCount(t, res.OutputFiles[1]))
	assert.Equal(t, 3, pageCount(t, res.OutputFiles[2]))
}

func TestSinglePages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 4)

	out := filepath.Join(dir, "out")
	res, err := SinglePages(src, out, "x_", testLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalOutput)
	assert.Equal(t, "x_doc_page_001.pdf", filepath.Base(res.OutputFiles[0]))
	assert.Equal(t, "x_doc_page_004.pdf", filepath.Base(res.OutputFiles[3]))
	for _, f := range res.OutputFiles {
		assert.Equal(t, 1, pageCount(t, f))
	}
}

func TestByCount(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 7)

	res, err := ByCount(src, dir, 3, "", testLogger())
	require.NoError(t, err)
	require.Len(t, res.OutputFiles, 3)
	assert.Equal(t, "doc_part_001_pages_1-3.pdf", filepath.Base(res.OutputFiles[0]))
	assert.Equal(t, "doc_part_002_pages_4-6.pdf", filepath.Base(res.OutputFiles[1]))
	assert.Equal(t, "doc_part_003_pages_7-7.pdf", filepath.Base(res.OutputFiles[2]))
	assert.Equal(t, 1, pageCount(t, res.OutputFiles[2]))
}

func TestByCountInvalid(t *testing.T) {
	_, err := ByCount("doc.pdf", t.TempDir(), 0, "", testLogger())
	assert.Error(t, err)
}

func TestBySize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 6)

	// A generous limit keeps everything in one part.
	res, err := BySize(src, dir, 100, "", testLogger())
	require.NoError(t, err)
	require.Len(t, res.OutputFiles, 1)
	assert.Equal(t, 6, pageCount(t, res.OutputFiles[0]))
}

func TestBySizeInvalid(t *testing.T) {
	_, err := BySize("doc.pdf", t.TempDir(), 0, "", testLogger())
	assert.Error(t, err)
}
