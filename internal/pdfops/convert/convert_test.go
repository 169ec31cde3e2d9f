package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
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

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 128, B: 64, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestToImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 3)

	out := filepath.Join(dir, "images")
	res, err := ToImages(src, out, "png", 72, nil, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalImages)
	assert.Equal(t, "doc_page_001.png", filepath.Base(res.OutputFiles[0]))

	f, err := os.Open(res.OutputFiles[0])
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Positive(t, cfg.Width)
}

func TestToImagesPageSubset(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 4)

	res, err := ToImages(src, filepath.Join(dir, "images"), "jpg", 72, []int{1, 3}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalImages)
	assert.Equal(t, "doc_page_002.jpg", filepath.Base(res.OutputFiles[0]))
	assert.Equal(t, "doc_page_004.jpg", filepath.Base(res.OutputFiles[1]))
}

func TestToImagesBadFormat(t *testing.T) {
	_, err := ToImages("doc.pdf", t.TempDir(), "webp", 150, nil, testLogger())
	assert.Error(t, err)
}

func TestFromImages(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 200, 300)
	writeTestPNG(t, b, 400, 150)

	out := filepath.Join(dir, "album.pdf")
	res, err := FromImages([]string{a, b}, out, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFromImagesEmpty(t *testing.T) {
	_, err := FromImages(nil, "out.pdf", testLogger())
	assert.Error(t, err)
}

func TestToMarkdown(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 2)

	out := filepath.Join(dir, "doc.md")
	res, err := ToMarkdown(src, out, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Page 1")
	assert.Contains(t, string(data), "marker-2")
}

func TestToHTML(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 2)

	out := filepath.Join(dir, "doc.html")
	res, err := ToHTML(src, out, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `id="page-1"`)
	assert.Contains(t, html, `id="page-2"`)
}
