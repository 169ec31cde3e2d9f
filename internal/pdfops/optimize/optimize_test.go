package optimize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

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
		pdf.Cell(0, 20, fmt.Sprintf("page %d", i))
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
}

func TestCompress(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 5)

	for _, quality := range []string{"low", "medium", "high"} {
		out := filepath.Join(dir, quality+".pdf")
		res, err := Compress(src, out, quality, testLogger())
		require.NoError(t, err, quality)
		assert.True(t, res.Success)
		assert.Positive(t, res.OriginalSize)
		assert.Positive(t, res.CompressedSize)
		assert.NotEmpty(t, res.SizeHuman)
	}
}

func TestCompressInvalidQuality(t *testing.T) {
	_, err := Compress("in.pdf", "out.pdf", "ultra", testLogger())
	assert.Error(t, err)
}

func TestRepair(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 3)

	out := filepath.Join(dir, "repaired.pdf")
	res, err := Repair(src, out, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, res.PageCount)
	assert.True(t, res.Success)
}

func TestRepairUnreadable(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf"), 0o644))

	_, err := Repair(bad, filepath.Join(dir, "out.pdf"), testLogger())
	assert.Error(t, err)
}
