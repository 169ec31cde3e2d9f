package stamp

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

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

func TestHeader(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 3)

	out := filepath.Join(dir, "headed.pdf")
	res, err := Header(src, out, "Quarterly Report", Options{Align: "left"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, res.PageCount)
	assert.True(t, res.Success)
}

func TestFooterWithTokens(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 2)

	out := filepath.Join(dir, "footed.pdf")
	res, err := Footer(src, out, "Page {page} of {total}", Options{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)
}

func TestStampValidation(t *testing.T) {
	logger := testLogger()

	_, err := Header("in.pdf", "out.pdf", "", Options{}, logger)
	assert.Error(t, err, "empty text")

	_, err = Footer("in.pdf", "out.pdf", "x", Options{Align: "justified"}, logger)
	assert.Error(t, err, "unknown alignment")
}

func TestExpandTokens(t *testing.T) {
	assert.Equal(t, "Page %p of %P", expandTokens("Page {page} of {total}"))

	today := time.Now().Format("2006-01-02")
	got := expandTokens("printed {date}")
	assert.True(t, strings.HasPrefix(got, "printed "))
	assert.Contains(t, got, today)

	assert.Equal(t, "plain", expandTokens("plain"))
}
