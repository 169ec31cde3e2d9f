package merge

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
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

// writeTestPDF generates a PDF with the given number of labelled pages.
func writeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(0, 20, fmt.Sprintf("%s page %d", filepath.Base(path), i))
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
}

// writeGarbage writes a file with a .pdf extension that no reader can parse.
func writeGarbage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all"), 0o644))
}

// corruptCreationDate overwrites the digits of the document's creation date
// in place. Byte offsets stay intact so the xref table still resolves and
// page-level readers keep working, but the info dictionary no longer passes
// strict validation.
func corruptCreationDate(t *testing.T, path string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	i := bytes.Index(raw, []byte("(D:"))
	require.NotEqual(t, -1, i, "fixture carries no creation date")
	for j := i + 3; j < len(raw) && raw[j] != ')'; j++ {
		raw[j] = 'x'
	}
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func TestMergeThreeValidInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	c := filepath.Join(dir, "c.pdf")
	writeTestPDF(t, a, 2)
	writeTestPDF(t, b, 3)
	writeTestPDF(t, c, 4)

	out := filepath.Join(dir, "merged.pdf")
	res, err := Merge([]string{a, b, c}, out, Options{Bookmark: true, AutoRepair: true}, testLogger())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, out, res.OutputPath)
	assert.Equal(t, 3, res.TotalFiles)
	assert.Equal(t, 3, res.MergedFiles)
	assert.Equal(t, 9, res.TotalPages)
	assert.Empty(t, res.FailedFiles)

	pages, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 9, pages)
}

func TestMergeSkipsUnreadableInput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	bad := filepath.Join(dir, "bad.pdf")
	c := filepath.Join(dir, "c.pdf")
	writeTestPDF(t, a, 2)
	writeGarbage(t, bad)
	writeTestPDF(t, c, 1)

	out := filepath.Join(dir, "merged.pdf")
	res, err := Merge([]string{a, bad, c}, out, Options{AutoRepair: true, SkipErrors: true}, testLogger())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 3, res.TotalFiles)
	assert.Equal(t, 2, res.MergedFiles)
	require.Len(t, res.FailedFiles, 1)
	assert.Equal(t, bad, res.FailedFiles[0].Path)
	assert.Equal(t, res.TotalFiles, res.MergedFiles+len(res.FailedFiles))
	assert.Equal(t, 3, res.TotalPages)
}

func TestMergeStrictModeWritesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	bad := filepath.Join(dir, "bad.pdf")
	writeTestPDF(t, a, 2)
	writeGarbage(t, bad)

	out := filepath.Join(dir, "merged.pdf")
	_, err := Merge([]string{a, bad}, out, Options{AutoRepair: true, SkipErrors: false}, testLogger())
	require.Error(t, err)

	var mf *MergeFailedError
	require.ErrorAs(t, err, &mf)

	// A non-skippable failure in the standard tier still falls through to
	// reconstruction; only after that tier does the job fail for good.
	require.Len(t, mf.Tiers, 3)
	assert.Equal(t, "lenient", mf.Tiers[0].Strategy)
	assert.Equal(t, "standard", mf.Tiers[1].Strategy)
	assert.Equal(t, "reconstruct", mf.Tiers[2].Strategy)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file may be written on a hard failure")
}

func TestMergeNoValidFiles(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "merged.pdf")

	_, err := Merge([]string{filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "also-missing.pdf")}, out, Options{}, testLogger())
	assert.ErrorIs(t, err, ErrNoValidFiles)

	// Non-PDF extensions are filtered out too.
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	_, err = Merge([]string{txt}, out, Options{}, testLogger())
	assert.ErrorIs(t, err, ErrNoValidFiles)
}

func TestMergePreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "zzz.pdf")
	second := filepath.Join(dir, "aaa.pdf")
	writeTestPDF(t, first, 1)
	writeTestPDF(t, second, 2)

	out := filepath.Join(dir, "merged.pdf")
	res, err := Merge([]string{first, second}, out, Options{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalPages)
}

func TestMergeDir(t *testing.T) {
	dir := t.TempDir()
	writeTestPDF(t, filepath.Join(dir, "b.pdf"), 1)
	writeTestPDF(t, filepath.Join(dir, "a.pdf"), 2)

	out := filepath.Join(t.TempDir(), "merged.pdf")
	res, err := MergeDir(dir, out, "", true, Options{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.MergedFiles)
	assert.Equal(t, 3, res.TotalPages)
}

func TestMergeDirEmpty(t *testing.T) {
	out := filepath.Join(t.TempDir(), "merged.pdf")
	_, err := MergeDir(t.TempDir(), out, "", true, Options{}, testLogger())
	assert.ErrorIs(t, err, ErrNoValidFiles)
}

func TestInterleave(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writeTestPDF(t, a, 3)
	writeTestPDF(t, b, 1)

	out := filepath.Join(dir, "interleaved.pdf")
	res, err := Interleave(a, b, out, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalPages)

	pages, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 4, pages)
}

func TestStandardTierRepairsDamagedInput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writeTestPDF(t, a, 2)
	writeTestPDF(t, b, 3)
	corruptCreationDate(t, b)

	// The damaged file must fail the strict probe, or no repair happens.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationStrict
	require.Error(t, api.ValidateFile(b, conf))

	out := filepath.Join(dir, "merged.pdf")
	res, err := (&strictStrategy{}).merge([]string{a, b}, out, Options{AutoRepair: true}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "standard", res.Strategy)
	assert.Equal(t, 2, res.MergedFiles)
	assert.Equal(t, 1, res.RepairedFiles)
	assert.Equal(t, 5, res.TotalPages)
	assert.Empty(t, res.FailedFiles)

	pages, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 5, pages)
}

func TestStandardTierLedgersFailureWithoutRepair(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writeTestPDF(t, a, 2)
	writeTestPDF(t, b, 3)
	corruptCreationDate(t, b)

	out := filepath.Join(dir, "merged.pdf")
	res, err := (&strictStrategy{}).merge([]string{a, b}, out, Options{AutoRepair: false, SkipErrors: true}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, res.MergedFiles)
	assert.Zero(t, res.RepairedFiles)
	require.Len(t, res.FailedFiles, 1)
	assert.Equal(t, b, res.FailedFiles[0].Path)
	assert.Equal(t, 2, res.TotalPages)
}

func TestStandardTierAbortsWithoutRepairInStrictMode(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writeTestPDF(t, a, 2)
	writeTestPDF(t, b, 1)
	corruptCreationDate(t, b)

	out := filepath.Join(dir, "merged.pdf")
	_, err := (&strictStrategy{}).merge([]string{a, b}, out, Options{AutoRepair: false, SkipErrors: false}, testLogger())
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "partial output must be discarded on abort")
}

func TestInterleaveRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	writeTestPDF(t, a, 1)
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))

	out := filepath.Join(dir, "interleaved.pdf")
	_, err := Interleave(a, notes, out, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF file")
	assert.Contains(t, err.Error(), notes)
}

func TestRebuildToTemp(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, src, 2)

	rebuilt, err := rebuildToTemp(src)
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tempDirOf(rebuilt)) }()

	// Base name is preserved so bookmark titles derived from it match.
	assert.Equal(t, "doc.pdf", filepath.Base(rebuilt))

	pages, err := api.PageCountFile(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
}

func TestRebuildToTempUnreadable(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.pdf")
	writeGarbage(t, bad)

	_, err := rebuildToTemp(bad)
	assert.Error(t, err)
}
