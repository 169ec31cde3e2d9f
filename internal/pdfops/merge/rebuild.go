package merge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
	"github.com/sirupsen/logrus"
)

// a4Width and a4Height are the fallback page dimensions in points when an
// imported page carries no usable MediaBox.
const (
	a4Width  = 595.28
	a4Height = 841.89
)

// reconstructStrategy rebuilds the output page by page through gofpdi,
// which walks the raw object graph of each input instead of relying on a
// well-formed page tree. Page counts are probed with MuPDF, the most
// damage-tolerant reader available to us.
type reconstructStrategy struct{}

func (s *reconstructStrategy) name() string { return "reconstruct" }

func (s *reconstructStrategy) merge(inputs []string, out string, opts Options, logger *logrus.Logger) (*Result, error) {
	pdf := newBuilder()

	var failed []FileError
	merged := 0
	totalPages := 0

	for _, f := range inputs {
		pages, err := importDocument(pdf, f, opts.Bookmark)
		if err != nil {
			failed = append(failed, FileError{Path: f, Reason: err.Error()})
			if !opts.SkipErrors {
				return nil, fmt.Errorf("%s: %w", f, err)
			}
			logger.WithError(err).WithField("file", f).Debug("reconstruction failed for input, skipping")
			continue
		}
		merged++
		totalPages += pages
	}

	if merged == 0 {
		return nil, errors.New("no inputs could be reconstructed")
	}

	if err := writeBuilder(pdf, out); err != nil {
		return nil, err
	}

	return &Result{
		TotalFiles:  len(inputs),
		MergedFiles: merged,
		TotalPages:  totalPages,
		FailedFiles: failed,
		Strategy:    s.name(),
		Success:     true,
	}, nil
}

func newBuilder() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

func writeBuilder(pdf *gofpdf.Fpdf, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer func() { _ = f.Close() }()
	return pdf.Output(f)
}

// importDocument imports every page of src into pdf, optionally adding one
// top-level bookmark titled with the source's filename stem. Returns the
// number of pages imported.
func importDocument(pdf *gofpdf.Fpdf, src string, bookmark bool) (int, error) {
	doc, err := fitz.New(src)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", src, err)
	}
	pageCount := doc.NumPage()
	_ = doc.Close()

	if pageCount == 0 {
		return 0, fmt.Errorf("%s has no pages", src)
	}

	imp := gofpdi.NewImporter()
	for page := 1; page <= pageCount; page++ {
		if err := importPage(pdf, imp, src, page); err != nil {
			return 0, err
		}
		if bookmark && page == 1 {
			// Outline failures never fail the input.
			addBookmark(pdf, stem(src))
		}
	}
	return pageCount, nil
}

// importPage copies one page of src onto a fresh output page. gofpdi panics
// on structural errors, so the import is recover-protected and surfaces as
// a normal error.
func importPage(pdf *gofpdf.Fpdf, imp *gofpdi.Importer, src string, page int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("importing page %d of %s: %v", page, src, r)
		}
	}()

	tpl := imp.ImportPage(pdf, src, page, "/MediaBox")

	w, h := a4Width, a4Height
	if dims, ok := imp.GetPageSizes()[page]; ok {
		if mb, ok := dims["/MediaBox"]; ok && mb["w"] > 0 && mb["h"] > 0 {
			w, h = mb["w"], mb["h"]
		}
	}

	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
	imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
	return pdf.Error()
}

func addBookmark(pdf *gofpdf.Fpdf, title string) {
	defer func() { _ = recover() }()
	pdf.Bookmark(title, 0, -1)
}

// rebuildToTemp rewrites src through the reconstruction layer into a temp
// directory, keeping the original base name so downstream bookmark titles
// stay correct. The caller removes the directory via tempDirOf.
func rebuildToTemp(src string) (string, error) {
	dir, err := os.MkdirTemp("", "pdfkit-repair-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}

	dst := filepath.Join(dir, filepath.Base(src))
	pdf := newBuilder()
	if _, err := importDocument(pdf, src, false); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	if err := writeBuilder(pdf, dst); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	return dst, nil
}

func tempDirOf(path string) string {
	return filepath.Dir(path)
}

// Interleave alternates pages from a and b into output: a1, b1, a2, b2, ...
// with the longer document's tail appended once the shorter runs out.
func Interleave(a, b, output string, logger *logrus.Logger) (*Result, error) {
	for _, f := range []string{a, b} {
		if !strings.EqualFold(filepath.Ext(f), ".pdf") {
			return nil, fmt.Errorf("not a PDF file: %s", f)
		}
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("input does not exist: %s", f)
		}
	}

	countA, err := pageCount(a)
	if err != nil {
		return nil, err
	}
	countB, err := pageCount(b)
	if err != nil {
		return nil, err
	}

	pdf := newBuilder()
	impA := gofpdi.NewImporter()
	impB := gofpdi.NewImporter()

	maxPages := max(countA, countB)
	for i := 1; i <= maxPages; i++ {
		if i <= countA {
			if err := importPage(pdf, impA, a, i); err != nil {
				return nil, err
			}
		}
		if i <= countB {
			if err := importPage(pdf, impB, b, i); err != nil {
				return nil, err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeBuilder(pdf, output); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{"a": countA, "b": countB}).Debug("interleaved documents")

	return &Result{
		OutputPath:  output,
		TotalFiles:  2,
		MergedFiles: 2,
		TotalPages:  countA + countB,
		Strategy:    "interleave",
		Success:     true,
	}, nil
}

func pageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = doc.Close() }()
	return doc.NumPage(), nil
}
