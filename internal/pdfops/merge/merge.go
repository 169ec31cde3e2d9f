// Package merge combines PDF documents with a tiered fallback: a lenient
// pdfcpu pass first, then a strict pdfcpu pass with per-file repair, and
// finally a page-by-page reconstruction through gofpdf/gofpdi for documents
// whose structure the higher tiers refuse.
package merge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoValidFiles indicates that none of the supplied paths point at a PDF
// file. Checked before any merge strategy runs.
var ErrNoValidFiles = errors.New("no valid PDF files found")

// Options controls a merge job.
type Options struct {
	// Bookmark adds one top-level outline entry per merged input, titled
	// with the input's base filename, pointing at its first page.
	Bookmark bool
	// AutoRepair rewrites a malformed input through the reconstruction
	// layer and retries before giving up on it.
	AutoRepair bool
	// SkipErrors records per-input failures and continues. When false the
	// first failure aborts the current strategy and no partial output is
	// kept from it.
	SkipErrors bool
}

// FileError records one input that could not be merged.
type FileError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the ledger of one merge job.
type Result struct {
	OutputPath    string      `json:"output_path"`
	TotalFiles    int         `json:"total_files"`
	MergedFiles   int         `json:"merged_files"`
	RepairedFiles int         `json:"repaired_files"`
	TotalPages    int         `json:"total_pages"`
	FailedFiles   []FileError `json:"failed_files,omitempty"`
	Strategy      string      `json:"strategy"`
	Success       bool        `json:"success"`
}

// TierError is the failure summary of one exhausted strategy.
type TierError struct {
	Strategy string `json:"strategy"`
	Message  string `json:"message"`
}

// MergeFailedError indicates that every strategy was exhausted without
// producing any output.
type MergeFailedError struct {
	Tiers []TierError
}

func (e *MergeFailedError) Error() string {
	parts := make([]string, len(e.Tiers))
	for i, t := range e.Tiers {
		parts[i] = fmt.Sprintf("%s: %s", t.Strategy, t.Message)
	}
	return "merge failed, all strategies exhausted: " + strings.Join(parts, "; ")
}

// strategy is one complete alternate implementation of "copy all pages from
// all inputs into out". Implementations write to out and return the job
// ledger, or an error when the whole tier is abandoned.
type strategy interface {
	name() string
	merge(inputs []string, out string, opts Options, logger *logrus.Logger) (*Result, error)
}

// Merge combines inputs, in order, into output. Strategies are tried in
// decreasing strictness; the first one to produce output wins. Inputs that
// survive no strategy are reported in the result ledger rather than raised,
// unless SkipErrors is false, in which case any failure aborts the job and
// nothing is written to output.
func Merge(inputs []string, output string, opts Options, logger *logrus.Logger) (*Result, error) {
	valid := filterPDFs(inputs)
	if len(valid) == 0 {
		return nil, ErrNoValidFiles
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// Strategies build into a sibling temp path; the destination is only
	// touched on a successful finalize.
	tmp := output + ".merging"
	defer func() { _ = os.Remove(tmp) }()

	strategies := []strategy{
		&lenientStrategy{},
		&strictStrategy{},
		&reconstructStrategy{},
	}

	var tiers []TierError
	for _, s := range strategies {
		_ = os.Remove(tmp)

		res, err := s.merge(valid, tmp, opts, logger)
		if err != nil {
			logger.WithError(err).WithField("strategy", s.name()).Debug("merge strategy failed, falling back")
			tiers = append(tiers, TierError{Strategy: s.name(), Message: err.Error()})
			continue
		}

		if err := os.Rename(tmp, output); err != nil {
			return nil, fmt.Errorf("writing merged output: %w", err)
		}
		res.OutputPath = output
		logger.WithFields(logrus.Fields{
			"strategy": s.name(),
			"merged":   res.MergedFiles,
			"failed":   len(res.FailedFiles),
			"pages":    res.TotalPages,
		}).Debug("merge completed")
		return res, nil
	}

	return nil, &MergeFailedError{Tiers: tiers}
}

// MergeDir merges every PDF in dir matching pattern (default "*.pdf"),
// sorted by filename when sorted is true.
func MergeDir(dir, output, pattern string, sorted bool, opts Options, logger *logrus.Logger) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	if pattern == "" {
		pattern = "*.pdf"
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, ErrNoValidFiles
	}
	if sorted {
		sort.Strings(files)
	}
	return Merge(files, output, opts, logger)
}

// filterPDFs keeps paths that exist and carry a .pdf extension.
func filterPDFs(inputs []string) []string {
	var valid []string
	for _, f := range inputs {
		info, err := os.Stat(f)
		if err != nil || info.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(f), ".pdf") {
			continue
		}
		valid = append(valid, f)
	}
	return valid
}

// stem returns the base filename without its extension, used for bookmark
// titles and generated output names.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
