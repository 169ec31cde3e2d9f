// Package split divides a PDF into multiple output documents by page
// selection, chunk ranges, single pages, fixed page counts, or an
// approximate target file size.
package split

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
)

// Result reports the files produced by a split operation.
type Result struct {
	OutputFiles []string `json:"output_files"`
	TotalOutput int      `json:"total_output"`
	OutputDir   string   `json:"output_dir"`
	Success     bool     `json:"success"`
}

// ByPages writes the selected 0-based pages out to one file per consecutive
// run. A fully consecutive selection produces a single file.
func ByPages(input, outputDir string, pages []int, prefix string, logger *logrus.Logger) (*Result, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages selected")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stem := stem(input)
	var outputs []string
	for _, group := range pagerange.GroupConsecutive(pages) {
		first, last := group[0]+1, group[len(group)-1]+1
		name := fmt.Sprintf("%s%s_pages_%d-%d.pdf", prefix, stem, first, last)
		out := filepath.Join(outputDir, name)
		if err := collect(input, out, first, last); err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"output": out, "pages": len(group)}).Debug("Wrote split part")
		outputs = append(outputs, out)
	}
	return result(outputs, outputDir), nil
}

// ByChunks writes one file per chunk, in caller order. Overlapping chunks
// each produce their own file.
func ByChunks(input, outputDir string, chunks []pagerange.Chunk, prefix string, logger *logrus.Logger) (*Result, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks selected")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stem := stem(input)
	var outputs []string
	for i, c := range chunks {
		first, last := c.Start+1, c.End+1
		var name string
		if first == last {
			name = fmt.Sprintf("%s%s_chunk_%03d_page_%d.pdf", prefix, stem, i+1, first)
		} else {
			name = fmt.Sprintf("%s%s_chunk_%03d_pages_%d-%d.pdf", prefix, stem, i+1, first, last)
		}
		out := filepath.Join(outputDir, name)
		if err := collect(input, out, first, last); err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"output": out, "chunk": i + 1}).Debug("Wrote chunk")
		outputs = append(outputs, out)
	}
	return result(outputs, outputDir), nil
}

// SinglePages writes every page of the document to its own file.
func SinglePages(input, outputDir, prefix string, logger *logrus.Logger) (*Result, error) {
	total, err := api.PageCountFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stem := stem(input)
	var outputs []string
	for p := 1; p <= total; p++ {
		name := fmt.Sprintf("%s%s_page_%03d.pdf", prefix, stem, p)
		out := filepath.Join(outputDir, name)
		if err := collect(input, out, p, p); err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	logger.WithFields(logrus.Fields{"input": input, "files": len(outputs)}).Debug("Split into single pages")
	return result(outputs, outputDir), nil
}

// ByCount splits the document into parts of at most perFile pages each.
func ByCount(input, outputDir string, perFile int, prefix string, logger *logrus.Logger) (*Result, error) {
	if perFile < 1 {
		return nil, fmt.Errorf("pages per file must be at least 1, got %d", perFile)
	}
	total, err := api.PageCountFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stem := stem(input)
	var outputs []string
	part := 0
	for start := 1; start <= total; start += perFile {
		part++
		end := start + perFile - 1
		if end > total {
			end = total
		}
		name := fmt.Sprintf("%s%s_part_%03d_pages_%d-%d.pdf", prefix, stem, part, start, end)
		out := filepath.Join(outputDir, name)
		if err := collect(input, out, start, end); err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	logger.WithFields(logrus.Fields{"input": input, "parts": part}).Debug("Split by page count")
	return result(outputs, outputDir), nil
}

// BySize splits the document into parts of roughly maxSizeMB each. Page
// counts are estimated from the average page size, so parts may overshoot.
func BySize(input, outputDir string, maxSizeMB float64, prefix string, logger *logrus.Logger) (*Result, error) {
	if maxSizeMB < 0.01 {
		return nil, fmt.Errorf("maximum size must be at least 0.01 MB, got %.2f", maxSizeMB)
	}
	total, err := api.PageCountFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}
	fi, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	perFile := 10
	if total > 0 {
		avgPageMB := float64(fi.Size()) / (1024 * 1024) / float64(total)
		if avgPageMB > 0 {
			perFile = int(maxSizeMB / avgPageMB)
			if perFile < 1 {
				perFile = 1
			}
		}
	}
	return ByCount(input, outputDir, perFile, prefix, logger)
}

// collect extracts the 1-based inclusive range [first,last] into out.
func collect(input, out string, first, last int) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	sel := []string{fmt.Sprintf("%d-%d", first, last)}
	if err := api.CollectFile(input, out, sel, conf); err != nil {
		return fmt.Errorf("extracting pages %d-%d from %s: %w", first, last, input, err)
	}
	return nil
}

func result(outputs []string, outputDir string) *Result {
	return &Result{
		OutputFiles: outputs,
		TotalOutput: len(outputs),
		OutputDir:   outputDir,
		Success:     true,
	}
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
