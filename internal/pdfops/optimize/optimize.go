// Package optimize shrinks and repairs PDFs.
package optimize

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pdfops/info"
)

// CompressResult reports a compression run.
type CompressResult struct {
	OutputPath     string  `json:"output_path"`
	OriginalSize   int64   `json:"original_size"`
	CompressedSize int64   `json:"compressed_size"`
	Reduction      float64 `json:"reduction_percent"`
	SizeHuman      string  `json:"size_human"`
	Success        bool    `json:"success"`
}

// RepairResult reports a repair run.
type RepairResult struct {
	OutputPath string `json:"output_path"`
	PageCount  int    `json:"page_count"`
	Success    bool   `json:"success"`
}

// Compress rewrites the document through the optimizer. Quality is one of
// low, medium, or high; higher presets deduplicate more aggressively.
func Compress(input, output, quality string, logger *logrus.Logger) (*CompressResult, error) {
	switch quality {
	case "", "low", "medium", "high":
	default:
		return nil, fmt.Errorf("quality must be low, medium, or high, got %q", quality)
	}

	before, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.OptimizeDuplicateContentStreams = quality == "medium" || quality == "high"
	conf.OptimizeResourceDicts = quality != "low"
	if err := api.OptimizeFile(input, output, conf); err != nil {
		return nil, fmt.Errorf("optimizing %s: %w", input, err)
	}

	after, err := os.Stat(output)
	if err != nil {
		return nil, err
	}
	reduction := 0.0
	if before.Size() > 0 {
		reduction = (1 - float64(after.Size())/float64(before.Size())) * 100
	}
	logger.WithFields(logrus.Fields{
		"input":  input,
		"before": before.Size(),
		"after":  after.Size(),
	}).Debug("Compressed document")

	return &CompressResult{
		OutputPath:     output,
		OriginalSize:   before.Size(),
		CompressedSize: after.Size(),
		Reduction:      reduction,
		SizeHuman:      info.HumanSize(after.Size()),
		Success:        true,
	}, nil
}

// Repair re-reads the document with relaxed validation and writes a clean
// copy, fixing cross-reference and structural damage a strict reader would
// reject.
func Repair(input, output string, logger *logrus.Logger) (*RepairResult, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContextFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, err
	}
	if err := api.WriteContextFile(ctx, output); err != nil {
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}

	pages, err := api.PageCountFile(output)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"input": input, "output": output, "pages": pages}).Debug("Repaired document")
	return &RepairResult{OutputPath: output, PageCount: pages, Success: true}, nil
}
