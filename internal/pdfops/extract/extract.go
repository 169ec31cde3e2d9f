// Package extract pulls pages, text, and embedded images out of a PDF.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
)

// PagesResult reports a page extraction into a new PDF.
type PagesResult struct {
	OutputPath     string `json:"output_path"`
	PagesExtracted []int  `json:"pages_extracted"`
	PageCount      int    `json:"page_count"`
	Success        bool   `json:"success"`
}

// TextResult reports extracted text, optionally saved to a file.
type TextResult struct {
	Text       string `json:"text"`
	PageCount  int    `json:"page_count"`
	CharCount  int    `json:"char_count"`
	OutputPath string `json:"output_path,omitempty"`
	Success    bool   `json:"success"`
}

// ImageInfo describes one extracted image file.
type ImageInfo struct {
	OutputPath string `json:"output_path"`
	SizeBytes  int64  `json:"size_bytes"`
}

// ImagesResult reports an image extraction run.
type ImagesResult struct {
	Images      []ImageInfo `json:"images"`
	TotalImages int         `json:"total_images"`
	OutputDir   string      `json:"output_dir"`
	Success     bool        `json:"success"`
}

// Pages copies the selected 0-based pages into a new PDF at output,
// preserving the selection's sorted order.
func Pages(input string, pages []int, output string, logger *logrus.Logger) (*PagesResult, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages selected")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.CollectFile(input, output, pagerange.Selection(pages), conf); err != nil {
		return nil, fmt.Errorf("extracting pages from %s: %w", input, err)
	}

	oneBased := make([]int, len(pages))
	for i, p := range pages {
		oneBased[i] = p + 1
	}
	logger.WithFields(logrus.Fields{"input": input, "output": output, "pages": len(pages)}).Debug("Extracted pages")

	return &PagesResult{
		OutputPath:     output,
		PagesExtracted: oneBased,
		PageCount:      len(pages),
		Success:        true,
	}, nil
}

// Text extracts text from the given 0-based pages, or from every page when
// pages is nil. Format "md" prefixes each page with a heading instead of the
// plain-text page separator. When output is non-empty the combined text is
// also written there.
func Text(input string, pages []int, output, format string, logger *logrus.Logger) (*TextResult, error) {
	doc, err := fitz.New(input)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", input, err)
	}
	defer doc.Close()

	if pages == nil {
		for i := 0; i < doc.NumPage(); i++ {
			pages = append(pages, i)
		}
	}

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p < 0 || p >= doc.NumPage() {
			return nil, fmt.Errorf("page %d out of range, document has %d pages", p+1, doc.NumPage())
		}
		text, err := doc.Text(p)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", p+1, err)
		}
		if format == "md" {
			parts = append(parts, fmt.Sprintf("## Page %d\n\n%s", p+1, text))
		} else {
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", p+1, text))
		}
	}
	combined := strings.Join(parts, "\n\n")

	outputPath := ""
	if output != "" {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(output, []byte(combined), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", output, err)
		}
		outputPath = output
	}
	logger.WithFields(logrus.Fields{"input": input, "pages": len(pages), "chars": len(combined)}).Debug("Extracted text")

	return &TextResult{
		Text:       combined,
		PageCount:  len(pages),
		CharCount:  len(combined),
		OutputPath: outputPath,
		Success:    true,
	}, nil
}

// AllText extracts the text of every page as a single string.
func AllText(input string, logger *logrus.Logger) (string, error) {
	res, err := Text(input, nil, "", "txt", logger)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Images extracts the embedded images of the selected 0-based pages (all
// pages when nil) into outputDir, one file per image in the source encoding.
func Images(input, outputDir string, pages []int, logger *logrus.Logger) (*ImagesResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var sel []string
	if pages != nil {
		sel = pagerange.Selection(pages)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ExtractImagesFile(input, outputDir, sel, conf); err != nil {
		return nil, fmt.Errorf("extracting images from %s: %w", input, err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, err
	}
	var images []ImageInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		images = append(images, ImageInfo{
			OutputPath: filepath.Join(outputDir, e.Name()),
			SizeBytes:  fi.Size(),
		})
	}
	logger.WithFields(logrus.Fields{"input": input, "images": len(images)}).Debug("Extracted images")

	return &ImagesResult{
		Images:      images,
		TotalImages: len(images),
		OutputDir:   outputDir,
		Success:     true,
	}, nil
}
