// Package convert renders PDFs to images, builds PDFs from images, and
// exports text, markdown, and HTML.
package convert

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pdfops/extract"
)

// ImagesResult reports a PDF-to-images render.
type ImagesResult struct {
	OutputFiles []string `json:"output_files"`
	TotalImages int      `json:"total_images"`
	Format      string   `json:"format"`
	DPI         int      `json:"dpi"`
	Success     bool     `json:"success"`
}

// DocumentResult reports a conversion producing one output document.
type DocumentResult struct {
	OutputPath string `json:"output_path"`
	PageCount  int    `json:"page_count"`
	Success    bool   `json:"success"`
}

// ToImages renders the selected 0-based pages (all pages when nil) into
// outputDir as `stem_page_NNN.<format>`. Format is png or jpg.
func ToImages(input, outputDir, format string, dpi int, pages []int, logger *logrus.Logger) (*ImagesResult, error) {
	if format != "png" && format != "jpg" {
		return nil, fmt.Errorf("format must be png or jpg, got %q", format)
	}
	if dpi <= 0 {
		dpi = 150
	}

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
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	var outputs []string
	for _, p := range pages {
		if p < 0 || p >= doc.NumPage() {
			return nil, fmt.Errorf("page %d out of range, document has %d pages", p+1, doc.NumPage())
		}
		img, err := doc.ImageDPI(p, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", p+1, err)
		}
		out := filepath.Join(outputDir, fmt.Sprintf("%s_page_%03d.%s", stem, p+1, format))
		if err := writeImage(out, img, format); err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	logger.WithFields(logrus.Fields{"input": input, "images": len(outputs), "dpi": dpi}).Debug("Rendered pages")

	return &ImagesResult{
		OutputFiles: outputs,
		TotalImages: len(outputs),
		Format:      format,
		DPI:         dpi,
		Success:     true,
	}, nil
}

// FromImages builds a PDF with one full-bleed page per input image.
func FromImages(images []string, output string, logger *logrus.Logger) (*DocumentResult, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images given")
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	for _, img := range images {
		w, h, err := imageSize(img)
		if err != nil {
			return nil, err
		}
		orient := "P"
		if w > h {
			orient = "L"
		}
		pdf.AddPageFormat(orient, gofpdf.SizeType{Wd: w, Ht: h})
		pdf.ImageOptions(img, 0, 0, w, h, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	}
	if pdf.Err() {
		return nil, fmt.Errorf("building PDF: %v", pdf.Error())
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, err
	}
	if err := pdf.OutputFileAndClose(output); err != nil {
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	logger.WithFields(logrus.Fields{"output": output, "pages": len(images)}).Debug("Built PDF from images")
	return &DocumentResult{OutputPath: output, PageCount: len(images), Success: true}, nil
}

// ToMarkdown exports the whole document's text with per-page headings.
func ToMarkdown(input, output string, logger *logrus.Logger) (*DocumentResult, error) {
	res, err := extract.Text(input, nil, output, "md", logger)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{OutputPath: output, PageCount: res.PageCount, Success: true}, nil
}

// ToHTML exports the document as a standalone HTML file, one section per
// page.
func ToHTML(input, output string, logger *logrus.Logger) (*DocumentResult, error) {
	doc, err := fitz.New(input)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", input, err)
	}
	defer doc.Close()

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"></head>\n<body>\n")
	for p := 0; p < doc.NumPage(); p++ {
		pageHTML, err := doc.HTML(p, false)
		if err != nil {
			return nil, fmt.Errorf("converting page %d: %w", p+1, err)
		}
		fmt.Fprintf(&b, "<div class=\"page\" id=\"page-%d\">\n%s</div>\n", p+1, pageHTML)
	}
	b.WriteString("</body>\n</html>\n")

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(output, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "output": output}).Debug("Converted to HTML")
	return &DocumentResult{OutputPath: output, PageCount: doc.NumPage(), Success: true}, nil
}

func writeImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case "jpg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

func imageSize(path string) (w, h float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}
