// Package edit applies page-level modifications: watermarks, rotation,
// page deletion, cropping, and resizing.
package edit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
)

// Result reports an edit operation on a single output document.
type Result struct {
	OutputPath string `json:"output_path"`
	PageCount  int    `json:"page_count"`
	Success    bool   `json:"success"`
}

// WatermarkOptions configures Watermark. Exactly one of Text or ImagePath
// must be set. Pages nil means every page.
type WatermarkOptions struct {
	Text      string
	ImagePath string
	Pages     []int
	Angle     int
	Opacity   float64
	FontSize  int
	Color     string
	Position  string
	Underlay  bool
}

var positions = map[string]string{
	"center":       "c",
	"top-left":     "tl",
	"top-right":    "tr",
	"bottom-left":  "bl",
	"bottom-right": "br",
}

// Watermark stamps text or an image onto the selected pages.
func Watermark(input, output string, opts WatermarkOptions, logger *logrus.Logger) (*Result, error) {
	if (opts.Text == "") == (opts.ImagePath == "") {
		return nil, fmt.Errorf("exactly one of text or image must be given")
	}
	if opts.Opacity < 0 || opts.Opacity > 1 {
		return nil, fmt.Errorf("opacity must be between 0 and 1, got %g", opts.Opacity)
	}

	pos, ok := positions[opts.Position]
	if opts.Position == "" {
		pos = "c"
	} else if !ok {
		return nil, fmt.Errorf("unknown position %q", opts.Position)
	}
	opacity := opts.Opacity
	if opacity == 0 {
		opacity = 0.3
	}

	desc := []string{
		fmt.Sprintf("pos:%s", pos),
		fmt.Sprintf("rot:%d", opts.Angle),
		fmt.Sprintf("op:%g", opacity),
	}
	if opts.Text != "" {
		size := opts.FontSize
		if size == 0 {
			size = 48
		}
		desc = append(desc, fmt.Sprintf("points:%d", size), "scale:1 abs")
		if opts.Color != "" {
			desc = append(desc, fmt.Sprintf("fillcolor:%s", opts.Color))
		}
	} else {
		desc = append(desc, "scale:0.5 rel")
	}

	onTop := !opts.Underlay
	var (
		wm  *model.Watermark
		err error
	)
	if opts.Text != "" {
		wm, err = api.TextWatermark(opts.Text, strings.Join(desc, ", "), onTop, false, types.POINTS)
	} else {
		wm, err = api.ImageWatermark(opts.ImagePath, strings.Join(desc, ", "), onTop, false, types.POINTS)
	}
	if err != nil {
		return nil, fmt.Errorf("building watermark: %w", err)
	}

	var sel []string
	if opts.Pages != nil {
		sel = pagerange.Selection(opts.Pages)
	}
	if err := ensureDir(output); err != nil {
		return nil, err
	}
	if err := api.AddWatermarksFile(input, output, sel, wm, relaxedConf()); err != nil {
		return nil, fmt.Errorf("watermarking %s: %w", input, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "output": output}).Debug("Applied watermark")
	return resultFor(output)
}

// Rotate turns the selected pages (all pages when nil) by angle degrees.
// Valid angles are multiples of 90.
func Rotate(input, output string, angle int, pages []int, logger *logrus.Logger) (*Result, error) {
	if angle%90 != 0 {
		return nil, fmt.Errorf("rotation must be a multiple of 90, got %d", angle)
	}
	var sel []string
	if pages != nil {
		sel = pagerange.Selection(pages)
	}
	if err := ensureDir(output); err != nil {
		return nil, err
	}
	if err := api.RotateFile(input, output, angle, sel, relaxedConf()); err != nil {
		return nil, fmt.Errorf("rotating %s: %w", input, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "angle": angle}).Debug("Rotated pages")
	return resultFor(output)
}

// DeletePages removes the selected 0-based pages. Deleting every page is an
// error.
func DeletePages(input, output string, pages []int, logger *logrus.Logger) (*Result, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages selected")
	}
	total, err := api.PageCountFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}
	if len(pages) >= total {
		return nil, fmt.Errorf("cannot delete all %d pages", total)
	}
	if err := ensureDir(output); err != nil {
		return nil, err
	}
	if err := api.RemovePagesFile(input, output, pagerange.Selection(pages), relaxedConf()); err != nil {
		return nil, fmt.Errorf("deleting pages from %s: %w", input, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "deleted": len(pages)}).Debug("Deleted pages")
	return resultFor(output)
}

// Crop trims every page. Box is an absolute [x0 y0 x1 y1] crop box in
// points. Margins is {top, right, bottom, left} in points. Exactly one must
// be given.
func Crop(input, output string, box, margins []float64, logger *logrus.Logger) (*Result, error) {
	if (box == nil) == (margins == nil) {
		return nil, fmt.Errorf("exactly one of box or margins must be given")
	}
	var desc string
	if box != nil {
		if len(box) != 4 {
			return nil, fmt.Errorf("box needs 4 values, got %d", len(box))
		}
		desc = fmt.Sprintf("[%g %g %g %g]", box[0], box[1], box[2], box[3])
	} else {
		if len(margins) != 4 {
			return nil, fmt.Errorf("margins needs 4 values, got %d", len(margins))
		}
		desc = fmt.Sprintf("%g %g %g %g", margins[0], margins[1], margins[2], margins[3])
	}
	b, err := model.ParseBox(desc, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parsing crop box: %w", err)
	}
	if err := ensureDir(output); err != nil {
		return nil, err
	}
	if err := api.CropFile(input, output, nil, b, relaxedConf()); err != nil {
		return nil, fmt.Errorf("cropping %s: %w", input, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "box": desc}).Debug("Cropped pages")
	return resultFor(output)
}

var pageSizes = map[string][2]float64{
	"A3":     {842, 1191},
	"A4":     {595, 842},
	"A5":     {420, 595},
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
}

// Resize scales every page to the named size ("A4", "Letter", ... or
// "WxH" in points), multiplied by scale.
func Resize(input, output, size string, scale float64, logger *logrus.Logger) (*Result, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}

	var width, height float64
	if strings.Contains(strings.ToLower(size), "x") {
		parts := strings.SplitN(strings.ToLower(size), "x", 2)
		if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%g %g", &width, &height); err != nil {
			return nil, fmt.Errorf("invalid page size %q", size)
		}
	} else {
		dims, ok := pageSizes[strings.ToUpper(size)]
		if !ok {
			return nil, fmt.Errorf("unsupported page size %q", size)
		}
		width, height = dims[0], dims[1]
	}

	desc := fmt.Sprintf("dim:%g %g", width*scale, height*scale)
	rc, err := pdfcpu.ParseResizeConfig(desc, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parsing resize config: %w", err)
	}
	if err := ensureDir(output); err != nil {
		return nil, err
	}
	if err := api.ResizeFile(input, output, nil, rc, relaxedConf()); err != nil {
		return nil, fmt.Errorf("resizing %s: %w", input, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "size": size, "scale": scale}).Debug("Resized pages")
	return resultFor(output)
}

func relaxedConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func resultFor(output string) (*Result, error) {
	pages, err := api.PageCountFile(output)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", output, err)
	}
	return &Result{OutputPath: output, PageCount: pages, Success: true}, nil
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
