// Package stamp adds running headers and footers. Footer text supports the
// tokens {page}, {total}, and {date}.
package stamp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
)

// Result reports a header or footer stamp.
type Result struct {
	OutputPath string `json:"output_path"`
	PageCount  int    `json:"page_count"`
	Success    bool   `json:"success"`
}

// Options configures a header or footer. Pages nil means every page.
type Options struct {
	FontSize int
	Align    string // left, center, right
	Margin   float64
	Color    string
	Pages    []int
}

// Header stamps text along the top edge of the selected pages.
func Header(input, output, text string, opts Options, logger *logrus.Logger) (*Result, error) {
	return stampText(input, output, text, opts, true, logger)
}

// Footer stamps text along the bottom edge of the selected pages, after
// expanding the page-number and date tokens.
func Footer(input, output, text string, opts Options, logger *logrus.Logger) (*Result, error) {
	return stampText(input, output, text, opts, false, logger)
}

var aligns = map[string]struct{ top, bottom string }{
	"left":   {"tl", "bl"},
	"center": {"tc", "bc"},
	"right":  {"tr", "br"},
}

func stampText(input, output, text string, opts Options, top bool, logger *logrus.Logger) (*Result, error) {
	if text == "" {
		return nil, fmt.Errorf("no text given")
	}
	align := opts.Align
	if align == "" {
		align = "center"
	}
	anchors, ok := aligns[align]
	if !ok {
		return nil, fmt.Errorf("unknown alignment %q", align)
	}

	size := opts.FontSize
	if size == 0 {
		if top {
			size = 12
		} else {
			size = 10
		}
	}
	margin := opts.Margin
	if margin == 0 {
		margin = 18
	}

	pos := anchors.top
	offY := -margin
	if !top {
		pos = anchors.bottom
		offY = margin
	}
	desc := []string{
		fmt.Sprintf("pos:%s", pos),
		fmt.Sprintf("off:0 %g", offY),
		fmt.Sprintf("points:%d", size),
		"scale:1 abs",
		"rot:0",
		"op:1",
	}
	if opts.Color != "" {
		desc = append(desc, fmt.Sprintf("fillcolor:%s", opts.Color))
	}

	wm, err := api.TextWatermark(expandTokens(text), strings.Join(desc, ", "), true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("building stamp: %w", err)
	}

	var sel []string
	if opts.Pages != nil {
		sel = pagerange.Selection(opts.Pages)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, err
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.AddWatermarksFile(input, output, sel, wm, conf); err != nil {
		return nil, fmt.Errorf("stamping %s: %w", input, err)
	}

	pages, err := api.PageCountFile(output)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", output, err)
	}
	logger.WithFields(logrus.Fields{"input": input, "output": output, "top": top}).Debug("Stamped pages")
	return &Result{OutputPath: output, PageCount: pages, Success: true}, nil
}

// expandTokens rewrites {page} and {total} into the stamping engine's
// page-number placeholders and {date} into today's date.
func expandTokens(text string) string {
	r := strings.NewReplacer(
		"{page}", "%p",
		"{total}", "%P",
		"{date}", time.Now().Format("2006-01-02"),
	)
	return r.Replace(text)
}
