// Package edit registers the page-modification tools: watermark, rotate,
// delete, crop, and resize.
package edit

import (
	"context"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/edit"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/info"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

func init() {
	registry.Register(&WatermarkTool{})
	registry.Register(&RotateTool{})
	registry.Register(&DeletePagesTool{})
	registry.Register(&CropTool{})
	registry.Register(&ResizeTool{})
}

// inOut extracts and validates the file_path and output arguments.
func inOut(args map[string]interface{}) (input, output string, err error) {
	input, err = tools.GetRequiredString(args, "file_path")
	if err != nil {
		return "", "", err
	}
	if err := tools.ValidatePDFPath(input); err != nil {
		return "", "", err
	}
	output, err = tools.GetRequiredString(args, "output")
	if err != nil {
		return "", "", err
	}
	if err := tools.ValidateOutputPath(output); err != nil {
		return "", "", err
	}
	return input, output, nil
}

func optionalPages(input string, args map[string]interface{}) ([]int, error) {
	expr := tools.GetString(args, "pages", "")
	if expr == "" || strings.EqualFold(expr, "all") {
		return nil, nil
	}
	total, err := info.PageCount(input)
	if err != nil {
		return nil, err
	}
	return pagerange.Parse(expr, total)
}

// WatermarkTool stamps text or an image across pages.
type WatermarkTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *WatermarkTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_watermark",
		mcp.WithDescription("Stamp a text or image watermark onto a PDF."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the watermarked PDF"),
		),
		mcp.WithString("text",
			mcp.Description("Watermark text (give exactly one of text or image)"),
		),
		mcp.WithString("image",
			mcp.Description("Absolute path of a watermark image"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '1-5,8' (default: all pages)"),
		),
		mcp.WithNumber("angle",
			mcp.Description("Rotation in degrees (default: 0)"),
		),
		mcp.WithNumber("opacity",
			mcp.Description("Opacity between 0 and 1 (default: 0.3)"),
		),
		mcp.WithNumber("font_size",
			mcp.Description("Font size in points for text watermarks (default: 48)"),
		),
		mcp.WithString("color",
			mcp.Description("Text colour, e.g. '#ff0000' (default: gray)"),
		),
		mcp.WithString("position",
			mcp.Description("Placement on the page (default: center)"),
			mcp.Enum("center", "top-left", "top-right", "bottom-left", "bottom-right"),
		),
		mcp.WithBoolean("underlay",
			mcp.Description("Render the watermark beneath the page content instead of on top (default: false)"),
			mcp.DefaultBool(false),
		),
	)
}

// Execute applies the watermark
func (t *WatermarkTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	pages, err := optionalPages(input, args)
	if err != nil {
		return nil, err
	}
	res, err := edit.Watermark(input, output, edit.WatermarkOptions{
		Text:      tools.GetString(args, "text", ""),
		ImagePath: tools.GetString(args, "image", ""),
		Pages:     pages,
		Angle:     tools.GetInt(args, "angle", 0),
		Opacity:   tools.GetFloat(args, "opacity", 0),
		FontSize:  tools.GetInt(args, "font_size", 0),
		Color:     tools.GetString(args, "color", ""),
		Position:  tools.GetString(args, "position", ""),
		Underlay:  tools.GetBool(args, "underlay", false),
	}, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// RotateTool rotates pages.
type RotateTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *RotateTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_rotate",
		mcp.WithDescription("Rotate pages of a PDF by a multiple of 90 degrees."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the rotated PDF"),
		),
		mcp.WithNumber("angle",
			mcp.Required(),
			mcp.Description("Rotation in degrees: 90, 180, 270, or -90"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '1-5,8' (default: all pages)"),
		),
	)
}

// Execute rotates the pages
func (t *RotateTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	pages, err := optionalPages(input, args)
	if err != nil {
		return nil, err
	}
	res, err := edit.Rotate(input, output, tools.GetInt(args, "angle", 0), pages, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// DeletePagesTool removes pages.
type DeletePagesTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *DeletePagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_delete_pages",
		mcp.WithDescription("Delete selected pages from a PDF. At least one page must remain."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the trimmed PDF"),
		),
		mcp.WithString("pages",
			mcp.Required(),
			mcp.Description("Page expression like '1-5,8' (1-based)"),
		),
	)
}

// Execute deletes the pages
func (t *DeletePagesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	expr, err := tools.GetRequiredString(args, "pages")
	if err != nil {
		return nil, err
	}
	total, err := info.PageCount(input)
	if err != nil {
		return nil, err
	}
	pages, err := pagerange.Parse(expr, total)
	if err != nil {
		return nil, err
	}
	res, err := edit.DeletePages(input, output, pages, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// CropTool trims page boxes.
type CropTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *CropTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_crop",
		mcp.WithDescription("Crop every page of a PDF, either to an absolute box or by margins. Give exactly one of box or margins."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the cropped PDF"),
		),
		mcp.WithArray("box",
			mcp.Description("Absolute crop box [x0, y0, x1, y1] in points"),
			mcp.Items(map[string]any{"type": "number"}),
		),
		mcp.WithArray("margins",
			mcp.Description("Margins [top, right, bottom, left] in points"),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)
}

// Execute crops the pages
func (t *CropTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	res, err := edit.Crop(input, output, tools.GetFloatSlice(args, "box"), tools.GetFloatSlice(args, "margins"), logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ResizeTool rescales pages.
type ResizeTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ResizeTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_resize",
		mcp.WithDescription("Resize every page of a PDF to a named size or explicit dimensions."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the resized PDF"),
		),
		mcp.WithString("size",
			mcp.Description("Page size: A3, A4, A5, Letter, Legal, or 'WxH' in points (default: A4)"),
			mcp.DefaultString("A4"),
		),
		mcp.WithNumber("scale",
			mcp.Description("Multiplier applied to the target size (default: 1.0)"),
		),
	)
}

// Execute resizes the pages
func (t *ResizeTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	res, err := edit.Resize(input, output, tools.GetString(args, "size", "A4"), tools.GetFloat(args, "scale", 1.0), logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}
