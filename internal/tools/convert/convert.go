// Package convert registers the rendering and format conversion tools.
package convert

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/convert"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/info"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

func init() {
	registry.Register(&ToImagesTool{})
	registry.Register(&FromImagesTool{})
	registry.Register(&ToMarkdownTool{})
	registry.Register(&ToHTMLTool{})
}

// ToImagesTool renders PDF pages to PNG or JPEG files.
type ToImagesTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ToImagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_to_images",
		mcp.WithDescription("Render PDF pages to image files, one image per page."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory for the rendered images (default: alongside the input)"),
		),
		mcp.WithString("format",
			mcp.Description("Image format (default: png)"),
			mcp.Enum("png", "jpg"),
			mcp.DefaultString("png"),
		),
		mcp.WithNumber("dpi",
			mcp.Description("Render resolution in dots per inch (default: 150)"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '1-3,7' (default: all pages)"),
		),
	)
}

// Execute renders the pages
func (t *ToImagesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, err := tools.GetRequiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidatePDFPath(input); err != nil {
		return nil, err
	}
	outputDir := tools.GetString(args, "output_dir", filepath.Dir(input))
	pages, err := selectedPages(input, tools.GetString(args, "pages", ""))
	if err != nil {
		return nil, err
	}
	res, err := convert.ToImages(input, outputDir, tools.GetString(args, "format", "png"), tools.GetInt(args, "dpi", 0), pages, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

func selectedPages(input, expr string) ([]int, error) {
	if expr == "" || strings.EqualFold(expr, "all") {
		return nil, nil
	}
	total, err := info.PageCount(input)
	if err != nil {
		return nil, err
	}
	return pagerange.Parse(expr, total)
}

// FromImagesTool builds a PDF from a list of image files.
type FromImagesTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *FromImagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"images_to_pdf",
		mcp.WithDescription("Combine PNG or JPEG images into a single PDF, one page per image, sized to the image."),
		mcp.WithArray("images",
			mcp.Required(),
			mcp.Description("Absolute paths of the images in page order"),
			mcp.WithStringItems(),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the resulting PDF"),
		),
	)
}

// Execute builds the PDF
func (t *FromImagesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	images := tools.GetStringSlice(args, "images")
	output, err := tools.GetRequiredString(args, "output")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidateOutputPath(output); err != nil {
		return nil, err
	}
	res, err := convert.FromImages(images, output, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ToMarkdownTool saves a PDF's text layer as a markdown document.
type ToMarkdownTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ToMarkdownTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_to_markdown",
		mcp.WithDescription("Convert a PDF's text layer to a markdown file with per-page headings."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the markdown file"),
		),
	)
}

// Execute writes the markdown
func (t *ToMarkdownTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := docArgs(args)
	if err != nil {
		return nil, err
	}
	res, err := convert.ToMarkdown(input, output, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ToHTMLTool saves a PDF's content as a standalone HTML document.
type ToHTMLTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ToHTMLTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_to_html",
		mcp.WithDescription("Convert a PDF to a standalone HTML document preserving layout where possible."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the HTML file"),
		),
	)
}

// Execute writes the HTML
func (t *ToHTMLTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := docArgs(args)
	if err != nil {
		return nil, err
	}
	res, err := convert.ToHTML(input, output, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

func docArgs(args map[string]interface{}) (input, output string, err error) {
	input, err = tools.GetRequiredString(args, "file_path")
	if err != nil {
		return "", "", err
	}
	if err = tools.ValidatePDFPath(input); err != nil {
		return "", "", err
	}
	output, err = tools.GetRequiredString(args, "output")
	if err != nil {
		return "", "", err
	}
	if err = tools.ValidateOutputPath(output); err != nil {
		return "", "", err
	}
	return input, output, nil
}
