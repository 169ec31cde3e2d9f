package pages

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/extract"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/info"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

func init() {
	registry.Register(&ExtractPagesTool{})
	registry.Register(&ExtractTextTool{})
	registry.Register(&ExtractImagesTool{})
}

// selectedPages parses an optional page expression against the document.
// An empty expression means every page (nil).
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

// ExtractPagesTool copies selected pages into a new PDF.
type ExtractPagesTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ExtractPagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_extract_pages",
		mcp.WithDescription("Extract selected pages into a new PDF."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("pages",
			mcp.Required(),
			mcp.Description("Page expression like '1-5,8' (1-based)"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the new PDF"),
		),
	)
}

// Execute runs the extraction
func (t *ExtractPagesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, err := tools.GetRequiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidatePDFPath(input); err != nil {
		return nil, err
	}
	expr, err := tools.GetRequiredString(args, "pages")
	if err != nil {
		return nil, err
	}
	output, err := tools.GetRequiredString(args, "output")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidateOutputPath(output); err != nil {
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
	res, err := extract.Pages(input, pages, output, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ExtractTextTool extracts page text as plain text or markdown.
type ExtractTextTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ExtractTextTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_extract_text",
		mcp.WithDescription("Extract the text of a PDF, optionally limited to selected pages and optionally saved to a file."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '1-5,8' (default: all pages)"),
		),
		mcp.WithString("output",
			mcp.Description("Absolute path to save the text to (default: return only)"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: txt or md (default: txt)"),
			mcp.DefaultString("txt"),
			mcp.Enum("txt", "md"),
		),
	)
}

// Execute runs the extraction
func (t *ExtractTextTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, err := tools.GetRequiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidatePDFPath(input); err != nil {
		return nil, err
	}
	pages, err := selectedPages(input, tools.GetString(args, "pages", ""))
	if err != nil {
		return nil, err
	}
	res, err := extract.Text(input, pages, tools.GetString(args, "output", ""), tools.GetString(args, "format", "txt"), logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ExtractImagesTool pulls embedded images out of a PDF.
type ExtractImagesTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ExtractImagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_extract_images",
		mcp.WithDescription("Extract the embedded images of a PDF into a directory, one file per image."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory (default: '<input>_images' next to the input)"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '1-5,8' (default: all pages)"),
		),
	)
}

// Execute runs the extraction
func (t *ExtractImagesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, err := tools.GetRequiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidatePDFPath(input); err != nil {
		return nil, err
	}
	outputDir := tools.GetString(args, "output_dir", "")
	if outputDir == "" {
		outputDir = strings.TrimSuffix(input, filepath.Ext(input)) + "_images"
	}
	pages, err := selectedPages(input, tools.GetString(args, "pages", ""))
	if err != nil {
		return nil, err
	}
	res, err := extract.Images(input, outputDir, pages, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}
