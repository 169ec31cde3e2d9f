package edit

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pdfops/stamp"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

func init() {
	registry.Register(&HeaderTool{})
	registry.Register(&FooterTool{})
}

func stampOptions(input string, args map[string]interface{}) (stamp.Options, error) {
	pages, err := optionalPages(input, args)
	if err != nil {
		return stamp.Options{}, err
	}
	return stamp.Options{
		FontSize: tools.GetInt(args, "font_size", 0),
		Align:    tools.GetString(args, "align", ""),
		Margin:   tools.GetFloat(args, "margin", 0),
		Color:    tools.GetString(args, "color", ""),
		Pages:    pages,
	}, nil
}

// HeaderTool stamps a running header.
type HeaderTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *HeaderTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_header",
		mcp.WithDescription("Add a running header along the top edge of a PDF's pages."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the stamped PDF"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Header text"),
		),
		mcp.WithString("align",
			mcp.Description("Horizontal alignment (default: center)"),
			mcp.Enum("left", "center", "right"),
		),
		mcp.WithNumber("font_size",
			mcp.Description("Font size in points (default: 12)"),
		),
		mcp.WithNumber("margin",
			mcp.Description("Distance from the page edge in points (default: 18)"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '2-10' (default: all pages)"),
		),
	)
}

// Execute stamps the header
func (t *HeaderTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	text, err := tools.GetRequiredString(args, "text")
	if err != nil {
		return nil, err
	}
	opts, err := stampOptions(input, args)
	if err != nil {
		return nil, err
	}
	res, err := stamp.Header(input, output, text, opts, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// FooterTool stamps a running footer with page-number and date tokens.
type FooterTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *FooterTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_footer",
		mcp.WithDescription("Add a running footer along the bottom edge of a PDF's pages. The text may contain {page}, {total}, and {date} tokens."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the stamped PDF"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Footer text, e.g. 'Page {page} of {total}'"),
		),
		mcp.WithString("align",
			mcp.Description("Horizontal alignment (default: center)"),
			mcp.Enum("left", "center", "right"),
		),
		mcp.WithNumber("font_size",
			mcp.Description("Font size in points (default: 10)"),
		),
		mcp.WithNumber("margin",
			mcp.Description("Distance from the page edge in points (default: 18)"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '2-10' (default: all pages)"),
		),
	)
}

// Execute stamps the footer
func (t *FooterTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	text, err := tools.GetRequiredString(args, "text")
	if err != nil {
		return nil, err
	}
	opts, err := stampOptions(input, args)
	if err != nil {
		return nil, err
	}
	res, err := stamp.Footer(input, output, text, opts, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}
