package pages

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pagerange"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/info"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/split"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

func init() {
	registry.Register(&SplitTool{})
	registry.Register(&SplitPagesTool{})
	registry.Register(&SplitByCountTool{})
	registry.Register(&SplitBySizeTool{})
}

// SplitTool splits by a page-range or chunk expression.
type SplitTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *SplitTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_split",
		mcp.WithDescription("Split a PDF by a page expression. 'pages' merges the selection into consecutive runs (one file per run); 'chunks' writes one file per comma-separated range, duplicates allowed."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF to split"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '1-5,8,10-12' (1-based)"),
		),
		mcp.WithString("chunks",
			mcp.Description("Chunk expression like '1-5,10-15'; each range becomes its own file"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory (default: directory of the input)"),
		),
		mcp.WithString("prefix",
			mcp.Description("Filename prefix for the outputs"),
		),
	)
}

// Execute runs the split
func (t *SplitTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, outputDir, err := splitArgs(args)
	if err != nil {
		return nil, err
	}
	prefix := tools.GetString(args, "prefix", "")

	total, err := info.PageCount(input)
	if err != nil {
		return nil, err
	}

	pagesExpr := tools.GetString(args, "pages", "")
	chunksExpr := tools.GetString(args, "chunks", "")

	var res *split.Result
	switch {
	case pagesExpr != "" && chunksExpr != "":
		return nil, fmt.Errorf("pages and chunks are mutually exclusive")
	case pagesExpr != "":
		pages, err := pagerange.Parse(pagesExpr, total)
		if err != nil {
			return nil, err
		}
		res, err = split.ByPages(input, outputDir, pages, prefix, logger)
		if err != nil {
			return nil, err
		}
	case chunksExpr != "":
		chunks, err := pagerange.ParseChunks(chunksExpr, total)
		if err != nil {
			return nil, err
		}
		res, err = split.ByChunks(input, outputDir, chunks, prefix, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("either pages or chunks must be given")
	}
	return tools.NewToolResultJSON(res)
}

// SplitPagesTool writes every page to its own file.
type SplitPagesTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *SplitPagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_split_pages",
		mcp.WithDescription("Split a PDF into one file per page."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF to split"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory (default: directory of the input)"),
		),
		mcp.WithString("prefix",
			mcp.Description("Filename prefix for the outputs"),
		),
	)
}

// Execute runs the split
func (t *SplitPagesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, outputDir, err := splitArgs(args)
	if err != nil {
		return nil, err
	}
	res, err := split.SinglePages(input, outputDir, tools.GetString(args, "prefix", ""), logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// SplitByCountTool splits into parts of a fixed page count.
type SplitByCountTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *SplitByCountTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_split_by_count",
		mcp.WithDescription("Split a PDF into parts of at most N pages each."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF to split"),
		),
		mcp.WithNumber("pages_per_file",
			mcp.Required(),
			mcp.Description("Maximum number of pages per output file"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory (default: directory of the input)"),
		),
		mcp.WithString("prefix",
			mcp.Description("Filename prefix for the outputs"),
		),
	)
}

// Execute runs the split
func (t *SplitByCountTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, outputDir, err := splitArgs(args)
	if err != nil {
		return nil, err
	}
	res, err := split.ByCount(input, outputDir, tools.GetInt(args, "pages_per_file", 0), tools.GetString(args, "prefix", ""), logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// SplitBySizeTool splits into parts of a target file size.
type SplitBySizeTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *SplitBySizeTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_split_by_size",
		mcp.WithDescription("Split a PDF into parts of roughly a target size in megabytes. Part sizes are estimated and may overshoot."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF to split"),
		),
		mcp.WithNumber("max_size_mb",
			mcp.Required(),
			mcp.Description("Approximate maximum size per output file, in MB"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory (default: directory of the input)"),
		),
		mcp.WithString("prefix",
			mcp.Description("Filename prefix for the outputs"),
		),
	)
}

// Execute runs the split
func (t *SplitBySizeTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, outputDir, err := splitArgs(args)
	if err != nil {
		return nil, err
	}
	res, err := split.BySize(input, outputDir, tools.GetFloat(args, "max_size_mb", 0), tools.GetString(args, "prefix", ""), logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// splitArgs extracts and validates the arguments shared by the split tools.
func splitArgs(args map[string]interface{}) (input, outputDir string, err error) {
	input, err = tools.GetRequiredString(args, "file_path")
	if err != nil {
		return "", "", err
	}
	if err := tools.ValidatePDFPath(input); err != nil {
		return "", "", err
	}
	outputDir = tools.GetString(args, "output_dir", filepath.Dir(input))
	return input, outputDir, nil
}
