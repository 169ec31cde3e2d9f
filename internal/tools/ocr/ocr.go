// Package ocr registers the vision-language OCR tools. These call a remote
// model API and so require explicit enablement via ENABLE_ADDITIONAL_TOOLS.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/ocr"
	"github.com/pdfkit-go/pdfkit/internal/pagerange"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/info"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

func init() {
	registry.Register(&OCRTool{})
	registry.Register(&OCRTablesTool{})
	registry.Register(&OCRLayoutTool{})
}

type ocrRequest struct {
	input  string
	pages  []int
	dpi    int
	engine *ocr.Engine
}

// prepare parses the shared arguments and builds an Engine from the
// configuration loaded at startup, the model/region arguments, and the
// environment.
func prepare(name string, args map[string]interface{}, logger *logrus.Logger) (*ocrRequest, error) {
	if !tools.IsToolEnabled(name) {
		return nil, fmt.Errorf("%s is not enabled. Add it to the ENABLE_ADDITIONAL_TOOLS environment variable", name)
	}

	input, err := tools.GetRequiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidatePDFPath(input); err != nil {
		return nil, err
	}

	var pages []int
	if expr := tools.GetString(args, "pages", ""); expr != "" && !strings.EqualFold(expr, "all") {
		total, err := info.PageCount(input)
		if err != nil {
			return nil, err
		}
		pages, err = pagerange.Parse(expr, total)
		if err != nil {
			return nil, err
		}
	}

	cfg := registry.GetConfig()
	engine, err := ocr.New(ocr.Options{
		APIKey:     cfg.OCR.APIKey,
		Model:      tools.GetString(args, "model", cfg.OCR.Model),
		Region:     tools.GetString(args, "region", cfg.OCR.Region),
		BaseURL:    cfg.OCR.BaseURL,
		Timeout:    time.Duration(cfg.OCR.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.OCR.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &ocrRequest{
		input:  input,
		pages:  pages,
		dpi:    tools.GetInt(args, "dpi", cfg.OCR.DPI),
		engine: engine,
	}, nil
}

func pageOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("pages",
			mcp.Description("Page expression like '1-3,7' (default: all pages)"),
		),
		mcp.WithString("model",
			mcp.Description("Model name or alias: flash, plus, or ocr (default: from config)"),
		),
		mcp.WithString("region",
			mcp.Description("API region (default: from config)"),
			mcp.Enum("beijing", "singapore"),
		),
		mcp.WithNumber("dpi",
			mcp.Description("Render resolution for recognition (default: 300)"),
		),
	}
}

// OCRTool recognises the text of scanned pages with a vision-language model.
type OCRTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *OCRTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Recognise text in a scanned PDF using a vision-language model. Requires a DashScope API key."),
	}, pageOptions()...)
	opts = append(opts,
		mcp.WithString("format",
			mcp.Description("Output format (default: text)"),
			mcp.Enum("text", "md", "json"),
			mcp.DefaultString("text"),
		),
	)
	return mcp.NewTool("pdf_ocr", opts...)
}

// Execute runs OCR over the selected pages
func (t *OCRTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	req, err := prepare("pdf_ocr", args, logger)
	if err != nil {
		return nil, err
	}
	res, err := req.engine.Recognise(ctx, req.input, req.pages, req.dpi, "", tools.GetString(args, "format", "text"))
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ProvideExtendedInfo provides detailed usage information for the OCR tool
func (t *OCRTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Recognise a scanned contract as markdown",
				Arguments: map[string]interface{}{
					"file_path": "/home/user/scan.pdf",
					"format":    "md",
				},
				ExpectedResult: "Per-page markdown text plus a combined document",
			},
			{
				Description: "Recognise only the first three pages with the higher-accuracy model",
				Arguments: map[string]interface{}{
					"file_path": "/home/user/scan.pdf",
					"pages":     "1-3",
					"model":     "plus",
				},
				ExpectedResult: "Text for pages 1 to 3",
			},
		},
		CommonPatterns: []string{
			"Use pdf_extract_text first; fall back to pdf_ocr only when the PDF has no text layer",
			"Raise dpi to 400 for small print, lower it to 200 for faster runs",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "no API key: set ocr.api_key or DASHSCOPE_API_KEY",
				Solution: "Export DASHSCOPE_API_KEY or set ocr.api_key in ~/.pdfkit/config.yaml.",
			},
			{
				Problem:  "pdf_ocr is not enabled",
				Solution: "Set ENABLE_ADDITIONAL_TOOLS=pdf_ocr,pdf_ocr_tables,pdf_ocr_layout in the server environment.",
			},
		},
	}
}

// OCRTablesTool extracts tables from scanned pages as Markdown.
type OCRTablesTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *OCRTablesTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Extract tables from a scanned PDF as Markdown tables using a vision-language model."),
	}, pageOptions()...)
	return mcp.NewTool("pdf_ocr_tables", opts...)
}

// Execute extracts the tables
func (t *OCRTablesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	req, err := prepare("pdf_ocr_tables", args, logger)
	if err != nil {
		return nil, err
	}
	res, err := req.engine.RecogniseTables(ctx, req.input, req.pages, req.dpi)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// OCRLayoutTool analyses the structural layout of scanned pages.
type OCRLayoutTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *OCRLayoutTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Analyse the layout of a scanned PDF, returning headings, body regions, tables, and figures as JSON."),
	}, pageOptions()...)
	return mcp.NewTool("pdf_ocr_layout", opts...)
}

// Execute analyses the layout
func (t *OCRLayoutTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	req, err := prepare("pdf_ocr_layout", args, logger)
	if err != nil {
		return nil, err
	}
	res, err := req.engine.RecogniseLayout(ctx, req.input, req.pages, req.dpi)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}
