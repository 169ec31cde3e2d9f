// Package pages registers the page-shuffling tools: merge, split, and
// extract.
package pages

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pdfops/merge"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

// MergeTool combines PDFs with tiered fallback and per-file error
// accounting.
type MergeTool struct{}

func init() {
	registry.Register(&MergeTool{})
}

// Definition returns the tool's definition for MCP registration
func (t *MergeTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_merge",
		mcp.WithDescription("Merge multiple PDF files into one. Damaged inputs are repaired or skipped depending on the options, and the result reports exactly which files made it in."),
		mcp.WithArray("inputs",
			mcp.Description("Absolute paths of the PDF files to merge, in order"),
			mcp.WithStringItems(),
		),
		mcp.WithString("input_dir",
			mcp.Description("Merge every PDF in this directory instead of listing inputs"),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob filter applied to file names when input_dir is used, e.g. 'chapter_*.pdf'"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the merged PDF"),
		),
		mcp.WithBoolean("bookmark",
			mcp.Description("Add a bookmark per source file (default: true)"),
			mcp.DefaultBool(true),
		),
		mcp.WithBoolean("auto_repair",
			mcp.Description("Attempt to repair damaged inputs before giving up on them (default: true)"),
			mcp.DefaultBool(true),
		),
		mcp.WithBoolean("skip_errors",
			mcp.Description("Skip unreadable inputs instead of failing the whole merge (default: false)"),
			mcp.DefaultBool(false),
		),
	)
}

// Execute runs the merge
func (t *MergeTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	output, err := tools.GetRequiredString(args, "output")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidateOutputPath(output); err != nil {
		return nil, err
	}

	opts := merge.Options{
		Bookmark:   tools.GetBool(args, "bookmark", true),
		AutoRepair: tools.GetBool(args, "auto_repair", true),
		SkipErrors: tools.GetBool(args, "skip_errors", false),
	}

	inputs := tools.GetStringSlice(args, "inputs")
	inputDir := tools.GetString(args, "input_dir", "")

	var res *merge.Result
	switch {
	case len(inputs) > 0:
		for _, in := range inputs {
			if err := tools.ValidatePDFPath(in); err != nil {
				return nil, err
			}
		}
		res, err = merge.Merge(inputs, output, opts, logger)
	case inputDir != "":
		res, err = merge.MergeDir(inputDir, output, tools.GetString(args, "pattern", ""), true, opts, logger)
	default:
		return nil, fmt.Errorf("either inputs or input_dir must be given")
	}
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ProvideExtendedInfo implements the ExtendedHelpProvider interface
func (t *MergeTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		WhenToUse:    "Use to combine several PDFs into one document, including when some inputs may be damaged.",
		WhenNotToUse: "Don't use to interleave or reorder pages inside a single document.",
		Examples: []tools.ToolExample{
			{
				Description: "Merge three reports with bookmarks",
				Arguments: map[string]interface{}{
					"inputs": []string{"/docs/q1.pdf", "/docs/q2.pdf", "/docs/q3.pdf"},
					"output": "/docs/year.pdf",
				},
				ExpectedResult: "A merged PDF with one bookmark per source file",
			},
			{
				Description: "Merge a scan folder, skipping broken files",
				Arguments: map[string]interface{}{
					"input_dir":   "/scans",
					"output":      "/docs/scans.pdf",
					"skip_errors": true,
				},
				ExpectedResult: "Merged PDF plus a ledger of any skipped files",
			},
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "no valid PDF files found",
				Solution: "Check that the input paths exist and end in .pdf; other extensions are ignored.",
			},
			{
				Problem:  "merge failed across every strategy",
				Solution: "Set skip_errors to true to merge the readable files and report the rest.",
			},
		},
	}
}
