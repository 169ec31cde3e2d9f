// Package security registers the password, permission, metadata, and
// maintenance tools.
package security

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/pdfops/optimize"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/security"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

func init() {
	registry.Register(&EncryptTool{})
	registry.Register(&DecryptTool{})
	registry.Register(&ProtectTool{})
	registry.Register(&CleanMetadataTool{})
	registry.Register(&CompressTool{})
	registry.Register(&RepairTool{})
}

func inOut(args map[string]interface{}) (input, output string, err error) {
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

// EncryptTool password-protects a PDF with AES-256.
type EncryptTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *EncryptTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_encrypt",
		mcp.WithDescription("Encrypt a PDF with a password. The same password opens the file and owns it."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the encrypted PDF"),
		),
		mcp.WithString("password",
			mcp.Required(),
			mcp.Description("Password, at least 4 characters"),
		),
	)
}

// Execute encrypts the file
func (t *EncryptTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	password, err := tools.GetRequiredString(args, "password")
	if err != nil {
		return nil, err
	}
	res, err := security.Encrypt(input, output, password, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ProvideExtendedInfo provides detailed usage information for the encrypt tool
func (t *EncryptTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Encrypt a report",
				Arguments: map[string]interface{}{
					"file_path": "/home/user/report.pdf",
					"output":    "/home/user/report-locked.pdf",
					"password":  "s3cret-phrase",
				},
				ExpectedResult: "report-locked.pdf requires the password to open",
			},
		},
		CommonPatterns: []string{
			"Encrypt before emailing a document outside the organisation",
			"Pair with pdf_clean_metadata to strip author details first",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "password must be at least 4 characters",
				Solution: "Choose a longer password. Short passwords are rejected before any file is written.",
			},
		},
	}
}

// DecryptTool removes a PDF's password protection.
type DecryptTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *DecryptTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_decrypt",
		mcp.WithDescription("Remove password protection from an encrypted PDF."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the encrypted PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the decrypted PDF"),
		),
		mcp.WithString("password",
			mcp.Required(),
			mcp.Description("Password the file was encrypted with"),
		),
	)
}

// Execute decrypts the file
func (t *DecryptTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	password, err := tools.GetRequiredString(args, "password")
	if err != nil {
		return nil, err
	}
	res, err := security.Decrypt(input, output, password, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// ProtectTool applies usage restrictions without requiring a password to open.
type ProtectTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ProtectTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_protect",
		mcp.WithDescription("Restrict printing, copying, or modification of a PDF. Readers can still open the file without a password unless user_password is set."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the protected PDF"),
		),
		mcp.WithString("owner_password",
			mcp.Required(),
			mcp.Description("Owner password that can lift the restrictions"),
		),
		mcp.WithString("user_password",
			mcp.Description("Optional password required to open the file"),
		),
		mcp.WithBoolean("no_print",
			mcp.Description("Disallow printing (default: false)"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("no_copy",
			mcp.Description("Disallow copying text and images (default: false)"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("no_modify",
			mcp.Description("Disallow modification (default: false)"),
			mcp.DefaultBool(false),
		),
	)
}

// Execute applies the restrictions
func (t *ProtectTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	ownerPW, err := tools.GetRequiredString(args, "owner_password")
	if err != nil {
		return nil, err
	}
	perms := security.Permissions{
		NoPrint:  tools.GetBool(args, "no_print", false),
		NoCopy:   tools.GetBool(args, "no_copy", false),
		NoModify: tools.GetBool(args, "no_modify", false),
	}
	res, err := security.Protect(input, output, ownerPW, tools.GetString(args, "user_password", ""), perms, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// CleanMetadataTool strips document information and XMP metadata.
type CleanMetadataTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *CleanMetadataTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_clean_metadata",
		mcp.WithDescription("Remove the document information dictionary and XMP metadata from a PDF."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the cleaned PDF"),
		),
	)
}

// Execute strips the metadata
func (t *CleanMetadataTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	res, err := security.CleanMetadata(input, output, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// CompressTool shrinks a PDF by optimising its object streams.
type CompressTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *CompressTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_compress",
		mcp.WithDescription("Reduce a PDF's size by deduplicating resources and content streams."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the source PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the compressed PDF"),
		),
		mcp.WithString("quality",
			mcp.Description("Compression level (default: medium). low keeps more structure, high deduplicates aggressively."),
			mcp.Enum("low", "medium", "high"),
			mcp.DefaultString("medium"),
		),
	)
}

// Execute compresses the file
func (t *CompressTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	res, err := optimize.Compress(input, output, tools.GetString(args, "quality", "medium"), logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}

// RepairTool rebuilds a damaged PDF's cross-reference structure.
type RepairTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *RepairTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_repair",
		mcp.WithDescription("Attempt to repair a damaged PDF by relaxed parsing and rewriting its structure."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the damaged PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the repaired PDF"),
		),
	)
}

// Execute repairs the file
func (t *RepairTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, output, err := inOut(args)
	if err != nil {
		return nil, err
	}
	res, err := optimize.Repair(input, output, logger)
	if err != nil {
		return nil, err
	}
	return tools.NewToolResultJSON(res)
}
