// Package info registers the document inspection tool.
package info

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/cache"
	"github.com/pdfkit-go/pdfkit/internal/pdfops/info"
	"github.com/pdfkit-go/pdfkit/internal/registry"
	"github.com/pdfkit-go/pdfkit/internal/tools"
)

func init() {
	registry.Register(&InfoTool{})
}

const resultsKey = "pdf_info:results"

// docCache returns the TTL cache holding inspection results, stored in the
// shared tool cache so its lifetime matches the registry's. Results are
// keyed by path and modification time, so an edited file always misses.
func docCache(shared *sync.Map) *cache.Cache {
	if shared == nil {
		return cache.NewCache(5 * time.Minute)
	}
	c, _ := shared.LoadOrStore(resultsKey, cache.NewCache(5*time.Minute))
	return c.(*cache.Cache)
}

// InfoTool reports a PDF's size, page count, and document metadata.
type InfoTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *InfoTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_info",
		mcp.WithDescription("Report a PDF's file size, page count, format version, encryption status, and document metadata."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF"),
		),
	)
}

// Execute inspects the file
func (t *InfoTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	input, err := tools.GetRequiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	if err := tools.ValidatePDFPath(input); err != nil {
		return nil, err
	}

	key := input
	if st, err := os.Stat(input); err == nil {
		key = fmt.Sprintf("%s@%d", input, st.ModTime().UnixNano())
	}
	results := docCache(cache)
	if cached, ok := results.Get(key); ok {
		logger.WithField("path", input).Debug("Serving cached document info")
		return tools.NewToolResultJSON(cached)
	}

	res, err := info.Get(input)
	if err != nil {
		return nil, err
	}
	results.Set(key, res)
	return tools.NewToolResultJSON(res)
}
