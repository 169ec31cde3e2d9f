package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfkit-go/pdfkit/internal/config"
)

type fakeTool struct {
	name string
}

func (f *fakeTool) Definition() mcp.Tool {
	return mcp.NewTool(f.name, mcp.WithDescription("test tool"))
}

func (f *fakeTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("ok"), nil
}

func TestRegisterAndGetTool(t *testing.T) {
	Init(logrus.New())

	Register(&fakeTool{name: "test_fake_tool"})

	tool, ok := GetTool("test_fake_tool")
	require.True(t, ok)
	assert.Equal(t, "test_fake_tool", tool.Definition().Name)
}

func TestDisabledToolNotServed(t *testing.T) {
	t.Setenv("DISABLED_TOOLS", "test_disabled_tool")
	Init(logrus.New())

	Register(&fakeTool{name: "test_disabled_tool"})

	_, ok := GetTool("test_disabled_tool")
	assert.False(t, ok)

	_, ok = GetEnabledTools()["test_disabled_tool"]
	assert.False(t, ok)
}

func TestOCRToolsRequireEnablement(t *testing.T) {
	t.Setenv("ENABLE_ADDITIONAL_TOOLS", "")
	Init(logrus.New())

	assert.False(t, ShouldRegisterTool("pdf_ocr"))
	assert.False(t, ShouldRegisterTool("pdf_ocr_tables"))
	assert.False(t, ShouldRegisterTool("pdf_ocr_layout"))
	assert.True(t, ShouldRegisterTool("pdf_merge"))

	t.Setenv("ENABLE_ADDITIONAL_TOOLS", "pdf_ocr")
	assert.True(t, ShouldRegisterTool("pdf_ocr"))
	assert.False(t, ShouldRegisterTool("pdf_ocr_tables"))
}

func TestGetEnabledToolNamesSorted(t *testing.T) {
	Init(logrus.New())

	Register(&fakeTool{name: "test_b_tool"})
	Register(&fakeTool{name: "test_a_tool"})

	names := GetEnabledToolNames()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}

func TestSetConfigSharedWithTools(t *testing.T) {
	Init(logrus.New())
	assert.Equal(t, config.Default(), GetConfig())

	cfg := config.Default()
	cfg.OCR.Model = "plus"
	cfg.OCR.APIKey = "sk-test"
	SetConfig(cfg)
	defer SetConfig(config.Default())

	got := GetConfig()
	assert.Equal(t, "plus", got.OCR.Model)
	assert.Equal(t, "sk-test", got.OCR.APIKey)
}
