package ocr

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfkit-go/pdfkit/internal/config"
	"github.com/pdfkit-go/pdfkit/internal/registry"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestPrepareUsesSharedConfig(t *testing.T) {
	t.Setenv("ENABLE_ADDITIONAL_TOOLS", "pdf_ocr")
	t.Setenv("DASHSCOPE_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ocr:\n  model: plus\n  api_key: sk-test\n  dpi: 222\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	registry.SetConfig(cfg)
	defer registry.SetConfig(config.Default())

	// The configured key must satisfy the engine with no env fallback, and
	// the configured DPI must carry through to the request.
	req, err := prepare("pdf_ocr", map[string]interface{}{"file_path": "/tmp/scan.pdf"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/scan.pdf", req.input)
	assert.Equal(t, 222, req.dpi)
}

func TestPrepareArgumentsOverrideConfig(t *testing.T) {
	t.Setenv("ENABLE_ADDITIONAL_TOOLS", "pdf_ocr")

	cfg := config.Default()
	cfg.OCR.APIKey = "sk-test"
	registry.SetConfig(cfg)
	defer registry.SetConfig(config.Default())

	req, err := prepare("pdf_ocr", map[string]interface{}{
		"file_path": "/tmp/scan.pdf",
		"dpi":       float64(150),
	}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 150, req.dpi)
}

func TestPrepareRejectsUnknownConfiguredRegion(t *testing.T) {
	t.Setenv("ENABLE_ADDITIONAL_TOOLS", "pdf_ocr")

	cfg := config.Default()
	cfg.OCR.APIKey = "sk-test"
	cfg.OCR.Region = "mars"
	registry.SetConfig(cfg)
	defer registry.SetConfig(config.Default())

	_, err := prepare("pdf_ocr", map[string]interface{}{"file_path": "/tmp/scan.pdf"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown region")
}

func TestPrepareRequiresEnablement(t *testing.T) {
	t.Setenv("ENABLE_ADDITIONAL_TOOLS", "")

	_, err := prepare("pdf_ocr", map[string]interface{}{"file_path": "/tmp/scan.pdf"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENABLE_ADDITIONAL_TOOLS")
}
