package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfkit-go/pdfkit/internal/registry"
)

// echoTool returns its arguments as JSON, enough to observe parsing.
type echoTool struct{}

func (e *echoTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"test_echo",
		mcp.WithDescription("Echo arguments back as JSON."),
		mcp.WithString("name", mcp.Required(), mcp.Description("A name")),
		mcp.WithNumber("count", mcp.Description("A count")),
		mcp.WithBoolean("flag", mcp.Description("A flag")),
	)
}

func (e *echoTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func setupRegistry(t *testing.T) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	registry.Init(logger)
	registry.Register(&echoTool{})
}

func newTestRunner(output OutputFormat) *Runner {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRunner(logger, &sync.Map{}, output)
}

// captureStdout captures stdout during f() and returns the output.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	f()

	_ = w.Close()
	os.Stdout = old
	<-done

	return buf.String()
}

func TestListTools(t *testing.T) {
	setupRegistry(t)
	runner := newTestRunner(OutputText)

	output := captureStdout(t, func() {
		require.NoError(t, runner.ListTools())
	})

	assert.Contains(t, output, "test_echo")
	assert.Contains(t, output, "Echo arguments back as JSON.")
}

func TestListToolsJSON(t *testing.T) {
	setupRegistry(t)
	runner := newTestRunner(OutputJSON)

	output := captureStdout(t, func() {
		require.NoError(t, runner.ListTools())
	})

	var entries []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &entries))

	found := false
	for _, e := range entries {
		if e.Name == "test_echo" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestHelpTool(t *testing.T) {
	setupRegistry(t)
	runner := newTestRunner(OutputText)

	output := captureStdout(t, func() {
		require.NoError(t, runner.HelpTool("test_echo"))
	})

	assert.Contains(t, output, "test_echo")
	assert.Contains(t, output, "--name")
	assert.Contains(t, output, "(required)")
}

func TestHelpToolUnknown(t *testing.T) {
	setupRegistry(t)
	runner := newTestRunner(OutputText)

	err := runner.HelpTool("no_such_tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestRunToolWithFlags(t *testing.T) {
	setupRegistry(t)
	runner := newTestRunner(OutputText)

	output := captureStdout(t, func() {
		require.NoError(t, runner.RunTool(context.Background(), "test_echo", []string{"--name=alpha", "--count", "3", "--flag"}))
	})

	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &args))
	assert.Equal(t, "alpha", args["name"])
	assert.Equal(t, float64(3), args["count"])
	assert.Equal(t, true, args["flag"])
}

func TestRunToolWithJSONArgument(t *testing.T) {
	setupRegistry(t)
	runner := newTestRunner(OutputText)

	output := captureStdout(t, func() {
		require.NoError(t, runner.RunTool(context.Background(), "test-echo", []string{`{"name": "beta"}`}))
	})

	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &args))
	assert.Equal(t, "beta", args["name"])
}

func TestRunToolUnknown(t *testing.T) {
	setupRegistry(t)
	runner := newTestRunner(OutputText)

	err := runner.RunTool(context.Background(), "no_such_tool", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		raw        string
		schemaType string
		want       any
	}{
		{"3", "number", int64(3)},
		{"2.5", "number", 2.5},
		{"true", "boolean", true},
		{"no", "boolean", false},
		{"plain", "string", "plain"},
		{`["a","b"]`, "array", []any{"a", "b"}},
		{"a,b", "array", []any{"a", "b"}},
	}

	for _, tt := range tests {
		got := coerceValue(tt.raw, tt.schemaType)
		assert.Equal(t, tt.want, got, "coerceValue(%q, %q)", tt.raw, tt.schemaType)
	}
}

func TestFlagNameRoundTrip(t *testing.T) {
	assert.Equal(t, "skip-errors", flagName("skip_errors"))
	assert.Equal(t, "skip_errors", resolveName("skip-errors"))
}
