package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/pdfkit-go/pdfkit/internal/cli"
	"github.com/pdfkit-go/pdfkit/internal/config"
	"github.com/pdfkit-go/pdfkit/internal/registry"

	// Import all tool packages to register them
	_ "github.com/pdfkit-go/pdfkit/internal/imports"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global resources that need cleanup
// Using atomic operations to prevent race conditions between signal handlers and cleanup
var (
	logFileHandle atomic.Pointer[os.File]
	isStdioMode   atomic.Bool
)

const (
	// DefaultMemoryLimit is the default memory limit for the Go application (2GB).
	// Rendering large PDFs at high DPI is the main consumer.
	DefaultMemoryLimit = 2 * 1024 * 1024 * 1024
)

// parseLogLevel resolves the log level from LOG_LEVEL, falling back to the
// config file value and finally to warn.
func parseLogLevel(cfg config.Config) logrus.Level {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = cfg.LogLevel
	}

	switch strings.ToLower(strings.TrimSpace(logLevelStr)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.WarnLevel
	}
}

// setMemoryLimit configures the Go runtime memory limit
func setMemoryLimit() {
	memLimitStr := os.Getenv("PDFKIT_MEMORY_LIMIT")
	var memLimit int64 = DefaultMemoryLimit

	if memLimitStr != "" {
		if parsed, err := strconv.ParseInt(memLimitStr, 10, 64); err == nil && parsed > 0 {
			memLimit = parsed
		}
	}

	// Soft limit - the runtime adjusts GC behaviour to stay under it
	debug.SetMemoryLimit(memLimit)
}

func main() {
	setMemoryLimit()

	// .env is optional
	_ = godotenv.Load()

	// Create context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create a logger with default configuration
	// Initially discard output - reconfigured once the transport mode is known
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	registry.Init(logger)

	defer performCleanup()

	app := &urfavecli.Command{
		Name:    "pdfkit",
		Usage:   "PDF toolkit and MCP server",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Value:   "stdio",
				Usage:   "Transport type (stdio, sse, or http)",
			},
			&urfavecli.StringFlag{
				Name:  "port",
				Value: "18080",
				Usage: "Port to use for HTTP transports (SSE and Streamable HTTP)",
			},
			&urfavecli.StringFlag{
				Name:  "base-url",
				Value: "http://localhost",
				Usage: "Base URL for HTTP transports",
			},
			&urfavecli.StringFlag{
				Name:  "auth-token",
				Usage: "Authentication token for Streamable HTTP transport (optional)",
			},
			&urfavecli.StringFlag{
				Name:  "endpoint-path",
				Value: "/http",
				Usage: "Endpoint path for Streamable HTTP transport",
			},
			&urfavecli.DurationFlag{
				Name:  "session-timeout",
				Value: 30 * time.Minute,
				Usage: "Session timeout for Streamable HTTP transport",
			},
			&urfavecli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file (default: ~/.pdfkit/config.yaml)",
				Sources: urfavecli.EnvVars("PDFKIT_CONFIG"),
			},
		},
		Commands: []*urfavecli.Command{
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *urfavecli.Command) error {
					fmt.Printf("pdfkit version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
			{
				Name:  "cli",
				Usage: "Run tools directly without an MCP client",
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Value:   "text",
						Usage:   "Output format (text or json)",
					},
				},
				Commands: []*urfavecli.Command{
					{
						Name:  "list",
						Usage: "List available tools",
						Action: func(ctx context.Context, cmd *urfavecli.Command) error {
							runner, err := cliRunner(cmd)
							if err != nil {
								return err
							}
							return runner.ListTools()
						},
					},
					{
						Name:      "help",
						Usage:     "Show the parameters of a tool",
						ArgsUsage: "<tool>",
						Action: func(ctx context.Context, cmd *urfavecli.Command) error {
							if cmd.Args().Len() < 1 {
								return fmt.Errorf("usage: pdfkit cli help <tool>")
							}
							runner, err := cliRunner(cmd)
							if err != nil {
								return err
							}
							return runner.HelpTool(cmd.Args().First())
						},
					},
					{
						Name:      "run",
						Usage:     "Run a tool with --key=value arguments or a JSON object",
						ArgsUsage: "<tool> [args...]",
						Action: func(ctx context.Context, cmd *urfavecli.Command) error {
							if cmd.Args().Len() < 1 {
								return fmt.Errorf("usage: pdfkit cli run <tool> [args...]")
							}
							args := cmd.Args().Slice()
							runner, err := cliRunner(cmd)
							if err != nil {
								return err
							}
							return runner.RunTool(ctx, args[0], args[1:])
						},
					},
				},
			},
		},
		Action: func(cliCtx context.Context, cmd *urfavecli.Command) error {
			transport := cmd.String("transport")
			port := cmd.String("port")
			baseURL := cmd.String("base-url")

			// Track stdio mode for error handling (atomic to prevent races with signal handlers)
			isStdioMode.Store(transport == "stdio")

			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				if isStdioMode.Load() {
					return err
				}
				return fmt.Errorf("loading config: %w", err)
			}

			registry.SetConfig(cfg)
			configureLogging(logger, cfg)

			if transport != "stdio" {
				logger.Infof("Starting pdfkit version %s (commit: %s, built: %s)",
					Version, Commit, BuildDate)
			}

			logger.Debug("Creating MCP server")
			mcpSrv := mcpserver.NewMCPServer("pdfkit", "PDF Toolkit MCP Server")

			enabledTools := registry.GetEnabledTools()
			logger.WithField("tool_count", len(enabledTools)).Debug("MCP server created, registering tools")

			for toolName, toolImpl := range enabledTools {
				name := toolName
				tool := toolImpl

				if transport != "stdio" {
					logger.Infof("Registering tool: %s", name)
				}

				mcpSrv.AddTool(tool.Definition(), func(toolCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
					currentTool, ok := registry.GetTool(name)
					if !ok {
						return nil, fmt.Errorf("tool not found: %s", name)
					}

					args, ok := request.Params.Arguments.(map[string]any)
					if !ok {
						return nil, fmt.Errorf("invalid arguments type: expected map[string]interface{}, got %T", request.Params.Arguments)
					}

					result, err := currentTool.Execute(toolCtx, registry.GetLogger(), registry.GetCache(), args)
					if err != nil {
						if transport != "stdio" {
							logger.WithError(err).Errorf("Tool execution failed: %s", name)
						}
						return nil, fmt.Errorf("tool execution failed: %w", err)
					}

					return result, nil
				})
			}

			logger.WithField("transport", transport).Debug("Starting server")
			switch transport {
			case "stdio":
				return mcpserver.ServeStdio(mcpSrv)
			case "sse":
				logger.WithField("port", port).Debug("Starting SSE server")
				sseServer := mcpserver.NewSSEServer(mcpSrv, mcpserver.WithBaseURL(baseURL+"/sse"))
				return sseServer.Start(":" + port)
			case "http":
				logger.WithField("port", port).Debug("Starting HTTP server")
				return startStreamableHTTPServer(cmd, mcpSrv, logger)
			default:
				return fmt.Errorf("unsupported transport: %s", transport)
			}
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		// In stdio mode nothing may be written to stdout or stderr, it would
		// corrupt the MCP protocol stream
		if !isStdioMode.Load() {
			logger.Fatalf("Error: %v", err)
		}
		os.Exit(1)
	}
}

// cliRunner builds a Runner for the in-process cli commands. Output goes to
// the terminal, so logging stays on stderr at warn level. The config file is
// resolved the same way the server resolves it, so tools see identical
// settings on both paths.
func cliRunner(cmd *urfavecli.Command) (*cli.Runner, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	registry.SetConfig(cfg)

	logger := registry.GetLogger()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	output := cli.OutputText
	if cmd.String("output") == "json" {
		output = cli.OutputJSON
	}
	return cli.NewRunner(logger, registry.GetCache(), output), nil
}

// configureLogging directs the logger at a file under the configured log
// directory. File logging keeps stdout clean for the stdio transport; when no
// log file can be opened, stdio mode discards output entirely rather than
// risk corrupting the protocol stream.
func configureLogging(logger *logrus.Logger, cfg config.Config) {
	logLevel := parseLogLevel(cfg)
	if isStdioMode.Load() && logLevel < logrus.WarnLevel {
		logLevel = logrus.WarnLevel
	}
	logger.SetLevel(logLevel)
	logrus.SetLevel(logLevel)

	logDir := cfg.LogDir
	if logDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fallbackOutput(logger)
			return
		}
		logDir = filepath.Join(home, ".pdfkit", "logs")
	}

	if err := os.MkdirAll(logDir, 0700); err != nil {
		fallbackOutput(logger)
		return
	}

	logFile := filepath.Join(logDir, "pdfkit.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fallbackOutput(logger)
		return
	}

	logFileHandle.Store(file)
	logger.SetOutput(file)
	logrus.SetOutput(file)
	logger.WithField("level", logLevel.String()).Debug("Logging configured")
}

func fallbackOutput(logger *logrus.Logger) {
	if isStdioMode.Load() {
		logger.SetOutput(io.Discard)
		logrus.SetOutput(io.Discard)
	} else {
		logger.SetOutput(os.Stderr)
		logrus.SetOutput(os.Stderr)
	}
}

// performCleanup handles cleanup of resources on shutdown
func performCleanup() {
	// Close silently - in stdio mode no output is allowed and in other modes
	// the logger may be writing to this very file
	if file := logFileHandle.Load(); file != nil {
		_ = file.Close()
	}
}

// startStreamableHTTPServer configures and starts the Streamable HTTP server
func startStreamableHTTPServer(cmd *urfavecli.Command, mcpServer *mcpserver.MCPServer, logger *logrus.Logger) error {
	port := cmd.String("port")
	authToken := cmd.String("auth-token")
	endpointPath := cmd.String("endpoint-path")
	sessionTimeout := cmd.Duration("session-timeout")

	logger.Infof("Starting Streamable HTTP server on port %s with endpoint %s", port, endpointPath)

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(endpointPath),
	}

	if authToken != "" {
		opts = append(opts, mcpserver.WithHTTPContextFunc(createAuthMiddleware(authToken, logger)))
		logger.Info("Token authentication enabled")
	}

	// Keep-alive heartbeat at a quarter of the session timeout
	heartbeatInterval := 30 * time.Second
	if sessionTimeout > 0 {
		heartbeatInterval = sessionTimeout / 4
	}
	opts = append(opts, mcpserver.WithHeartbeatInterval(heartbeatInterval))
	opts = append(opts, mcpserver.WithLogger(&logrusAdapter{logger: logger}))

	httpServer := mcpserver.NewStreamableHTTPServer(mcpServer, opts...)

	logger.Infof("Heartbeat interval: %v", heartbeatInterval)
	logger.Info("Server supports multiple simultaneous connections")

	return httpServer.Start(":" + port)
}

// createAuthMiddleware creates an HTTP context function for token authentication
func createAuthMiddleware(expectedToken string, logger *logrus.Logger) mcpserver.HTTPContextFunc {
	return func(ctx context.Context, req *http.Request) context.Context {
		authHeader := req.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn("Request missing Authorization header")
			return ctx
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			logger.Warn("Invalid authorization format, expected Bearer token")
			return ctx
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		if token != expectedToken {
			logger.Warn("Invalid authentication token")
			return ctx
		}

		logger.Debug("Request authenticated successfully")
		return ctx
	}
}

// logrusAdapter adapts logrus.Logger to the mcp-go util.Logger interface
type logrusAdapter struct {
	logger *logrus.Logger
}

func (l *logrusAdapter) Debugf(format string, args ...any) {
	l.logger.Debugf(format, args...)
}

func (l *logrusAdapter) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *logrusAdapter) Warnf(format string, args ...any) {
	l.logger.Warnf(format, args...)
}

func (l *logrusAdapter) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}
