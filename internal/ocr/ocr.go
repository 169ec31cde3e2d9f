// Package ocr recognises text in PDF pages with a vision-language model
// behind an OpenAI-compatible endpoint.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gen2brain/go-fitz"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	"github.com/pdfkit-go/pdfkit/internal/utils/httpclient"
)

// Model aliases resolve to DashScope vision models. Any other value is
// passed through as a literal model name.
var modelAliases = map[string]string{
	"flash": "qwen3-vl-flash",
	"plus":  "qwen3-vl-plus",
	"ocr":   "qwen-vl-ocr-latest",
}

var regionEndpoints = map[string]string{
	"beijing":   "https://dashscope.aliyuncs.com/compatible-mode/v1",
	"singapore": "https://dashscope-intl.aliyuncs.com/compatible-mode/v1",
}

const (
	defaultTimeout = 60 * time.Second
	defaultRetries = 3
	defaultDPI     = 300
)

var formatPrompts = map[string]string{
	"text": "Extract all text from this image, preserving the original formatting and layout. Output only the recognised text, with no commentary.",
	"md":   "Extract all text from this image and output it as Markdown, preserving headings, lists, and tables.",
	"json": "Extract all text from this image and output it as JSON.",
}

const tablePrompt = "Extract the tables in this image as Markdown tables. If there are several tables, output them in order. Output only the Markdown tables, with no commentary."

const layoutPrompt = "Analyse the layout of this document image. Identify headings, body text, tables, and figures, and output the structured layout analysis as JSON."

// Options configures an Engine. Zero values fall back to the flash model,
// the beijing endpoint, the DASHSCOPE_API_KEY env var, and default
// timeout/retry settings.
type Options struct {
	APIKey     string
	Model      string
	Region     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint
}

// Engine is a configured OCR client. Safe for concurrent use.
type Engine struct {
	client     openai.Client
	model      string
	timeout    time.Duration
	maxRetries uint
	logger     *logrus.Logger
}

// New builds an Engine, resolving model aliases and region endpoints.
func New(opts Options, logger *logrus.Logger) (*Engine, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("DASHSCOPE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: set ocr.api_key or DASHSCOPE_API_KEY")
	}

	model := opts.Model
	if model == "" {
		model = "flash"
	}
	if resolved, ok := modelAliases[model]; ok {
		model = resolved
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		region := opts.Region
		if region == "" {
			region = "beijing"
		}
		var ok bool
		baseURL, ok = regionEndpoints[region]
		if !ok {
			return nil, fmt.Errorf("unknown region %q", region)
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	retries := opts.MaxRetries
	if retries == 0 {
		retries = defaultRetries
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpclient.NewHTTPClientWithProxy(timeout, logger)),
	)
	return &Engine{
		client:     client,
		model:      model,
		timeout:    timeout,
		maxRetries: retries,
		logger:     logger,
	}, nil
}

// Image recognises one image. An empty prompt selects the built-in prompt
// for format (text, md, or json); json responses have code fences stripped.
func (e *Engine) Image(ctx context.Context, img image.Image, prompt, format string) (string, error) {
	if prompt == "" {
		var ok bool
		prompt, ok = formatPrompts[format]
		if !ok {
			prompt = formatPrompts["text"]
		}
	}

	dataURL, err := encodeDataURL(img)
	if err != nil {
		return "", err
	}

	var content string
	err = retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			resp, err := e.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
				Model: e.model,
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(prompt),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
					}),
				},
			})
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("empty response from %s", e.model)
			}
			content = resp.Choices[0].Message.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(e.maxRetries),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("recognising image: %w", err)
	}

	if format == "json" {
		content = cleanJSONOutput(content)
	}
	return content, nil
}

// Table extracts the tables of one image as Markdown.
func (e *Engine) Table(ctx context.Context, img image.Image) (string, error) {
	return e.Image(ctx, img, tablePrompt, "text")
}

// Layout analyses the page layout of one image, returning JSON.
func (e *Engine) Layout(ctx context.Context, img image.Image) (string, error) {
	return e.Image(ctx, img, layoutPrompt, "json")
}

// RecogniseTables extracts tables from the selected pages as Markdown.
func (e *Engine) RecogniseTables(ctx context.Context, path string, pages []int, dpi int) (*DocumentResult, error) {
	return e.Recognise(ctx, path, pages, dpi, tablePrompt, "text")
}

// RecogniseLayout analyses the layout of the selected pages, returning one
// JSON document per page.
func (e *Engine) RecogniseLayout(ctx context.Context, path string, pages []int, dpi int) (*DocumentResult, error) {
	return e.Recognise(ctx, path, pages, dpi, layoutPrompt, "json")
}

// PageResult holds the recognised text of one page.
type PageResult struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// DocumentResult holds a per-page OCR run over a PDF.
type DocumentResult struct {
	Pages     []PageResult `json:"pages"`
	Combined  string       `json:"combined"`
	PageCount int          `json:"page_count"`
	Model     string       `json:"model"`
	Success   bool         `json:"success"`
}

// Recognise runs OCR over the selected 0-based pages of a PDF (all pages
// when nil), rendering each at dpi before recognition.
func (e *Engine) Recognise(ctx context.Context, path string, pages []int, dpi int, prompt, format string) (*DocumentResult, error) {
	if dpi <= 0 {
		dpi = defaultDPI
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer doc.Close()

	if pages == nil {
		for i := 0; i < doc.NumPage(); i++ {
			pages = append(pages, i)
		}
	}

	results := make([]PageResult, 0, len(pages))
	var combined []string
	for _, p := range pages {
		if p < 0 || p >= doc.NumPage() {
			return nil, fmt.Errorf("page %d out of range, document has %d pages", p+1, doc.NumPage())
		}
		img, err := doc.ImageDPI(p, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", p+1, err)
		}
		text, err := e.Image(ctx, img, prompt, format)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p+1, err)
		}
		e.logger.WithFields(logrus.Fields{"page": p + 1, "chars": len(text)}).Debug("Recognised page")
		results = append(results, PageResult{Page: p + 1, Text: text})
		combined = append(combined, text)
	}

	return &DocumentResult{
		Pages:     results,
		Combined:  strings.Join(combined, "\n\n"),
		PageCount: len(results),
		Model:     e.model,
		Success:   true,
	}, nil
}

func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// cleanJSONOutput strips the markdown code fences models tend to wrap JSON
// in.
func cleanJSONOutput(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
