package tools

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GetString reads an optional string argument, falling back to def.
func GetString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// GetRequiredString reads a mandatory non-empty string argument.
func GetRequiredString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}
	return v, nil
}

// GetBool reads an optional boolean argument, falling back to def.
func GetBool(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// GetInt reads an optional numeric argument, falling back to def. JSON
// numbers arrive as float64, CLI flags as int64.
func GetInt(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return def
}

// GetFloat reads an optional numeric argument, falling back to def.
func GetFloat(args map[string]interface{}, key string, def float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return def
}

// GetStringSlice reads an argument that is an array of strings.
func GetStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetFloatSlice reads an argument that is an array of numbers.
func GetFloatSlice(args map[string]interface{}, key string) []float64 {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, item := range raw {
		if f, ok := item.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// ValidatePDFPath checks that a path argument is absolute and names a .pdf
// file.
func ValidatePDFPath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute, got %q", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("path must name a .pdf file, got %q", path)
	}
	return nil
}

// ValidateOutputPath checks that an output path argument is absolute.
func ValidateOutputPath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("output path must be absolute, got %q", path)
	}
	return nil
}
