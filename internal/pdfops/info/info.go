// Package info reads document facts: size, page count, version,
// encryption state, and the info-dictionary metadata.
package info

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Info describes a PDF document.
type Info struct {
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	SizeBytes   int64  `json:"size_bytes"`
	SizeHuman   string `json:"size_human"`
	PageCount   int    `json:"page_count"`
	Version     string `json:"version"`
	IsEncrypted bool   `json:"is_encrypted"`
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	Creator     string `json:"creator,omitempty"`
	Producer    string `json:"producer,omitempty"`
	Created     string `json:"created,omitempty"`
	Modified    string `json:"modified,omitempty"`
}

// Get reads the document at path. An encrypted document that cannot be
// opened without a password yields an error.
func Get(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("not a PDF file: %s", path)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s (encrypted or damaged): %w", path, err)
	}
	defer doc.Close()

	meta := doc.Metadata()
	version := meta["format"]
	if version == "" {
		version = "PDF"
	}
	encryption := meta["encryption"]

	return &Info{
		Filename:    filepath.Base(path),
		Path:        path,
		SizeBytes:   fi.Size(),
		SizeHuman:   HumanSize(fi.Size()),
		PageCount:   doc.NumPage(),
		Version:     version,
		IsEncrypted: encryption != "" && !strings.EqualFold(encryption, "none"),
		Title:       meta["title"],
		Author:      meta["author"],
		Subject:     meta["subject"],
		Keywords:    meta["keywords"],
		Creator:     meta["creator"],
		Producer:    meta["producer"],
		Created:     meta["creationDate"],
		Modified:    meta["modDate"],
	}, nil
}

// PageCount returns the number of pages in the document.
func PageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// HumanSize renders a byte count like "2.3 MB".
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
