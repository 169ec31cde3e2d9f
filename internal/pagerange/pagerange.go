// Package pagerange parses user-facing page range expressions such as
// "1-5,8,10-15" into validated zero-based page indices. Every command that
// accepts a --pages/--range style option resolves it through this package, so
// the grammar and error messages stay identical across split, delete,
// extract, rotate, header, footer and OCR.
//
// Page numbers in expressions are always 1-based; results are always 0-based.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SyntaxError reports a malformed range expression or token.
type SyntaxError struct {
	Token  string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid page range: %s", e.Reason)
	}
	return fmt.Sprintf("invalid page range %q: %s", e.Token, e.Reason)
}

// OutOfRangeError reports a page number outside 1..Total.
type OutOfRangeError struct {
	Page  int
	Total int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("page %d out of range (valid: 1-%d)", e.Page, e.Total)
}

// Chunk is one inclusive span of zero-based page indices.
type Chunk struct {
	Start int
	End   int
}

// Parse resolves a comma-separated range expression against totalPages and
// returns the selected pages as a sorted, deduplicated slice of zero-based
// indices. Tokens are either a single 1-based page number or an inclusive
// range "A-B". Empty tokens (trailing commas, doubled commas) are skipped.
// Overlapping tokens collapse silently; an expression that selects nothing
// is an error.
func Parse(expression string, totalPages int) ([]int, error) {
	selected := make(map[int]struct{})

	for _, part := range strings.Split(expression, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		start, end, err := parseToken(part, totalPages)
		if err != nil {
			return nil, err
		}
		for p := start; p <= end; p++ {
			selected[p] = struct{}{}
		}
	}

	if len(selected) == 0 {
		return nil, &SyntaxError{Reason: "no valid pages"}
	}

	pages := make([]int, 0, len(selected))
	for p := range selected {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

// ParseChunks resolves a comma-separated range expression into independent
// (start,end) chunks, one per token, in the caller's given order. Unlike
// Parse, overlapping tokens are NOT merged and duplicates are NOT removed:
// each token becomes its own chunk, so each can become a separate output
// artifact. A single page "N" yields the chunk (N-1, N-1).
func ParseChunks(expression string, totalPages int) ([]Chunk, error) {
	var chunks []Chunk

	for _, part := range strings.Split(expression, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		start, end, err := parseToken(part, totalPages)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, Chunk{Start: start, End: end})
	}

	if len(chunks) == 0 {
		return nil, &SyntaxError{Reason: "no valid pages"}
	}
	return chunks, nil
}

// parseToken validates one token and returns its zero-based inclusive span.
func parseToken(token string, totalPages int) (start, end int, err error) {
	if strings.Contains(token, "-") {
		bounds := strings.Split(token, "-")
		if len(bounds) != 2 {
			return 0, 0, &SyntaxError{Token: token, Reason: "expected N or A-B"}
		}

		a, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return 0, 0, &SyntaxError{Token: token, Reason: "start is not a number"}
		}
		b, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return 0, 0, &SyntaxError{Token: token, Reason: "end is not a number"}
		}

		if a < 1 || a > totalPages {
			return 0, 0, &OutOfRangeError{Page: a, Total: totalPages}
		}
		if b < 1 || b > totalPages {
			return 0, 0, &OutOfRangeError{Page: b, Total: totalPages}
		}
		if a > b {
			return 0, 0, &SyntaxError{Token: token, Reason: "start greater than end"}
		}
		return a - 1, b - 1, nil
	}

	n, convErr := strconv.Atoi(token)
	if convErr != nil {
		return 0, 0, &SyntaxError{Token: token, Reason: "not a page number"}
	}
	if n < 1 || n > totalPages {
		return 0, 0, &OutOfRangeError{Page: n, Total: totalPages}
	}
	return n - 1, n - 1, nil
}

// IsConsecutive reports whether pages form a gapless ascending run.
func IsConsecutive(pages []int) bool {
	for i := 1; i < len(pages); i++ {
		if pages[i] != pages[i-1]+1 {
			return false
		}
	}
	return true
}

// GroupConsecutive splits a sorted page list into its maximal consecutive
// runs, preserving order.
func GroupConsecutive(pages []int) [][]int {
	if len(pages) == 0 {
		return nil
	}

	var groups [][]int
	current := []int{pages[0]}

	for _, p := range pages[1:] {
		if p == current[len(current)-1]+1 {
			current = append(current, p)
			continue
		}
		groups = append(groups, current)
		current = []int{p}
	}
	return append(groups, current)
}

// Selection formats zero-based pages as the 1-based strings the pdfcpu page
// selection API expects.
func Selection(pages []int) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = strconv.Itoa(p + 1)
	}
	return out
}
