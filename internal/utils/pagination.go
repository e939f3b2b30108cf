// Package utils holds small helpers shared by the HTTP and service layers.
package utils

import "strconv"

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParsePage reads raw page and page_size values. Missing or invalid input
// falls back to page 1 and defSize; the size is bounded to [1, maxSize].
func ParsePage(rawPage, rawSize string, defSize, maxSize int) Page {
	return ClampPage(AtoiDefault(rawPage, 1), AtoiDefault(rawSize, defSize), defSize, maxSize)
}

// ClampPage bounds an already-parsed request. A non-positive size selects
// defSize; maxSize <= 0 disables the upper bound.
func ClampPage(number, size, defSize, maxSize int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = defSize
	}
	if size < 1 {
		size = 1
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// TotalPages rounds total/Size up; zero rows is zero pages.
func (p Page) TotalPages(total int64) int {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
