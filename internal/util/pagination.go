package util

import (
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Page is a zero-based page request with a sort column already resolved
// against an allow-list.
type Page struct {
	Number int
	Size   int
	SortBy string
	Desc   bool
}

// NewPage normalizes raw query values. sortBy is looked up in allowed
// (API name to column); unknown names fall back to "id".
func NewPage(page, size int, sortBy, sortDir string, allowed map[string]string) Page {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	col, ok := allowed[sortBy]
	if !ok {
		col = "id"
	}

	dir := strings.ToLower(sortDir)
	return Page{
		Number: page,
		Size:   size,
		SortBy: col,
		Desc:   dir == "desc" || dir == "descending",
	}
}

func (p Page) Offset() int {
	return p.Number * p.Size
}

func (p Page) OrderClause() string {
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	if p.SortBy == "id" {
		return "id " + dir
	}
	return p.SortBy + " " + dir + ", id " + dir
}

func (p Page) TotalPages(total int64) int {
	if p.Size < 1 || total == 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page) IsLast(total int64) bool {
	return int64(p.Offset()+p.Size) >= total
}
