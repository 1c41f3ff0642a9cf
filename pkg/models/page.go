package models

// Pagination defaults and bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sort directions accepted in list requests.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PageRequest carries pagination and sorting for list operations.
// PageNumber is 0-based. SortBy is validated against a per-repository
// whitelist of entity attributes.
type PageRequest struct {
	Number  int
	Size    int
	SortBy  string
	SortDir string
}

// Normalize clamps the request to sane bounds and fills defaults.
// defaultSortBy and defaultSortDir apply when the caller supplied none.
func (p PageRequest) Normalize(defaultSortBy, defaultSortDir string) PageRequest {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.SortBy == "" {
		p.SortBy = defaultSortBy
	}
	if p.SortDir != SortAsc && p.SortDir != SortDesc {
		p.SortDir = defaultSortDir
	}
	return p
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

// Page is one page of results with the standard envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPage assembles a page envelope from content and totals.
func NewPage[T any](content []T, total int64, pageNumber, pageSize int) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		First:         pageNumber == 0,
		Last:          pageNumber >= totalPages-1,
	}
}
