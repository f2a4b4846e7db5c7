package pagination

import (
	"sort"
)

// DefaultPageSize matches the page length the admin tables render.
const DefaultPageSize = 10

type Pagination struct {
	StartKey string `form:"start_key"`
	PageSize int    `form:"page_size,default=10"`
}

type PageInfo struct {
	NextStartKey string `json:"next_start_key,omitempty"`
	HasMore      bool   `json:"has_more"`
}

func (p Pagination) Size() int {
	if p.PageSize <= 0 || p.PageSize > 250 {
		return DefaultPageSize
	}
	return p.PageSize
}

// KeyPage slices items in ascending key order starting at startKey (inclusive).
// The key of the first item left out becomes the next start key.
func KeyPage[T any](items []T, key func(T) string, p Pagination) ([]T, PageInfo) {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) < key(sorted[j])
	})

	start := 0
	if p.StartKey != "" {
		start = sort.Search(len(sorted), func(i int) bool {
			return key(sorted[i]) >= p.StartKey
		})
	}
	sorted = sorted[start:]

	size := p.Size()
	if len(sorted) <= size {
		return sorted, PageInfo{}
	}
	return sorted[:size], PageInfo{
		NextStartKey: key(sorted[size]),
		HasMore:      true,
	}
}
