package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyPage(t *testing.T) {
	keys := make([]string, 0, 23)
	for i := 22; i >= 0; i-- {
		keys = append(keys, fmt.Sprintf("k%02d", i))
	}
	id := func(s string) string { return s }

	page, info := KeyPage(keys, id, Pagination{})
	assert.Len(t, page, DefaultPageSize)
	assert.Equal(t, "k00", page[0])
	assert.True(t, info.HasMore)
	assert.Equal(t, "k10", info.NextStartKey)

	page, info = KeyPage(keys, id, Pagination{StartKey: info.NextStartKey})
	assert.Equal(t, "k10", page[0])
	assert.Equal(t, "k20", info.NextStartKey)

	page, info = KeyPage(keys, id, Pagination{StartKey: info.NextStartKey})
	assert.Equal(t, []string{"k20", "k21", "k22"}, page)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextStartKey)
}

func TestKeyPageCustomSize(t *testing.T) {
	page, info := KeyPage([]string{"b", "a", "c"}, func(s string) string { return s }, Pagination{PageSize: 2})
	assert.Equal(t, []string{"a", "b"}, page)
	assert.Equal(t, "c", info.NextStartKey)
}
