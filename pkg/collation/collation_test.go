package collation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByNameIgnoresCaseAndAccents(t *testing.T) {
	names := []string{"zeta", "oso", "Ñandú", "Álamo", "beta"}
	SortByName(names, func(s string) string { return s })
	assert.Equal(t, []string{"Álamo", "beta", "Ñandú", "oso", "zeta"}, names)
}
