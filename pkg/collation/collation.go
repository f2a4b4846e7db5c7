// Package collation sorts display names the way Spanish-speaking users expect.
package collation

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByName orders items by name using Spanish collation, ignoring case and
// accents. Ties keep their input order.
func SortByName[T any](items []T, name func(T) string) {
	c := collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(name(items[i]), name(items[j])) < 0
	})
}
