// Package slug derives the readable identifiers used for branches and contractors.
package slug

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	gslug "github.com/gosimple/slug"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	ErrEmptyName        = errors.New("invalid_name")
	ErrIDSpaceExhausted = errors.New("id_space_exhausted")
)

// Make lowercases, strips accents and collapses anything that is not a letter
// or digit into single hyphens.
func Make(name string) string {
	return gslug.MakeLang(strings.TrimSpace(name), "es")
}

// Suffix returns n random base36 characters.
func Suffix(n int) string {
	if n <= 0 {
		n = 5
	}
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}

// ContractorID is the name slug plus a random suffix. It does not check for
// collisions; see UniqueContractorID.
func ContractorID(name string, suffixLen int) (string, error) {
	base := Make(name)
	if base == "" {
		return "", ErrEmptyName
	}
	return base + "-" + Suffix(suffixLen), nil
}

// BranchID joins the department and municipality slugs.
func BranchID(department, municipality string) (string, error) {
	dep := Make(department)
	mun := Make(municipality)
	if dep == "" || mun == "" {
		return "", ErrEmptyName
	}
	return dep + "-" + mun, nil
}

// ExistsFunc reports whether an id is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// FindAvailableID returns base when free, otherwise the first of base-2,
// base-3, ... that is free. It checks at most limit candidates.
func FindAvailableID(ctx context.Context, base string, exists ExistsFunc, limit int) (string, error) {
	if base == "" {
		return "", ErrEmptyName
	}
	if limit <= 0 {
		limit = 50
	}
	for i := 1; i <= limit; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s after %d attempts", ErrIDSpaceExhausted, base, limit)
}

// UniqueContractorID draws ContractorID candidates until exists reports one
// as free, trying at most limit suffixes.
func UniqueContractorID(ctx context.Context, name string, suffixLen int, exists ExistsFunc, limit int) (string, error) {
	base := Make(name)
	if base == "" {
		return "", ErrEmptyName
	}
	if limit <= 0 {
		limit = 50
	}
	for i := 0; i < limit; i++ {
		candidate := base + "-" + Suffix(suffixLen)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s after %d attempts", ErrIDSpaceExhausted, base, limit)
}
