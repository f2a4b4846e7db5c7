package slug

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bogotá D.C.", "bogota-d-c"},
		{"  Norte de Santander ", "norte-de-santander"},
		{"San José del Guaviare", "san-jose-del-guaviare"},
		{"Acme   S.A.S", "acme-s-a-s"},
		{"Ñame--Frito", "name-frito"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestContractorID(t *testing.T) {
	id, err := ContractorID("Acme Ltda", 5)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^acme-ltda-[0-9a-z]{5}$`), id)

	_, err = ContractorID("  ", 5)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestBranchID(t *testing.T) {
	id, err := BranchID("Cundinamarca", "Bogotá")
	require.NoError(t, err)
	assert.Equal(t, "cundinamarca-bogota", id)

	_, err = BranchID("Cundinamarca", "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func takenSet(ids ...string) ExistsFunc {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return func(_ context.Context, id string) (bool, error) {
		return set[id], nil
	}
}

func TestFindAvailableID(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		taken []string
		want  string
	}{
		{"free", nil, "x"},
		{"base taken", []string{"x"}, "x-2"},
		{"two taken", []string{"x", "x-2"}, "x-3"},
		{"gap is reused", []string{"x", "x-3"}, "x-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindAvailableID(ctx, "x", takenSet(tt.taken...), 50)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, tt.taken, got)
		})
	}
}

func TestFindAvailableIDIsBounded(t *testing.T) {
	calls := 0
	always := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}
	_, err := FindAvailableID(context.Background(), "x", always, 4)
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
	assert.Equal(t, 4, calls)
}

func TestFindAvailableIDPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := FindAvailableID(context.Background(), "x", func(context.Context, string) (bool, error) {
		return false, boom
	}, 3)
	assert.ErrorIs(t, err, boom)
}

func TestUniqueContractorIDSkipsTakenSuffixes(t *testing.T) {
	var taken []string
	for _, c := range base36[:35] {
		taken = append(taken, "acme-"+string(c))
	}
	got, err := UniqueContractorID(context.Background(), "Acme", 1, takenSet(taken...), 10_000)
	require.NoError(t, err)
	assert.Equal(t, "acme-z", got)
}

func TestUniqueContractorIDIsBounded(t *testing.T) {
	calls := 0
	always := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}
	_, err := UniqueContractorID(context.Background(), "Acme", 5, always, 7)
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
	assert.Equal(t, 7, calls)

	_, err = UniqueContractorID(context.Background(), " ", 5, always, 7)
	assert.ErrorIs(t, err, ErrEmptyName)
}
