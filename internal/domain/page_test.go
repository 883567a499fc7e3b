package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

func TestNormalizePaging(t *testing.T) {
	tests := []struct {
		name               string
		number, size       int
		wantNumber, wantSz int
	}{
		{"defaults kept", 1, 20, 1, 20},
		{"zero size falls back to default", 1, 0, 1, 20},
		{"negative size falls back to default", 2, -5, 2, 20},
		{"oversized clamped", 1, 500, 1, 100},
		{"upper bound kept", 1, 100, 1, 100},
		{"zero page", 0, 10, 1, 10},
		{"negative page", -3, 10, 1, 10},
		{"huge page clamped", math.MaxInt, 100, domain.MaxPageNumber, 100},
		{"huge page with default size", math.MaxInt, 0, domain.MaxPageNumber, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, s := domain.NormalizePaging(tt.number, tt.size)
			assert.Equal(t, tt.wantNumber, n)
			assert.Equal(t, tt.wantSz, s)
		})
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name         string
		number, size int
		want         int
	}{
		{"first page", 1, 20, 0},
		{"third page", 3, 20, 40},
		{"zero page", 0, 20, 0},
		{"largest normalized page", domain.MaxPageNumber, domain.MaxPageSize, (domain.MaxPageNumber - 1) * domain.MaxPageSize},
		{"saturates instead of wrapping", math.MaxInt, 100, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Offset(tt.number, tt.size)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}
}

func TestNewPage(t *testing.T) {
	p := domain.NewPage([]int{1, 2}, 1, 2, 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasPrevious)
	assert.True(t, p.HasNext)

	p = domain.NewPage([]int{5}, 3, 2, 5)
	assert.True(t, p.HasPrevious)
	assert.False(t, p.HasNext)

	empty := domain.NewPage[int](nil, 1, 20, 0)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)

	beyond := domain.NewPage[int](nil, 7, 20, 30)
	assert.Equal(t, 2, beyond.TotalPages)
	assert.True(t, beyond.HasPrevious)
	assert.False(t, beyond.HasNext)
	assert.Equal(t, 120, domain.Offset(7, 20))
}
