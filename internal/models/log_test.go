package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int64
		page       int
		limit      int
		expected   int
	}{
		{"Exact Fit", 20, 1, 10, 2},
		{"Partial Last Page", 21, 1, 10, 3},
		{"Single Item", 1, 1, 10, 1},
		{"Empty", 0, 1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPageMeta(tt.totalItems, tt.page, tt.limit)
			assert.Equal(t, tt.expected, meta.TotalPages)
			assert.Equal(t, tt.totalItems, meta.TotalItems)
			assert.Equal(t, tt.page, meta.CurrentPage)
			assert.Equal(t, tt.limit, meta.Limit)
		})
	}
}
