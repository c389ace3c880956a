package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"cinema-api/internal/model"
)

func TestNormalizeAuditQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        model.AuditQuery
		wantPage  int
		wantLimit int
	}{
		{"defaults", model.AuditQuery{}, 1, 50},
		{"negative page", model.AuditQuery{Page: -3, Limit: 10}, 1, 10},
		{"limit capped", model.AuditQuery{Page: 2, Limit: 5000}, 2, 200},
		{"huge page capped", model.AuditQuery{Page: math.MaxInt, Limit: 200}, maxAuditPage, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAuditQuery(tt.in)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.GreaterOrEqual(t, (got.Page-1)*got.Limit, 0)
		})
	}
}
