package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelta(t *testing.T) {
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name     string
		expected *time.Time
		actual   *time.Time
		want     *int
	}{
		{name: "early", expected: ptr(day(2025, 1, 10)), actual: ptr(day(2025, 1, 5)), want: intPtr(-5)},
		{name: "late", expected: ptr(day(2025, 1, 10)), actual: ptr(day(2025, 1, 20)), want: intPtr(10)},
		{name: "on time", expected: ptr(day(2025, 1, 10)), actual: ptr(day(2025, 1, 10)), want: intPtr(0)},
		{name: "across dst", expected: ptr(day(2025, 3, 1)), actual: ptr(day(2025, 4, 1)), want: intPtr(31)},
		{
			name:     "time of day ignored",
			expected: ptr(time.Date(2025, 1, 10, 23, 0, 0, 0, time.UTC)),
			actual:   ptr(time.Date(2025, 1, 11, 1, 0, 0, 0, time.UTC)),
			want:     intPtr(1),
		},
		{name: "missing expected", actual: ptr(day(2025, 1, 5))},
		{name: "missing actual", expected: ptr(day(2025, 1, 5))},
		{name: "zero date", expected: ptr(time.Time{}), actual: ptr(day(2025, 1, 5))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delta(tt.expected, tt.actual)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func intPtr(v int) *int { return &v }
