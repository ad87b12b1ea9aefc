package month

import (
	"testing"
	"time"
)

func TestAddMonths_TableTests(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		n    int
		want time.Time
	}{
		{
			name: "plain month",
			t:    time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 clamps to leap february",
			t:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 clamps to non-leap february",
			t:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "march 31 clamps to april 30",
			t:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "year transition",
			t:    time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
			n:    3,
			want: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "twelve months keeps day",
			t:    time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			n:    12,
			want: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "zero months",
			t:    time.Date(2024, 5, 15, 12, 30, 0, 0, time.UTC),
			n:    0,
			want: time.Date(2024, 5, 15, 12, 30, 0, 0, time.UTC),
		},
		{
			name: "negative month",
			t:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			n:    -1,
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "negative across year",
			t:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			n:    -2,
			want: time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "keeps clock",
			t:    time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.t, tt.n)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.t, tt.n, got, tt.want)
			}
		})
	}
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		year int
		mon  time.Month
		want int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.mon); got != tt.want {
			t.Errorf("DaysIn(%d, %v) = %d, want %d", tt.year, tt.mon, got, tt.want)
		}
	}
}
