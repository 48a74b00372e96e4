package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		interval Interval
		year     int
		want     bool
	}{
		{"inside bounded", Span(450, 500), 475, true},
		{"start boundary inclusive", Span(450, 500), 450, true},
		{"end boundary inclusive", Span(450, 500), 500, true},
		{"after bounded", Span(450, 500), 501, false},
		{"before bounded", Span(450, 500), 449, false},
		{"open start far past", Interval{EndYear: Year(500)}, -10000, true},
		{"open start after end", Interval{EndYear: Year(500)}, 501, false},
		{"open end far future", Since(450), 999999, true},
		{"open end before start", Since(450), 449, false},
		{"unbounded contains anything", Interval{}, -4000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.interval.Contains(tt.year))
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", Span(100, 200), Span(300, 400), false},
		{"touching boundary", Span(100, 200), Span(200, 300), true},
		{"nested", Span(100, 400), Span(200, 300), true},
		{"open end meets later span", Since(150), Span(300, 400), true},
		{"open start meets earlier span", Interval{EndYear: Year(150)}, Span(100, 120), true},
		{"open start misses later span", Interval{EndYear: Year(150)}, Span(200, 250), false},
		{"unbounded overlaps everything", Interval{}, Span(-5000, -4999), true},
		{"both unbounded", Interval{}, Interval{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Span(100, 200).Validate())
	require.NoError(t, Span(100, 100).Validate())
	require.NoError(t, Since(100).Validate())
	require.NoError(t, Interval{}.Validate())
	require.Error(t, Span(200, 100).Validate())

	sameYear := Span(100, 100)
	sameYear.StartMonth, sameYear.EndMonth = Year(6), Year(3)
	require.Error(t, sameYear.Validate())
}

func TestOverlapsAny(t *testing.T) {
	history := []Interval{Span(100, 150), Span(150, 200), Span(300, 400)}
	hits := Span(140, 160).OverlapsAny(history)
	assert.Equal(t, []int{0, 1}, hits)
	assert.Empty(t, Span(500, 600).OverlapsAny(history))
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		interval Interval
		override string
		want     string
	}{
		{"bounded", Span(450, 500), "", "Year 450 - 500"},
		{"single year", Span(450, 450), "", "Year 450"},
		{"open start", Interval{EndYear: Year(500)}, "", "Before Year 500"},
		{"open end ongoing", Interval{StartYear: Year(450), IsOngoing: true}, "", "Year 450 - Present"},
		{"open end not ongoing", Since(450), "", "Since Year 450"},
		{"circa single year", Interval{StartYear: Year(450), EndYear: Year(450), IsCirca: true}, "", "c. Year 450"},
		{"circa ongoing", Interval{StartYear: Year(450), IsCirca: true, IsOngoing: true}, "", "c. Year 450 - Present"},
		{"unbounded", Interval{}, "", "Unknown time"},
		{"override wins", Span(450, 500), "The Age of Fire", "The Age of Fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.interval.Display(tt.override))
		})
	}
}

func TestYearFilter(t *testing.T) {
	f := YearFilter("timeline_start_year", "timeline_end_year", 475)
	assert.Equal(t, "(timeline_start_year IS NULL OR timeline_start_year <= ?) AND (timeline_end_year IS NULL OR timeline_end_year >= ?)", f.Cond)
	assert.Equal(t, []any{475, 475}, f.Args)
}

func TestRangeFilter(t *testing.T) {
	both := RangeFilter("s", "e", Year(100), Year(500))
	assert.Equal(t, "(e IS NULL OR e >= ?) AND (s IS NULL OR s <= ?)", both.Cond)
	assert.Equal(t, []any{100, 500}, both.Args)

	minOnly := RangeFilter("s", "e", Year(100), nil)
	assert.Equal(t, "(e IS NULL OR e >= ?)", minOnly.Cond)

	none := RangeFilter("s", "e", nil, nil)
	assert.Equal(t, "1 = 1", none.Cond)
	assert.Empty(t, none.Args)
}
