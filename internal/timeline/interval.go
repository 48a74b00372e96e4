// Package timeline implements the fictional-timeline interval model.
//
// Every entry, field value, block and reference carries an optional
// validity interval of in-world years, independent of wall-clock time.
// A nil start means "ancient/unknown beginning"; a nil end means
// "ongoing/no known upper bound". The circa and ongoing flags are
// display hints only and never affect filtering.
package timeline

import "fmt"

// Interval is a possibly open-ended range of in-world years. Month and
// day refine the bounds for display; filtering operates on years only.
type Interval struct {
	StartYear  *int `json:"start_year,omitempty"`
	StartMonth *int `json:"start_month,omitempty"`
	StartDay   *int `json:"start_day,omitempty"`

	EndYear  *int `json:"end_year,omitempty"`
	EndMonth *int `json:"end_month,omitempty"`
	EndDay   *int `json:"end_day,omitempty"`

	IsCirca   bool `json:"is_circa,omitempty"`
	IsOngoing bool `json:"is_ongoing,omitempty"`
}

// Year returns a pointer to y, for building intervals inline.
func Year(y int) *int { return &y }

// Span builds a fully bounded interval.
func Span(start, end int) Interval {
	return Interval{StartYear: &start, EndYear: &end}
}

// Since builds an interval with a start year and an open end.
func Since(start int) Interval {
	return Interval{StartYear: &start}
}

// Unbounded reports whether the interval has neither a start nor an end
// year. Unbounded intervals mark non-temporal rows: they contain every
// year and overlap everything.
func (iv Interval) Unbounded() bool {
	return iv.StartYear == nil && iv.EndYear == nil
}

// Contains reports whether the interval covers the given year. Both
// bounds are inclusive; an open bound matches any year on its side.
func (iv Interval) Contains(year int) bool {
	if iv.StartYear != nil && year < *iv.StartYear {
		return false
	}
	if iv.EndYear != nil && year > *iv.EndYear {
		return false
	}
	return true
}

// Overlaps reports whether two intervals share at least one year.
// Open bounds are treated as extending indefinitely, so an interval
// with no bounds overlaps everything. Unknown means possible.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.StartYear != nil && other.EndYear != nil && *other.EndYear < *iv.StartYear {
		return false
	}
	if iv.EndYear != nil && other.StartYear != nil && *other.StartYear > *iv.EndYear {
		return false
	}
	return true
}

// Validate rejects intervals whose start year falls after their end
// year. Sub-year units are compared only when the years are equal.
func (iv Interval) Validate() error {
	if iv.StartYear == nil || iv.EndYear == nil {
		return nil
	}
	if *iv.StartYear > *iv.EndYear {
		return fmt.Errorf("interval start year %d is after end year %d", *iv.StartYear, *iv.EndYear)
	}
	if *iv.StartYear == *iv.EndYear && iv.StartMonth != nil && iv.EndMonth != nil {
		if *iv.StartMonth > *iv.EndMonth {
			return fmt.Errorf("interval start month %d is after end month %d", *iv.StartMonth, *iv.EndMonth)
		}
		if *iv.StartMonth == *iv.EndMonth && iv.StartDay != nil && iv.EndDay != nil && *iv.StartDay > *iv.EndDay {
			return fmt.Errorf("interval start day %d is after end day %d", *iv.StartDay, *iv.EndDay)
		}
	}
	return nil
}

// OverlapsAny returns the indexes of intervals in the slice that
// overlap iv. Used as an optional validation hook by callers that want
// to detect (but not forbid) overlapping temporal values.
func (iv Interval) OverlapsAny(others []Interval) []int {
	var hits []int
	for i, other := range others {
		if iv.Overlaps(other) {
			hits = append(hits, i)
		}
	}
	return hits
}

// Display formats the interval for presentation. The override, when
// set, wins outright. Output matches the forms the UI expects:
//
//	"Unknown time"
//	"Before Year 500"
//	"c. Year 450 - Present"
//	"Since Year 450"
//	"c. Year 450"
//	"Year 450 - 500"
func (iv Interval) Display(override string) string {
	if override != "" {
		return override
	}

	prefix := ""
	if iv.IsCirca {
		prefix = "c. "
	}

	switch {
	case iv.StartYear == nil && iv.EndYear == nil:
		return "Unknown time"
	case iv.StartYear == nil:
		return fmt.Sprintf("Before Year %d", *iv.EndYear)
	case iv.EndYear == nil:
		if iv.IsOngoing {
			return fmt.Sprintf("%sYear %d - Present", prefix, *iv.StartYear)
		}
		return fmt.Sprintf("%sSince Year %d", prefix, *iv.StartYear)
	case *iv.StartYear == *iv.EndYear:
		return fmt.Sprintf("%sYear %d", prefix, *iv.StartYear)
	default:
		return fmt.Sprintf("%sYear %d - %d", prefix, *iv.StartYear, *iv.EndYear)
	}
}
