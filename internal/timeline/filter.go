package timeline

import "fmt"

// Filter is a composable SQL condition over a pair of year columns,
// suitable for pushing temporal predicates into a WHERE clause instead
// of loading rows into memory.
type Filter struct {
	Cond string
	Args []any
}

// YearFilter matches rows whose interval contains the given year:
// an open start matches any year below, an open end any year above.
func YearFilter(startCol, endCol string, year int) Filter {
	return Filter{
		Cond: fmt.Sprintf("(%s IS NULL OR %s <= ?) AND (%s IS NULL OR %s >= ?)", startCol, startCol, endCol, endCol),
		Args: []any{year, year},
	}
}

// RangeFilter matches rows whose interval intersects [yearMin, yearMax],
// either bound optional. With both bounds nil it matches everything.
func RangeFilter(startCol, endCol string, yearMin, yearMax *int) Filter {
	f := Filter{Cond: "1 = 1"}
	if yearMin != nil {
		f.Cond = fmt.Sprintf("(%s IS NULL OR %s >= ?)", endCol, endCol)
		f.Args = append(f.Args, *yearMin)
	}
	if yearMax != nil {
		cond := fmt.Sprintf("(%s IS NULL OR %s <= ?)", startCol, startCol)
		if yearMin != nil {
			f.Cond += " AND " + cond
		} else {
			f.Cond = cond
		}
		f.Args = append(f.Args, *yearMax)
	}
	return f
}

// OverlapFilter matches rows whose interval overlaps the given period.
// Rows with unknown bounds are considered overlapping on that side.
func OverlapFilter(startCol, endCol string, periodStart, periodEnd *int) Filter {
	return RangeFilter(startCol, endCol, periodStart, periodEnd)
}

// OngoingFilter matches rows with no end year.
func OngoingFilter(endCol string) Filter {
	return Filter{Cond: fmt.Sprintf("%s IS NULL", endCol)}
}

// EndedFilter matches rows with a known end year.
func EndedFilter(endCol string) Filter {
	return Filter{Cond: fmt.Sprintf("%s IS NOT NULL", endCol)}
}

// AncientFilter matches rows with no start year.
func AncientFilter(startCol string) Filter {
	return Filter{Cond: fmt.Sprintf("%s IS NULL", startCol)}
}
