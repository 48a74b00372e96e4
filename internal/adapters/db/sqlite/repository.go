package sqlite

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nthomsencph/wikiworlds/internal/domain"
	"github.com/nthomsencph/wikiworlds/internal/timeline"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Repository implements every domain repository port against a single
// sqlite database. All cascading mutations (move, recursive delete,
// world seeding, field-definition cascade) run inside one gorm
// transaction.
type Repository struct {
	db *gorm.DB
}

var (
	_ domain.ContentRepository = (*Repository)(nil)
	_ domain.CatalogRepository = (*Repository)(nil)
	_ domain.TenancyRepository = (*Repository)(nil)
	_ domain.AccountRepository = (*Repository)(nil)
)

func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	// Serialize writers so cascading path rewrites never interleave.
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, err
	}
	return db, nil
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// translateErr maps storage errors onto the domain taxonomy.
func translateErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%s: %w", what, domain.ErrDuplicateSlug)
	default:
		return err
	}
}

func encodeJSON(m map[string]any) string {
	if m == nil {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeJSON(s string) map[string]any {
	if s == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return map[string]any{}
	}
	return m
}

func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStrings(s string) []string {
	var values []string
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return []string{}
	}
	return values
}

func timelineColumns(iv timeline.Interval) TimelineColumns {
	return TimelineColumns{
		TimelineStartYear:  iv.StartYear,
		TimelineStartMonth: iv.StartMonth,
		TimelineStartDay:   iv.StartDay,
		TimelineEndYear:    iv.EndYear,
		TimelineEndMonth:   iv.EndMonth,
		TimelineEndDay:     iv.EndDay,
		TimelineIsCirca:    iv.IsCirca,
		TimelineIsOngoing:  iv.IsOngoing,
	}
}

func (c TimelineColumns) interval() timeline.Interval {
	return timeline.Interval{
		StartYear:  c.TimelineStartYear,
		StartMonth: c.TimelineStartMonth,
		StartDay:   c.TimelineStartDay,
		EndYear:    c.TimelineEndYear,
		EndMonth:   c.TimelineEndMonth,
		EndDay:     c.TimelineEndDay,
		IsCirca:    c.TimelineIsCirca,
		IsOngoing:  c.TimelineIsOngoing,
	}
}

func defaultString(input, fallback string) string {
	if strings.TrimSpace(input) == "" {
		return fallback
	}
	return input
}
