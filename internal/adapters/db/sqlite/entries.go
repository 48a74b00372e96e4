package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"github.com/nthomsencph/wikiworlds/internal/timeline"
	"github.com/nthomsencph/wikiworlds/internal/treepath"
	"gorm.io/gorm"
)

// Subtree matching uses GLOB instead of LIKE: path segments contain
// underscores, which LIKE treats as a single-character wildcard.
func subtreePattern(path string) string {
	return path + treepath.Separator + "*"
}

func entryToDomain(m EntryModel) domain.Entry {
	return domain.Entry{
		ID:              m.ID,
		WorldID:         m.WorldID,
		EntryTypeID:     m.EntryTypeID,
		Path:            m.Path,
		Title:           m.Title,
		Slug:            m.Slug,
		Icon:            m.Icon,
		CoverImage:      m.CoverImage,
		Timeline:        m.interval(),
		TimelineDisplay: m.TimelineDisplay,
		Position:        m.Position,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedBy:       m.UpdatedBy,
		UpdatedAt:       m.UpdatedAt,
		DeletedAt:       m.DeletedAt,
	}
}

func entriesToDomain(rows []EntryModel) []domain.Entry {
	result := make([]domain.Entry, 0, len(rows))
	for _, m := range rows {
		result = append(result, entryToDomain(m))
	}
	return result
}

func (r *Repository) CreateEntry(ctx context.Context, value domain.Entry, parentID *uuid.UUID) (domain.Entry, error) {
	var out domain.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parentPath := ""
		if parentID != nil {
			var parent EntryModel
			if err := tx.Where("id = ? AND deleted_at IS NULL", *parentID).First(&parent).Error; err != nil {
				return translateErr(err, "parent entry")
			}
			if parent.WorldID != value.WorldID {
				return fmt.Errorf("parent entry: %w", domain.ErrCrossWorld)
			}
			parentPath = parent.Path
		}

		// The id is generated up front so the final path lands in a
		// single insert instead of an insert-then-update.
		if value.ID == uuid.Nil {
			value.ID = uuid.New()
		}
		m := EntryModel{
			ID:              value.ID,
			WorldID:         value.WorldID,
			EntryTypeID:     value.EntryTypeID,
			Path:            treepath.Build(parentPath, value.ID),
			Title:           value.Title,
			Slug:            value.Slug,
			Icon:            value.Icon,
			CoverImage:      value.CoverImage,
			TimelineColumns: timelineColumns(value.Timeline),
			TimelineDisplay: value.TimelineDisplay,
			Position:        value.Position,
			CreatedBy:       value.CreatedBy,
			UpdatedBy:       value.CreatedBy,
		}
		if err := tx.Create(&m).Error; err != nil {
			return translateErr(err, "entry")
		}
		out = entryToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) GetEntry(ctx context.Context, entryID uuid.UUID) (domain.Entry, error) {
	var m EntryModel
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", entryID).First(&m).Error; err != nil {
		return domain.Entry{}, translateErr(err, "entry")
	}
	return entryToDomain(m), nil
}

func (r *Repository) GetEntryBySlug(ctx context.Context, worldID uuid.UUID, slug string) (domain.Entry, error) {
	var m EntryModel
	err := r.db.WithContext(ctx).
		Where("world_id = ? AND slug = ? AND deleted_at IS NULL", worldID, slug).
		First(&m).Error
	if err != nil {
		return domain.Entry{}, translateErr(err, "entry")
	}
	return entryToDomain(m), nil
}

func (r *Repository) ListWorldEntries(ctx context.Context, worldID uuid.UUID, filter domain.EntryFilter) ([]domain.Entry, error) {
	q := r.db.WithContext(ctx).Model(&EntryModel{}).
		Where("world_id = ? AND deleted_at IS NULL", worldID)
	if filter.EntryTypeID != nil {
		q = q.Where("entry_type_id = ?", *filter.EntryTypeID)
	}
	if filter.TimelineYear != nil {
		f := timeline.YearFilter("timeline_start_year", "timeline_end_year", *filter.TimelineYear)
		q = q.Where(f.Cond, f.Args...)
	}
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	rows := make([]EntryModel, 0)
	if err := q.Order("position ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

func (r *Repository) ListRootEntries(ctx context.Context, worldID uuid.UUID, entryTypeID *uuid.UUID) ([]domain.Entry, error) {
	q := r.db.WithContext(ctx).Model(&EntryModel{}).
		Where("world_id = ? AND deleted_at IS NULL", worldID).
		Where("instr(path, '.') = 0")
	if entryTypeID != nil {
		q = q.Where("entry_type_id = ?", *entryTypeID)
	}

	rows := make([]EntryModel, 0)
	if err := q.Order("position ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

func (r *Repository) ListChildren(ctx context.Context, parentID uuid.UUID, recursive bool) ([]domain.Entry, error) {
	var parent EntryModel
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", parentID).First(&parent).Error; err != nil {
		return nil, translateErr(err, "entry")
	}

	q := r.db.WithContext(ctx).Model(&EntryModel{}).
		Where("world_id = ? AND deleted_at IS NULL", parent.WorldID).
		Where("path GLOB ?", subtreePattern(parent.Path))
	if !recursive {
		// Direct children carry exactly one more separator than the
		// parent; a second wildcarded separator excludes the rest.
		q = q.Where("path NOT GLOB ?", subtreePattern(parent.Path)+".*")
	}

	rows := make([]EntryModel, 0)
	if err := q.Order("position ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

func (r *Repository) ListAncestors(ctx context.Context, entryID uuid.UUID) ([]domain.Entry, error) {
	var m EntryModel
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", entryID).First(&m).Error; err != nil {
		return nil, translateErr(err, "entry")
	}

	// A row is an ancestor when the target path matches the row's
	// subtree pattern. Depth ascending yields root-to-parent order.
	rows := make([]EntryModel, 0)
	err := r.db.WithContext(ctx).Model(&EntryModel{}).
		Where("world_id = ? AND deleted_at IS NULL", m.WorldID).
		Where("? GLOB (path || '.*')", m.Path).
		Order("length(path) ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

func (r *Repository) UpdateEntry(ctx context.Context, value domain.Entry) (domain.Entry, error) {
	var out domain.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m EntryModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", value.ID).First(&m).Error; err != nil {
			return translateErr(err, "entry")
		}

		// Path is owned by the tree store; direct updates go through
		// MoveEntry only.
		m.Title = value.Title
		m.Slug = value.Slug
		m.Icon = value.Icon
		m.CoverImage = value.CoverImage
		m.TimelineColumns = timelineColumns(value.Timeline)
		m.TimelineDisplay = value.TimelineDisplay
		m.Position = value.Position
		m.UpdatedBy = value.UpdatedBy
		m.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&m).Error; err != nil {
			return translateErr(err, "entry")
		}
		out = entryToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) MoveEntry(ctx context.Context, entryID uuid.UUID, newParentID *uuid.UUID) (domain.Entry, error) {
	var out domain.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m EntryModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", entryID).First(&m).Error; err != nil {
			return translateErr(err, "entry")
		}

		newParentPath := ""
		if newParentID != nil {
			var parent EntryModel
			if err := tx.Where("id = ? AND deleted_at IS NULL", *newParentID).First(&parent).Error; err != nil {
				return translateErr(err, "parent entry")
			}
			if parent.WorldID != m.WorldID {
				return fmt.Errorf("parent entry: %w", domain.ErrCrossWorld)
			}
			if parent.ID == m.ID || treepath.IsDescendantOf(parent.Path, m.Path) {
				return fmt.Errorf("cannot move entry under its own subtree: %w", domain.ErrCircularReference)
			}
			newParentPath = parent.Path
		}

		oldPath := m.Path
		newPath := treepath.Build(newParentPath, m.ID)
		out = entryToDomain(m)
		if newPath == oldPath {
			return nil
		}

		now := time.Now().UTC()
		if err := tx.Model(&EntryModel{}).Where("id = ?", m.ID).
			Updates(map[string]any{"path": newPath, "updated_at": now}).Error; err != nil {
			return err
		}

		// Rewrite every descendant (live or soft-deleted) by prefix
		// substitution, in the same transaction as the parent.
		err := tx.Exec(
			"UPDATE entries SET path = ? || substr(path, ?) WHERE world_id = ? AND path GLOB ?",
			newPath, len(oldPath)+1, m.WorldID, subtreePattern(oldPath),
		).Error
		if err != nil {
			return err
		}

		m.Path = newPath
		m.UpdatedAt = now
		out = entryToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) DeleteEntry(ctx context.Context, entryID uuid.UUID, recursive bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m EntryModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", entryID).First(&m).Error; err != nil {
			return translateErr(err, "entry")
		}

		now := time.Now().UTC()
		if err := tx.Model(&EntryModel{}).Where("id = ?", m.ID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}

		if recursive {
			err := tx.Model(&EntryModel{}).
				Where("world_id = ? AND path GLOB ? AND deleted_at IS NULL", m.WorldID, subtreePattern(m.Path)).
				Update("deleted_at", now).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// --- field values ---

func fieldValueToDomain(m FieldValueModel) domain.FieldValue {
	return domain.FieldValue{
		ID:                m.ID,
		EntryID:           m.EntryID,
		FieldDefinitionID: m.FieldDefinitionID,
		Value:             decodeJSON(m.Value),
		Timeline:          m.interval(),
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
		UpdatedBy:         m.UpdatedBy,
		UpdatedAt:         m.UpdatedAt,
	}
}

// SetFieldValue upserts the single unbounded row for non-temporal
// writes and appends a new row for temporal ones. Overlapping temporal
// intervals are allowed; history is preserved rather than merged.
func (r *Repository) SetFieldValue(ctx context.Context, value domain.FieldValue) (domain.FieldValue, error) {
	var out domain.FieldValue
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if value.Timeline.Unbounded() {
			var existing FieldValueModel
			err := tx.Where(
				"entry_id = ? AND field_definition_id = ? AND timeline_start_year IS NULL AND timeline_end_year IS NULL",
				value.EntryID, value.FieldDefinitionID,
			).First(&existing).Error
			switch {
			case err == nil:
				existing.Value = encodeJSON(value.Value)
				existing.TimelineColumns = timelineColumns(value.Timeline)
				existing.UpdatedBy = value.UpdatedBy
				existing.UpdatedAt = time.Now().UTC()
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				out = fieldValueToDomain(existing)
				return nil
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if value.ID == uuid.Nil {
			value.ID = uuid.New()
		}
		m := FieldValueModel{
			ID:                value.ID,
			EntryID:           value.EntryID,
			FieldDefinitionID: value.FieldDefinitionID,
			Value:             encodeJSON(value.Value),
			TimelineColumns:   timelineColumns(value.Timeline),
			CreatedBy:         value.CreatedBy,
			UpdatedBy:         value.CreatedBy,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		out = fieldValueToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) ListFieldValues(ctx context.Context, entryID uuid.UUID, timelineYear *int) ([]domain.FieldValue, error) {
	q := r.db.WithContext(ctx).Model(&FieldValueModel{}).Where("entry_id = ?", entryID)
	if timelineYear != nil {
		f := timeline.YearFilter("timeline_start_year", "timeline_end_year", *timelineYear)
		q = q.Where(f.Cond, f.Args...)
	}

	rows := make([]FieldValueModel, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.FieldValue, 0, len(rows))
	for _, m := range rows {
		result = append(result, fieldValueToDomain(m))
	}
	return result, nil
}

func (r *Repository) ListFieldValueHistory(ctx context.Context, entryID, fieldDefinitionID uuid.UUID) ([]domain.FieldValue, error) {
	rows := make([]FieldValueModel, 0)
	// NULL start years sort first under ASC, which matches their
	// "ancient/unknown beginning" meaning.
	err := r.db.WithContext(ctx).Model(&FieldValueModel{}).
		Where("entry_id = ? AND field_definition_id = ?", entryID, fieldDefinitionID).
		Order("timeline_start_year ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.FieldValue, 0, len(rows))
	for _, m := range rows {
		result = append(result, fieldValueToDomain(m))
	}
	return result, nil
}

func (r *Repository) DeleteFieldValue(ctx context.Context, fieldValueID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", fieldValueID).Delete(&FieldValueModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("field value: %w", domain.ErrNotFound)
	}
	return nil
}
