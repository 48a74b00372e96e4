package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"github.com/nthomsencph/wikiworlds/internal/timeline"
	"gorm.io/gorm"
)

func blockToDomain(m BlockModel) domain.Block {
	return domain.Block{
		ID:              m.ID,
		EntryID:         m.EntryID,
		ParentBlockID:   m.ParentBlockID,
		BlockType:       domain.BlockType(m.BlockType),
		Content:         decodeJSON(m.Content),
		Timeline:        m.interval(),
		TimelineDisplay: m.TimelineDisplay,
		Position:        m.Position,
		Version:         m.Version,
		IsCollapsed:     m.IsCollapsed,
		BackgroundColor: m.BackgroundColor,
		TextColor:       m.TextColor,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedBy:       m.UpdatedBy,
		UpdatedAt:       m.UpdatedAt,
		DeletedAt:       m.DeletedAt,
	}
}

func blockModel(b domain.Block) BlockModel {
	if b.Version < 1 {
		b.Version = 1
	}
	return BlockModel{
		ID:              b.ID,
		EntryID:         b.EntryID,
		ParentBlockID:   b.ParentBlockID,
		BlockType:       string(b.BlockType),
		Content:         encodeJSON(b.Content),
		TimelineColumns: timelineColumns(b.Timeline),
		TimelineDisplay: b.TimelineDisplay,
		Position:        b.Position,
		Version:         b.Version,
		IsCollapsed:     b.IsCollapsed,
		BackgroundColor: b.BackgroundColor,
		TextColor:       b.TextColor,
		CreatedBy:       b.CreatedBy,
		UpdatedBy:       b.CreatedBy,
	}
}

func (r *Repository) CreateBlock(ctx context.Context, value domain.Block) (domain.Block, error) {
	if value.ID == uuid.Nil {
		value.ID = uuid.New()
	}
	m := blockModel(value)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Block{}, translateErr(err, "block")
	}
	return blockToDomain(m), nil
}

// CreateBlocks inserts a batch atomically. Used by the editor when
// pasting or splitting content into several blocks at once.
func (r *Repository) CreateBlocks(ctx context.Context, values []domain.Block) ([]domain.Block, error) {
	models := make([]BlockModel, 0, len(values))
	for _, v := range values {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		models = append(models, blockModel(v))
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range models {
			if err := tx.Create(&models[i]).Error; err != nil {
				return translateErr(err, "block")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result := make([]domain.Block, 0, len(models))
	for _, m := range models {
		result = append(result, blockToDomain(m))
	}
	return result, nil
}

func (r *Repository) GetBlock(ctx context.Context, blockID uuid.UUID) (domain.Block, error) {
	var m BlockModel
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", blockID).First(&m).Error; err != nil {
		return domain.Block{}, translateErr(err, "block")
	}
	return blockToDomain(m), nil
}

func (r *Repository) ListEntryBlocks(ctx context.Context, entryID uuid.UUID, timelineYear *int) ([]domain.Block, error) {
	q := r.db.WithContext(ctx).Model(&BlockModel{}).
		Where("entry_id = ? AND deleted_at IS NULL", entryID)
	if timelineYear != nil {
		f := timeline.YearFilter("timeline_start_year", "timeline_end_year", *timelineYear)
		q = q.Where(f.Cond, f.Args...)
	}

	rows := make([]BlockModel, 0)
	if err := q.Order("position ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Block, 0, len(rows))
	for _, m := range rows {
		result = append(result, blockToDomain(m))
	}
	return result, nil
}

// ListBlocksForEntries fetches live blocks across many entries in one
// query, for aggregate reads like per-entry character counts.
func (r *Repository) ListBlocksForEntries(ctx context.Context, entryIDs []uuid.UUID) ([]domain.Block, error) {
	if len(entryIDs) == 0 {
		return []domain.Block{}, nil
	}
	rows := make([]BlockModel, 0)
	err := r.db.WithContext(ctx).Model(&BlockModel{}).
		Where("entry_id IN ? AND deleted_at IS NULL", entryIDs).
		Order("entry_id ASC, position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.Block, 0, len(rows))
	for _, m := range rows {
		result = append(result, blockToDomain(m))
	}
	return result, nil
}

func (r *Repository) UpdateBlock(ctx context.Context, value domain.Block) (domain.Block, error) {
	var out domain.Block
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m BlockModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", value.ID).First(&m).Error; err != nil {
			return translateErr(err, "block")
		}

		m.BlockType = string(value.BlockType)
		m.Content = encodeJSON(value.Content)
		m.TimelineColumns = timelineColumns(value.Timeline)
		m.TimelineDisplay = value.TimelineDisplay
		m.Position = value.Position
		m.IsCollapsed = value.IsCollapsed
		m.BackgroundColor = value.BackgroundColor
		m.TextColor = value.TextColor
		m.Version++
		m.UpdatedBy = value.UpdatedBy
		m.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		out = blockToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) DeleteBlock(ctx context.Context, blockID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&BlockModel{}).
		Where("id = ? AND deleted_at IS NULL", blockID).
		Update("deleted_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("block: %w", domain.ErrNotFound)
	}
	return nil
}

// --- references ---

func referenceTypeToDomain(m ReferenceTypeModel) domain.ReferenceType {
	return domain.ReferenceType{
		ID:               m.ID,
		WorldID:          m.WorldID,
		Name:             m.Name,
		InverseName:      m.InverseName,
		Slug:             m.Slug,
		InverseSlug:      m.InverseSlug,
		Description:      m.Description,
		SourceEntryTypes: decodeStrings(m.SourceEntryTypes),
		TargetEntryTypes: decodeStrings(m.TargetEntryTypes),
		IsSymmetric:      m.IsSymmetric,
		AllowMultiple:    m.AllowMultiple,
		IsSystem:         m.IsSystem,
		Settings:         decodeJSON(m.Settings),
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		DeletedAt:        m.DeletedAt,
	}
}

func (r *Repository) CreateReferenceType(ctx context.Context, value domain.ReferenceType) (domain.ReferenceType, error) {
	if value.ID == uuid.Nil {
		value.ID = uuid.New()
	}
	m := ReferenceTypeModel{
		ID:               value.ID,
		WorldID:          value.WorldID,
		Name:             value.Name,
		InverseName:      defaultString(value.InverseName, value.Name),
		Slug:             value.Slug,
		InverseSlug:      defaultString(value.InverseSlug, value.Slug),
		Description:      value.Description,
		SourceEntryTypes: encodeStrings(value.SourceEntryTypes),
		TargetEntryTypes: encodeStrings(value.TargetEntryTypes),
		IsSymmetric:      value.IsSymmetric,
		AllowMultiple:    value.AllowMultiple,
		IsSystem:         value.IsSystem,
		Settings:         encodeJSON(value.Settings),
		CreatedBy:        value.CreatedBy,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.ReferenceType{}, translateErr(err, "reference type")
	}
	return referenceTypeToDomain(m), nil
}

func (r *Repository) ListReferenceTypes(ctx context.Context, worldID uuid.UUID) ([]domain.ReferenceType, error) {
	rows := make([]ReferenceTypeModel, 0)
	err := r.db.WithContext(ctx).Model(&ReferenceTypeModel{}).
		Where("world_id = ? AND deleted_at IS NULL", worldID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.ReferenceType, 0, len(rows))
	for _, m := range rows {
		result = append(result, referenceTypeToDomain(m))
	}
	return result, nil
}

func referenceToDomain(m ReferenceModel) domain.Reference {
	return domain.Reference{
		ID:              m.ID,
		ReferenceTypeID: m.ReferenceTypeID,
		SourceEntryID:   m.SourceEntryID,
		TargetEntryID:   m.TargetEntryID,
		Timeline:        m.interval(),
		TimelineDisplay: m.TimelineDisplay,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		DeletedAt:       m.DeletedAt,
	}
}

func (r *Repository) CreateReference(ctx context.Context, value domain.Reference) (domain.Reference, error) {
	var out domain.Reference
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source, target EntryModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", value.SourceEntryID).First(&source).Error; err != nil {
			return translateErr(err, "source entry")
		}
		if err := tx.Where("id = ? AND deleted_at IS NULL", value.TargetEntryID).First(&target).Error; err != nil {
			return translateErr(err, "target entry")
		}
		if source.WorldID != target.WorldID {
			return fmt.Errorf("target entry: %w", domain.ErrCrossWorld)
		}

		if value.ID == uuid.Nil {
			value.ID = uuid.New()
		}
		m := ReferenceModel{
			ID:              value.ID,
			ReferenceTypeID: value.ReferenceTypeID,
			SourceEntryID:   value.SourceEntryID,
			TargetEntryID:   value.TargetEntryID,
			TimelineColumns: timelineColumns(value.Timeline),
			TimelineDisplay: value.TimelineDisplay,
			CreatedBy:       value.CreatedBy,
		}
		if err := tx.Create(&m).Error; err != nil {
			return translateErr(err, "reference")
		}
		out = referenceToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) ListEntryReferences(ctx context.Context, entryID uuid.UUID, incoming bool, timelineYear *int) ([]domain.Reference, error) {
	column := "source_entry_id"
	if incoming {
		column = "target_entry_id"
	}
	q := r.db.WithContext(ctx).Model(&ReferenceModel{}).
		Where(column+" = ? AND deleted_at IS NULL", entryID)
	if timelineYear != nil {
		f := timeline.YearFilter("timeline_start_year", "timeline_end_year", *timelineYear)
		q = q.Where(f.Cond, f.Args...)
	}

	rows := make([]ReferenceModel, 0)
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Reference, 0, len(rows))
	for _, m := range rows {
		result = append(result, referenceToDomain(m))
	}
	return result, nil
}

func (r *Repository) DeleteReference(ctx context.Context, referenceID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&ReferenceModel{}).
		Where("id = ? AND deleted_at IS NULL", referenceID).
		Update("deleted_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reference: %w", domain.ErrNotFound)
	}
	return nil
}
