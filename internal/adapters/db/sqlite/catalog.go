package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"gorm.io/gorm"
)

func entryTypeToDomain(m EntryTypeModel) domain.EntryType {
	return domain.EntryType{
		ID:            m.ID,
		WorldID:       m.WorldID,
		ParentID:      m.ParentID,
		Name:          m.Name,
		Slug:          m.Slug,
		IsSystem:      m.IsSystem,
		DefaultTitle:  m.DefaultTitle,
		TitleProperty: m.TitleProperty,
		Settings:      decodeJSON(m.Settings),
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		DeletedAt:     m.DeletedAt,
	}
}

func entryTypeModel(t domain.EntryType) EntryTypeModel {
	return EntryTypeModel{
		ID:            t.ID,
		WorldID:       t.WorldID,
		ParentID:      t.ParentID,
		Name:          t.Name,
		Slug:          t.Slug,
		IsSystem:      t.IsSystem,
		DefaultTitle:  defaultString(t.DefaultTitle, "Untitled"),
		TitleProperty: t.TitleProperty,
		Settings:      encodeJSON(t.Settings),
		CreatedBy:     t.CreatedBy,
	}
}

func (r *Repository) CreateEntryType(ctx context.Context, value domain.EntryType) (domain.EntryType, error) {
	var out domain.EntryType
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if value.ParentID != nil {
			var parent EntryTypeModel
			if err := tx.Where("id = ? AND deleted_at IS NULL", *value.ParentID).First(&parent).Error; err != nil {
				return translateErr(err, "parent entry type")
			}
			if parent.WorldID != value.WorldID {
				return fmt.Errorf("parent entry type: %w", domain.ErrCrossWorld)
			}
		}
		if value.ID == uuid.Nil {
			value.ID = uuid.New()
		}
		m := entryTypeModel(value)
		if err := tx.Create(&m).Error; err != nil {
			return translateErr(err, "entry type")
		}
		out = entryTypeToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) GetEntryType(ctx context.Context, entryTypeID uuid.UUID) (domain.EntryType, error) {
	var m EntryTypeModel
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", entryTypeID).First(&m).Error; err != nil {
		return domain.EntryType{}, translateErr(err, "entry type")
	}
	return entryTypeToDomain(m), nil
}

func (r *Repository) GetEntryTypeBySlug(ctx context.Context, worldID uuid.UUID, slug string) (domain.EntryType, error) {
	var m EntryTypeModel
	err := r.db.WithContext(ctx).
		Where("world_id = ? AND slug = ? AND deleted_at IS NULL", worldID, slug).
		First(&m).Error
	if err != nil {
		return domain.EntryType{}, translateErr(err, "entry type")
	}
	return entryTypeToDomain(m), nil
}

func (r *Repository) ListEntryTypes(ctx context.Context, worldID uuid.UUID, skip, limit int) ([]domain.EntryType, error) {
	q := r.db.WithContext(ctx).Model(&EntryTypeModel{}).
		Where("world_id = ? AND deleted_at IS NULL", worldID).
		Order("name ASC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	rows := make([]EntryTypeModel, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.EntryType, 0, len(rows))
	for _, m := range rows {
		result = append(result, entryTypeToDomain(m))
	}
	return result, nil
}

func (r *Repository) UpdateEntryType(ctx context.Context, value domain.EntryType) (domain.EntryType, error) {
	var out domain.EntryType
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m EntryTypeModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", value.ID).First(&m).Error; err != nil {
			return translateErr(err, "entry type")
		}

		m.ParentID = value.ParentID
		m.Name = value.Name
		m.Slug = value.Slug
		m.DefaultTitle = defaultString(value.DefaultTitle, "Untitled")
		m.TitleProperty = value.TitleProperty
		m.Settings = encodeJSON(value.Settings)
		m.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&m).Error; err != nil {
			return translateErr(err, "entry type")
		}
		out = entryTypeToDomain(m)
		return nil
	})
	return out, err
}

// DeleteEntryType soft-deletes the type only. Existing entries keep
// their type id and remain readable.
func (r *Repository) DeleteEntryType(ctx context.Context, entryTypeID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&EntryTypeModel{}).
		Where("id = ? AND deleted_at IS NULL", entryTypeID).
		Update("deleted_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("entry type: %w", domain.ErrNotFound)
	}
	return nil
}

// --- field definitions ---

func fieldDefinitionToDomain(m FieldDefinitionModel) domain.FieldDefinition {
	var defaultValue map[string]any
	if m.DefaultValue != "" && m.DefaultValue != "null" {
		_ = json.Unmarshal([]byte(m.DefaultValue), &defaultValue)
	}
	return domain.FieldDefinition{
		ID:            m.ID,
		EntryTypeID:   m.EntryTypeID,
		Name:          m.Name,
		Slug:          m.Slug,
		Description:   m.Description,
		FieldType:     domain.FieldType(m.FieldType),
		Config:        decodeJSON(m.Config),
		IsRequired:    m.IsRequired,
		DefaultValue:  defaultValue,
		ShowInTable:   m.ShowInTable,
		ShowInPreview: m.ShowInPreview,
		IsTemporal:    m.IsTemporal,
		Position:      m.Position,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func encodeDefaultValue(m map[string]any) string {
	if m == nil {
		return "null"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "null"
	}
	return string(data)
}

func (r *Repository) CreateFieldDefinition(ctx context.Context, value domain.FieldDefinition) (domain.FieldDefinition, error) {
	var out domain.FieldDefinition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entryType EntryTypeModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", value.EntryTypeID).First(&entryType).Error; err != nil {
			return translateErr(err, "entry type")
		}

		if value.Position == 0 {
			// Append at the end of the schema by default.
			var maxPos *int
			row := tx.Model(&FieldDefinitionModel{}).
				Where("entry_type_id = ?", value.EntryTypeID).
				Select("MAX(position)").Row()
			if err := row.Scan(&maxPos); err == nil && maxPos != nil {
				value.Position = *maxPos + 1
			}
		}

		if value.ID == uuid.Nil {
			value.ID = uuid.New()
		}
		m := FieldDefinitionModel{
			ID:            value.ID,
			EntryTypeID:   value.EntryTypeID,
			Name:          value.Name,
			Slug:          value.Slug,
			Description:   value.Description,
			FieldType:     string(value.FieldType),
			Config:        encodeJSON(value.Config),
			IsRequired:    value.IsRequired,
			DefaultValue:  encodeDefaultValue(value.DefaultValue),
			ShowInTable:   value.ShowInTable,
			ShowInPreview: value.ShowInPreview,
			IsTemporal:    value.IsTemporal,
			Position:      value.Position,
		}
		if err := tx.Create(&m).Error; err != nil {
			return translateErr(err, "field definition")
		}
		out = fieldDefinitionToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) GetFieldDefinition(ctx context.Context, fieldDefinitionID uuid.UUID) (domain.FieldDefinition, error) {
	var m FieldDefinitionModel
	if err := r.db.WithContext(ctx).Where("id = ?", fieldDefinitionID).First(&m).Error; err != nil {
		return domain.FieldDefinition{}, translateErr(err, "field definition")
	}
	return fieldDefinitionToDomain(m), nil
}

func (r *Repository) ListFieldDefinitions(ctx context.Context, entryTypeID uuid.UUID) ([]domain.FieldDefinition, error) {
	rows := make([]FieldDefinitionModel, 0)
	err := r.db.WithContext(ctx).Model(&FieldDefinitionModel{}).
		Where("entry_type_id = ?", entryTypeID).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.FieldDefinition, 0, len(rows))
	for _, m := range rows {
		result = append(result, fieldDefinitionToDomain(m))
	}
	return result, nil
}

func (r *Repository) UpdateFieldDefinition(ctx context.Context, value domain.FieldDefinition) (domain.FieldDefinition, error) {
	var out domain.FieldDefinition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m FieldDefinitionModel
		if err := tx.Where("id = ?", value.ID).First(&m).Error; err != nil {
			return translateErr(err, "field definition")
		}

		// FieldType and IsTemporal are immutable after creation;
		// existing values were written under their contract.
		m.Name = value.Name
		m.Slug = value.Slug
		m.Description = value.Description
		m.Config = encodeJSON(value.Config)
		m.IsRequired = value.IsRequired
		m.DefaultValue = encodeDefaultValue(value.DefaultValue)
		m.ShowInTable = value.ShowInTable
		m.ShowInPreview = value.ShowInPreview
		m.Position = value.Position
		m.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&m).Error; err != nil {
			return translateErr(err, "field definition")
		}
		out = fieldDefinitionToDomain(m)
		return nil
	})
	return out, err
}

// ReorderFieldDefinitions assigns positions 0..n-1 in the given order.
// Definitions of the entry type missing from orderedIDs keep their
// position.
func (r *Repository) ReorderFieldDefinitions(ctx context.Context, entryTypeID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			res := tx.Model(&FieldDefinitionModel{}).
				Where("id = ? AND entry_type_id = ?", id, entryTypeID).
				Update("position", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("field definition %s: %w", id, domain.ErrNotFound)
			}
		}
		return nil
	})
}

func (r *Repository) DeleteFieldDefinition(ctx context.Context, fieldDefinitionID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m FieldDefinitionModel
		if err := tx.Where("id = ?", fieldDefinitionID).First(&m).Error; err != nil {
			return translateErr(err, "field definition")
		}
		if err := tx.Where("field_definition_id = ?", m.ID).Delete(&FieldValueModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
}
