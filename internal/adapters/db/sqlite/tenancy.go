package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"gorm.io/gorm"
)

func weaveToDomain(m WeaveModel) domain.Weave {
	return domain.Weave{
		ID:                 m.ID,
		Name:               m.Name,
		Slug:               m.Slug,
		Description:        m.Description,
		Icon:               m.Icon,
		Color:              m.Color,
		SubscriptionTier:   m.SubscriptionTier,
		SubscriptionStatus: m.SubscriptionStatus,
		Settings:           decodeJSON(m.Settings),
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		DeletedAt:          m.DeletedAt,
	}
}

func (r *Repository) CreateWeave(ctx context.Context, value domain.Weave) (domain.Weave, error) {
	var out domain.Weave
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if value.ID == uuid.Nil {
			value.ID = uuid.New()
		}
		m := WeaveModel{
			ID:                 value.ID,
			Name:               value.Name,
			Slug:               value.Slug,
			Description:        value.Description,
			Icon:               value.Icon,
			Color:              value.Color,
			SubscriptionTier:   defaultString(value.SubscriptionTier, "free"),
			SubscriptionStatus: defaultString(value.SubscriptionStatus, "active"),
			Settings:           encodeJSON(value.Settings),
			CreatedBy:          value.CreatedBy,
		}
		if err := tx.Create(&m).Error; err != nil {
			return translateErr(err, "weave")
		}

		owner := WeaveUserModel{
			WeaveID:  m.ID,
			UserID:   value.CreatedBy,
			Role:     "owner",
			Status:   "active",
			JoinedAt: time.Now().UTC(),
		}
		if err := tx.Create(&owner).Error; err != nil {
			return translateErr(err, "weave member")
		}
		out = weaveToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) GetWeave(ctx context.Context, weaveID uuid.UUID) (domain.Weave, error) {
	var m WeaveModel
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", weaveID).First(&m).Error; err != nil {
		return domain.Weave{}, translateErr(err, "weave")
	}
	return weaveToDomain(m), nil
}

func (r *Repository) GetWeaveBySlug(ctx context.Context, slug string) (domain.Weave, error) {
	var m WeaveModel
	if err := r.db.WithContext(ctx).Where("slug = ? AND deleted_at IS NULL", slug).First(&m).Error; err != nil {
		return domain.Weave{}, translateErr(err, "weave")
	}
	return weaveToDomain(m), nil
}

func (r *Repository) ListUserWeaves(ctx context.Context, userID uuid.UUID) ([]domain.Weave, error) {
	rows := make([]WeaveModel, 0)
	err := r.db.WithContext(ctx).Model(&WeaveModel{}).
		Joins("JOIN weave_users ON weave_users.weave_id = weaves.id").
		Where("weave_users.user_id = ? AND weave_users.status = 'active' AND weaves.deleted_at IS NULL", userID).
		Order("weaves.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.Weave, 0, len(rows))
	for _, m := range rows {
		result = append(result, weaveToDomain(m))
	}
	return result, nil
}

func weaveUserToDomain(m WeaveUserModel) domain.WeaveUser {
	return domain.WeaveUser{
		ID:        m.ID,
		WeaveID:   m.WeaveID,
		UserID:    m.UserID,
		Role:      m.Role,
		Status:    m.Status,
		InvitedBy: m.InvitedBy,
		InvitedAt: m.InvitedAt,
		JoinedAt:  m.JoinedAt,
	}
}

func (r *Repository) AddWeaveUser(ctx context.Context, value domain.WeaveUser) (domain.WeaveUser, error) {
	m := WeaveUserModel{
		WeaveID:   value.WeaveID,
		UserID:    value.UserID,
		Role:      value.Role,
		Status:    defaultString(value.Status, "active"),
		InvitedBy: value.InvitedBy,
		InvitedAt: value.InvitedAt,
		JoinedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.WeaveUser{}, translateErr(err, "weave member")
	}
	return weaveUserToDomain(m), nil
}

func (r *Repository) GetWeaveUser(ctx context.Context, weaveID, userID uuid.UUID) (domain.WeaveUser, error) {
	var m WeaveUserModel
	err := r.db.WithContext(ctx).
		Where("weave_id = ? AND user_id = ?", weaveID, userID).
		First(&m).Error
	if err != nil {
		return domain.WeaveUser{}, translateErr(err, "weave member")
	}
	return weaveUserToDomain(m), nil
}

// --- worlds ---

func worldToDomain(m WorldModel) domain.World {
	return domain.World{
		ID:          m.ID,
		WeaveID:     m.WeaveID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Icon:        m.Icon,
		CoverImage:  m.CoverImage,
		Color:       m.Color,
		IsPublic:    m.IsPublic,
		IsTemplate:  m.IsTemplate,
		Settings:    decodeJSON(m.Settings),
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedBy:   m.UpdatedBy,
		UpdatedAt:   m.UpdatedAt,
		DeletedAt:   m.DeletedAt,
	}
}

// CreateWorld creates the world, records the creator as its admin and
// seeds the system entry-type taxonomy, all in one transaction. Seeds
// are inserted in two passes so parents exist before their children.
func (r *Repository) CreateWorld(ctx context.Context, value domain.World, seed []domain.EntryTypeSeed) (domain.World, error) {
	var out domain.World
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var weave WeaveModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", value.WeaveID).First(&weave).Error; err != nil {
			return translateErr(err, "weave")
		}

		if value.ID == uuid.Nil {
			value.ID = uuid.New()
		}
		m := WorldModel{
			ID:          value.ID,
			WeaveID:     value.WeaveID,
			Name:        value.Name,
			Slug:        value.Slug,
			Description: value.Description,
			Icon:        value.Icon,
			CoverImage:  value.CoverImage,
			Color:       value.Color,
			IsPublic:    value.IsPublic,
			IsTemplate:  value.IsTemplate,
			Settings:    encodeJSON(value.Settings),
			CreatedBy:   value.CreatedBy,
			UpdatedBy:   value.CreatedBy,
		}
		if err := tx.Create(&m).Error; err != nil {
			return translateErr(err, "world")
		}

		admin := WorldUserModel{
			WorldID: m.ID,
			UserID:  value.CreatedBy,
			Role:    "admin",
			AddedAt: time.Now().UTC(),
		}
		if err := tx.Create(&admin).Error; err != nil {
			return translateErr(err, "world member")
		}

		idsByName := make(map[string]uuid.UUID, len(seed))
		for _, s := range seed {
			if s.ParentName != "" {
				continue
			}
			id, err := seedEntryType(tx, m.ID, value.CreatedBy, s.Name, nil)
			if err != nil {
				return err
			}
			idsByName[s.Name] = id
		}
		for _, s := range seed {
			if s.ParentName == "" {
				continue
			}
			parentID, ok := idsByName[s.ParentName]
			if !ok {
				return fmt.Errorf("seed parent %q: %w", s.ParentName, domain.ErrNotFound)
			}
			if _, err := seedEntryType(tx, m.ID, value.CreatedBy, s.Name, &parentID); err != nil {
				return err
			}
		}

		out = worldToDomain(m)
		return nil
	})
	return out, err
}

func seedEntryType(tx *gorm.DB, worldID, createdBy uuid.UUID, name string, parentID *uuid.UUID) (uuid.UUID, error) {
	m := EntryTypeModel{
		ID:           uuid.New(),
		WorldID:      worldID,
		ParentID:     parentID,
		Name:         name,
		Slug:         domain.Slugify(name),
		IsSystem:     true,
		DefaultTitle: "Untitled",
		Settings:     "{}",
		CreatedBy:    createdBy,
	}
	if err := tx.Create(&m).Error; err != nil {
		return uuid.Nil, translateErr(err, "entry type")
	}
	return m.ID, nil
}

func (r *Repository) GetWorld(ctx context.Context, worldID uuid.UUID) (domain.World, error) {
	var m WorldModel
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", worldID).First(&m).Error; err != nil {
		return domain.World{}, translateErr(err, "world")
	}
	return worldToDomain(m), nil
}

func (r *Repository) ListWeaveWorlds(ctx context.Context, weaveID uuid.UUID) ([]domain.World, error) {
	rows := make([]WorldModel, 0)
	err := r.db.WithContext(ctx).Model(&WorldModel{}).
		Where("weave_id = ? AND deleted_at IS NULL", weaveID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.World, 0, len(rows))
	for _, m := range rows {
		result = append(result, worldToDomain(m))
	}
	return result, nil
}

func (r *Repository) ListUserWorlds(ctx context.Context, userID uuid.UUID) ([]domain.World, error) {
	rows := make([]WorldModel, 0)
	err := r.db.WithContext(ctx).Model(&WorldModel{}).
		Joins("JOIN world_users ON world_users.world_id = worlds.id").
		Where("world_users.user_id = ? AND worlds.deleted_at IS NULL", userID).
		Order("worlds.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.World, 0, len(rows))
	for _, m := range rows {
		result = append(result, worldToDomain(m))
	}
	return result, nil
}

func (r *Repository) UpdateWorld(ctx context.Context, value domain.World) (domain.World, error) {
	var out domain.World
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m WorldModel
		if err := tx.Where("id = ? AND deleted_at IS NULL", value.ID).First(&m).Error; err != nil {
			return translateErr(err, "world")
		}

		m.Name = value.Name
		m.Slug = value.Slug
		m.Description = value.Description
		m.Icon = value.Icon
		m.CoverImage = value.CoverImage
		m.Color = value.Color
		m.IsPublic = value.IsPublic
		m.IsTemplate = value.IsTemplate
		m.Settings = encodeJSON(value.Settings)
		m.UpdatedBy = value.UpdatedBy
		m.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&m).Error; err != nil {
			return translateErr(err, "world")
		}
		out = worldToDomain(m)
		return nil
	})
	return out, err
}

func (r *Repository) DeleteWorld(ctx context.Context, worldID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&WorldModel{}).
		Where("id = ? AND deleted_at IS NULL", worldID).
		Update("deleted_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("world: %w", domain.ErrNotFound)
	}
	return nil
}

func worldUserToDomain(m WorldUserModel) domain.WorldUser {
	return domain.WorldUser{
		ID:      m.ID,
		WorldID: m.WorldID,
		UserID:  m.UserID,
		Role:    m.Role,
		AddedAt: m.AddedAt,
	}
}

func (r *Repository) AddWorldUser(ctx context.Context, value domain.WorldUser) (domain.WorldUser, error) {
	m := WorldUserModel{
		WorldID: value.WorldID,
		UserID:  value.UserID,
		Role:    value.Role,
		AddedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.WorldUser{}, translateErr(err, "world member")
	}
	return worldUserToDomain(m), nil
}

func (r *Repository) GetWorldUser(ctx context.Context, worldID, userID uuid.UUID) (domain.WorldUser, error) {
	var m WorldUserModel
	err := r.db.WithContext(ctx).
		Where("world_id = ? AND user_id = ?", worldID, userID).
		First(&m).Error
	if err != nil {
		return domain.WorldUser{}, translateErr(err, "world member")
	}
	return worldUserToDomain(m), nil
}

func (r *Repository) ListWorldMembers(ctx context.Context, worldID uuid.UUID) ([]domain.WorldUser, error) {
	rows := make([]WorldUserModel, 0)
	err := r.db.WithContext(ctx).Model(&WorldUserModel{}).
		Where("world_id = ?", worldID).
		Order("added_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.WorldUser, 0, len(rows))
	for _, m := range rows {
		result = append(result, worldUserToDomain(m))
	}
	return result, nil
}

func (r *Repository) RemoveWorldUser(ctx context.Context, worldID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("world_id = ? AND user_id = ?", worldID, userID).
		Delete(&WorldUserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("world member: %w", domain.ErrNotFound)
	}
	return nil
}
