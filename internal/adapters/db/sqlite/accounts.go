package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
)

func userToDomain(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *Repository) CreateUser(ctx context.Context, value domain.User) (domain.User, error) {
	if value.ID == uuid.Nil {
		value.ID = uuid.New()
	}
	m := UserModel{
		ID:           value.ID,
		Email:        value.Email,
		PasswordHash: value.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.User{}, translateErr(err, "user")
	}
	return userToDomain(m), nil
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return domain.User{}, translateErr(err, "user")
	}
	return userToDomain(m), nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&m).Error; err != nil {
		return domain.User{}, translateErr(err, "user")
	}
	return userToDomain(m), nil
}

func (r *Repository) CreateSession(ctx context.Context, value domain.AuthSession) (domain.AuthSession, error) {
	m := SessionModel{
		UserID:    value.UserID,
		TokenHash: value.TokenHash,
		ExpiresAt: value.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.AuthSession{}, translateErr(err, "session")
	}
	value.ID = m.ID
	value.CreatedAt = m.CreatedAt
	return value, nil
}

func (r *Repository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.AuthSession, error) {
	var m SessionModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
		return domain.AuthSession{}, translateErr(err, "session")
	}
	return domain.AuthSession{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *Repository) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	res := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&SessionModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *Repository) CreateAPIToken(ctx context.Context, value domain.APIToken) (domain.APIToken, error) {
	m := APITokenModel{
		UserID:    value.UserID,
		Name:      value.Name,
		TokenHash: value.TokenHash,
		ExpiresAt: value.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.APIToken{}, translateErr(err, "api token")
	}
	value.ID = m.ID
	value.CreatedAt = m.CreatedAt
	return value, nil
}

func (r *Repository) GetAPITokenByTokenHash(ctx context.Context, tokenHash string) (domain.APIToken, error) {
	var m APITokenModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
		return domain.APIToken{}, translateErr(err, "api token")
	}
	return domain.APIToken{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

// MembershipsByUserID loads both role maps in two queries. Used once
// per authenticated request to build the caller's identity.
func (r *Repository) MembershipsByUserID(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, map[uuid.UUID]string, error) {
	weaveRows := make([]WeaveUserModel, 0)
	err := r.db.WithContext(ctx).Model(&WeaveUserModel{}).
		Where("user_id = ? AND status = 'active'", userID).
		Find(&weaveRows).Error
	if err != nil {
		return nil, nil, err
	}
	weaves := make(map[uuid.UUID]string, len(weaveRows))
	for _, m := range weaveRows {
		weaves[m.WeaveID] = m.Role
	}

	worldRows := make([]WorldUserModel, 0)
	err = r.db.WithContext(ctx).Model(&WorldUserModel{}).
		Where("user_id = ?", userID).
		Find(&worldRows).Error
	if err != nil {
		return nil, nil, err
	}
	worlds := make(map[uuid.UUID]string, len(worldRows))
	for _, m := range worldRows {
		worlds[m.WorldID] = m.Role
	}
	return weaves, worlds, nil
}

func (r *Repository) CreateActivityLog(ctx context.Context, value domain.ActivityLog) error {
	m := ActivityLogModel{
		ActorUserID: value.ActorUserID,
		Action:      value.Action,
		TargetType:  value.TargetType,
		TargetID:    value.TargetID,
		Metadata:    value.Metadata,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *Repository) ListActivityLogs(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows := make([]ActivityLogModel, 0)
	err := r.db.WithContext(ctx).Model(&ActivityLogModel{}).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.ActivityLog, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.ActivityLog{
			ID:          m.ID,
			ActorUserID: m.ActorUserID,
			Action:      m.Action,
			TargetType:  m.TargetType,
			TargetID:    m.TargetID,
			Metadata:    m.Metadata,
			CreatedAt:   m.CreatedAt,
		})
	}
	return result, nil
}
