package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
)

// TenancyService manages weaves (tenants), worlds and memberships.
type TenancyService struct {
	tenancy domain.TenancyRepository
	auth    *AuthService
}

func NewTenancyService(tenancy domain.TenancyRepository, auth *AuthService) *TenancyService {
	return &TenancyService{tenancy: tenancy, auth: auth}
}

func (s *TenancyService) CreateWeave(ctx context.Context, identity domain.Identity, name, slug string) (domain.Weave, error) {
	if name == "" {
		return domain.Weave{}, errors.New("name is required")
	}
	slug = defaultString(slug, domain.Slugify(name))

	weave, err := s.tenancy.CreateWeave(ctx, domain.Weave{
		Name:      name,
		Slug:      slug,
		CreatedBy: identity.User.ID,
	})
	if err != nil {
		return domain.Weave{}, err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "weave.create", "weave", &weave.ID, weave.Slug)
	return weave, nil
}

func (s *TenancyService) GetWeave(ctx context.Context, identity domain.Identity, weaveID uuid.UUID) (domain.Weave, error) {
	if !IsWeaveMember(identity, weaveID) {
		return domain.Weave{}, domain.ErrForbidden
	}
	return s.tenancy.GetWeave(ctx, weaveID)
}

func (s *TenancyService) ListWeaves(ctx context.Context, identity domain.Identity) ([]domain.Weave, error) {
	return s.tenancy.ListUserWeaves(ctx, identity.User.ID)
}

func (s *TenancyService) InviteWeaveUser(ctx context.Context, identity domain.Identity, weaveID, userID uuid.UUID, role string) (domain.WeaveUser, error) {
	if !CanManageWeave(identity, weaveID) {
		return domain.WeaveUser{}, domain.ErrForbidden
	}
	switch role {
	case "admin", "member":
	default:
		return domain.WeaveUser{}, fmt.Errorf("unknown weave role %q", role)
	}
	return s.tenancy.AddWeaveUser(ctx, domain.WeaveUser{
		WeaveID:   weaveID,
		UserID:    userID,
		Role:      role,
		InvitedBy: &identity.User.ID,
	})
}

// CreateWorld seeds the default entry-type taxonomy and records the
// creator as world admin.
func (s *TenancyService) CreateWorld(ctx context.Context, identity domain.Identity, weaveID uuid.UUID, name, slug, description string) (domain.World, error) {
	if !CanManageWeave(identity, weaveID) {
		return domain.World{}, domain.ErrForbidden
	}
	if name == "" {
		return domain.World{}, errors.New("name is required")
	}

	world, err := s.tenancy.CreateWorld(ctx, domain.World{
		WeaveID:     weaveID,
		Name:        name,
		Slug:        defaultString(slug, domain.Slugify(name)),
		Description: description,
		CreatedBy:   identity.User.ID,
	}, domain.DefaultEntryTypes)
	if err != nil {
		return domain.World{}, err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "world.create", "world", &world.ID, world.Slug)
	return world, nil
}

func (s *TenancyService) GetWorld(ctx context.Context, identity domain.Identity, worldID uuid.UUID) (domain.World, error) {
	world, err := s.tenancy.GetWorld(ctx, worldID)
	if err != nil {
		return domain.World{}, err
	}
	if !s.canViewWorld(identity, world) {
		return domain.World{}, domain.ErrForbidden
	}
	return world, nil
}

func (s *TenancyService) ListWorlds(ctx context.Context, identity domain.Identity, weaveID *uuid.UUID) ([]domain.World, error) {
	if weaveID != nil {
		if !IsWeaveMember(identity, *weaveID) {
			return nil, domain.ErrForbidden
		}
		return s.tenancy.ListWeaveWorlds(ctx, *weaveID)
	}
	return s.tenancy.ListUserWorlds(ctx, identity.User.ID)
}

func (s *TenancyService) UpdateWorld(ctx context.Context, identity domain.Identity, value domain.World) (domain.World, error) {
	existing, err := s.tenancy.GetWorld(ctx, value.ID)
	if err != nil {
		return domain.World{}, err
	}
	if !s.canAdminWorld(identity, existing) {
		return domain.World{}, domain.ErrForbidden
	}

	value.WeaveID = existing.WeaveID
	value.UpdatedBy = identity.User.ID
	updated, err := s.tenancy.UpdateWorld(ctx, value)
	if err != nil {
		return domain.World{}, err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "world.update", "world", &updated.ID, updated.Slug)
	return updated, nil
}

func (s *TenancyService) DeleteWorld(ctx context.Context, identity domain.Identity, worldID uuid.UUID) error {
	world, err := s.tenancy.GetWorld(ctx, worldID)
	if err != nil {
		return err
	}
	if !s.canAdminWorld(identity, world) {
		return domain.ErrForbidden
	}
	if err := s.tenancy.DeleteWorld(ctx, worldID); err != nil {
		return err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "world.delete", "world", &worldID, world.Slug)
	return nil
}

func (s *TenancyService) AddWorldMember(ctx context.Context, identity domain.Identity, worldID, userID uuid.UUID, role string) (domain.WorldUser, error) {
	world, err := s.tenancy.GetWorld(ctx, worldID)
	if err != nil {
		return domain.WorldUser{}, err
	}
	if !s.canAdminWorld(identity, world) {
		return domain.WorldUser{}, domain.ErrForbidden
	}
	if _, ok := worldRoleRank[role]; !ok {
		return domain.WorldUser{}, fmt.Errorf("unknown world role %q", role)
	}
	return s.tenancy.AddWorldUser(ctx, domain.WorldUser{WorldID: worldID, UserID: userID, Role: role})
}

func (s *TenancyService) ListWorldMembers(ctx context.Context, identity domain.Identity, worldID uuid.UUID) ([]domain.WorldUser, error) {
	world, err := s.tenancy.GetWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if !s.canViewWorld(identity, world) {
		return nil, domain.ErrForbidden
	}
	return s.tenancy.ListWorldMembers(ctx, worldID)
}

func (s *TenancyService) RemoveWorldMember(ctx context.Context, identity domain.Identity, worldID, userID uuid.UUID) error {
	world, err := s.tenancy.GetWorld(ctx, worldID)
	if err != nil {
		return err
	}
	if !s.canAdminWorld(identity, world) {
		return domain.ErrForbidden
	}
	return s.tenancy.RemoveWorldUser(ctx, worldID, userID)
}

// AuthorizeWorld resolves whether the identity may act on the world at
// the given level ("viewer", "editor", "admin"), accounting for weave
// managers and public worlds.
func (s *TenancyService) AuthorizeWorld(ctx context.Context, identity domain.Identity, worldID uuid.UUID, atLeast string) error {
	world, err := s.tenancy.GetWorld(ctx, worldID)
	if err != nil {
		return err
	}
	switch atLeast {
	case "viewer":
		if s.canViewWorld(identity, world) {
			return nil
		}
	case "editor":
		if hasWorldRole(identity, world.ID, "editor") || CanManageWeave(identity, world.WeaveID) {
			return nil
		}
	case "admin":
		if s.canAdminWorld(identity, world) {
			return nil
		}
	}
	return domain.ErrForbidden
}

func (s *TenancyService) canViewWorld(identity domain.Identity, world domain.World) bool {
	if world.IsPublic {
		return true
	}
	return CanViewWorld(identity, world.ID) || CanManageWeave(identity, world.WeaveID)
}

func (s *TenancyService) canAdminWorld(identity domain.Identity, world domain.World) bool {
	return CanAdminWorld(identity, world.ID) || CanManageWeave(identity, world.WeaveID)
}
