package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
)

// CatalogService manages entry types and their field schemas.
type CatalogService struct {
	catalog domain.CatalogRepository
	tenancy *TenancyService
	auth    *AuthService
}

func NewCatalogService(catalog domain.CatalogRepository, tenancy *TenancyService, auth *AuthService) *CatalogService {
	return &CatalogService{catalog: catalog, tenancy: tenancy, auth: auth}
}

func (s *CatalogService) CreateEntryType(ctx context.Context, identity domain.Identity, value domain.EntryType) (domain.EntryType, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, value.WorldID, "admin"); err != nil {
		return domain.EntryType{}, err
	}
	if value.Name == "" {
		return domain.EntryType{}, errors.New("name is required")
	}
	value.Slug = defaultString(value.Slug, domain.Slugify(value.Name))
	value.IsSystem = false
	value.CreatedBy = identity.User.ID

	created, err := s.catalog.CreateEntryType(ctx, value)
	if err != nil {
		return domain.EntryType{}, err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "entry_type.create", "entry_type", &created.ID, created.Slug)
	return created, nil
}

func (s *CatalogService) GetEntryType(ctx context.Context, identity domain.Identity, entryTypeID uuid.UUID) (domain.EntryType, error) {
	et, err := s.catalog.GetEntryType(ctx, entryTypeID)
	if err != nil {
		return domain.EntryType{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, et.WorldID, "viewer"); err != nil {
		return domain.EntryType{}, err
	}
	return et, nil
}

func (s *CatalogService) ListEntryTypes(ctx context.Context, identity domain.Identity, worldID uuid.UUID, skip, limit int) ([]domain.EntryType, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, worldID, "viewer"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.catalog.ListEntryTypes(ctx, worldID, skip, limit)
}

func (s *CatalogService) UpdateEntryType(ctx context.Context, identity domain.Identity, value domain.EntryType) (domain.EntryType, error) {
	existing, err := s.catalog.GetEntryType(ctx, value.ID)
	if err != nil {
		return domain.EntryType{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, existing.WorldID, "admin"); err != nil {
		return domain.EntryType{}, err
	}
	if existing.IsSystem && value.Slug != existing.Slug {
		return domain.EntryType{}, errors.New("system entry type slugs cannot change")
	}
	value.WorldID = existing.WorldID
	return s.catalog.UpdateEntryType(ctx, value)
}

func (s *CatalogService) DeleteEntryType(ctx context.Context, identity domain.Identity, entryTypeID uuid.UUID) error {
	existing, err := s.catalog.GetEntryType(ctx, entryTypeID)
	if err != nil {
		return err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, existing.WorldID, "admin"); err != nil {
		return err
	}
	if existing.IsSystem {
		return errors.New("system entry types cannot be deleted")
	}
	if err := s.catalog.DeleteEntryType(ctx, entryTypeID); err != nil {
		return err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "entry_type.delete", "entry_type", &entryTypeID, existing.Slug)
	return nil
}

func (s *CatalogService) CreateFieldDefinition(ctx context.Context, identity domain.Identity, value domain.FieldDefinition) (domain.FieldDefinition, error) {
	et, err := s.catalog.GetEntryType(ctx, value.EntryTypeID)
	if err != nil {
		return domain.FieldDefinition{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, et.WorldID, "admin"); err != nil {
		return domain.FieldDefinition{}, err
	}
	if value.Name == "" {
		return domain.FieldDefinition{}, errors.New("name is required")
	}
	if !value.FieldType.Valid() {
		return domain.FieldDefinition{}, fmt.Errorf("unknown field type %q", value.FieldType)
	}
	value.Slug = defaultString(value.Slug, domain.Slugify(value.Name))
	return s.catalog.CreateFieldDefinition(ctx, value)
}

func (s *CatalogService) ListFieldDefinitions(ctx context.Context, identity domain.Identity, entryTypeID uuid.UUID) ([]domain.FieldDefinition, error) {
	et, err := s.catalog.GetEntryType(ctx, entryTypeID)
	if err != nil {
		return nil, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, et.WorldID, "viewer"); err != nil {
		return nil, err
	}
	return s.catalog.ListFieldDefinitions(ctx, entryTypeID)
}

func (s *CatalogService) UpdateFieldDefinition(ctx context.Context, identity domain.Identity, value domain.FieldDefinition) (domain.FieldDefinition, error) {
	existing, err := s.catalog.GetFieldDefinition(ctx, value.ID)
	if err != nil {
		return domain.FieldDefinition{}, err
	}
	et, err := s.catalog.GetEntryType(ctx, existing.EntryTypeID)
	if err != nil {
		return domain.FieldDefinition{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, et.WorldID, "admin"); err != nil {
		return domain.FieldDefinition{}, err
	}
	value.EntryTypeID = existing.EntryTypeID
	return s.catalog.UpdateFieldDefinition(ctx, value)
}

func (s *CatalogService) ReorderFieldDefinitions(ctx context.Context, identity domain.Identity, entryTypeID uuid.UUID, orderedIDs []uuid.UUID) error {
	et, err := s.catalog.GetEntryType(ctx, entryTypeID)
	if err != nil {
		return err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, et.WorldID, "admin"); err != nil {
		return err
	}
	if len(orderedIDs) == 0 {
		return errors.New("ordered ids are required")
	}
	return s.catalog.ReorderFieldDefinitions(ctx, entryTypeID, orderedIDs)
}

func (s *CatalogService) DeleteFieldDefinition(ctx context.Context, identity domain.Identity, fieldDefinitionID uuid.UUID) error {
	existing, err := s.catalog.GetFieldDefinition(ctx, fieldDefinitionID)
	if err != nil {
		return err
	}
	et, err := s.catalog.GetEntryType(ctx, existing.EntryTypeID)
	if err != nil {
		return err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, et.WorldID, "admin"); err != nil {
		return err
	}
	if err := s.catalog.DeleteFieldDefinition(ctx, fieldDefinitionID); err != nil {
		return err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "field_definition.delete", "field_definition", &fieldDefinitionID, existing.Slug)
	return nil
}
