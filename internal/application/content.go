package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
)

// ContentService manages the entry tree, field values, blocks and
// references of a world.
type ContentService struct {
	content domain.ContentRepository
	catalog domain.CatalogRepository
	tenancy *TenancyService
	auth    *AuthService
}

func NewContentService(content domain.ContentRepository, catalog domain.CatalogRepository, tenancy *TenancyService, auth *AuthService) *ContentService {
	return &ContentService{content: content, catalog: catalog, tenancy: tenancy, auth: auth}
}

func (s *ContentService) CreateEntry(ctx context.Context, identity domain.Identity, value domain.Entry, parentID *uuid.UUID) (domain.Entry, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, value.WorldID, "editor"); err != nil {
		return domain.Entry{}, err
	}
	if value.Title == "" {
		return domain.Entry{}, errors.New("title is required")
	}
	if err := value.Timeline.Validate(); err != nil {
		return domain.Entry{}, err
	}
	et, err := s.catalog.GetEntryType(ctx, value.EntryTypeID)
	if err != nil {
		return domain.Entry{}, err
	}
	if et.WorldID != value.WorldID {
		return domain.Entry{}, fmt.Errorf("entry type: %w", domain.ErrCrossWorld)
	}

	value.Slug = defaultString(value.Slug, domain.Slugify(value.Title))
	value.TimelineDisplay = value.Timeline.Display(value.TimelineDisplay)
	value.CreatedBy = identity.User.ID

	created, err := s.content.CreateEntry(ctx, value, parentID)
	if err != nil {
		return domain.Entry{}, err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "entry.create", "entry", &created.ID, created.Slug)
	return created, nil
}

func (s *ContentService) GetEntry(ctx context.Context, identity domain.Identity, entryID uuid.UUID) (domain.Entry, error) {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "viewer"); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

func (s *ContentService) GetEntryBySlug(ctx context.Context, identity domain.Identity, worldID uuid.UUID, slug string) (domain.Entry, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, worldID, "viewer"); err != nil {
		return domain.Entry{}, err
	}
	return s.content.GetEntryBySlug(ctx, worldID, slug)
}

func (s *ContentService) ListEntries(ctx context.Context, identity domain.Identity, worldID uuid.UUID, filter domain.EntryFilter) ([]domain.Entry, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, worldID, "viewer"); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.content.ListWorldEntries(ctx, worldID, filter)
}

func (s *ContentService) ListRootEntries(ctx context.Context, identity domain.Identity, worldID uuid.UUID, entryTypeID *uuid.UUID) ([]domain.Entry, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, worldID, "viewer"); err != nil {
		return nil, err
	}
	return s.content.ListRootEntries(ctx, worldID, entryTypeID)
}

func (s *ContentService) ListChildren(ctx context.Context, identity domain.Identity, parentID uuid.UUID, recursive bool) ([]domain.Entry, error) {
	parent, err := s.content.GetEntry(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, parent.WorldID, "viewer"); err != nil {
		return nil, err
	}
	return s.content.ListChildren(ctx, parentID, recursive)
}

func (s *ContentService) ListAncestors(ctx context.Context, identity domain.Identity, entryID uuid.UUID) ([]domain.Entry, error) {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "viewer"); err != nil {
		return nil, err
	}
	return s.content.ListAncestors(ctx, entryID)
}

func (s *ContentService) UpdateEntry(ctx context.Context, identity domain.Identity, value domain.Entry) (domain.Entry, error) {
	existing, err := s.content.GetEntry(ctx, value.ID)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, existing.WorldID, "editor"); err != nil {
		return domain.Entry{}, err
	}
	if value.Title == "" {
		return domain.Entry{}, errors.New("title is required")
	}
	if err := value.Timeline.Validate(); err != nil {
		return domain.Entry{}, err
	}

	value.WorldID = existing.WorldID
	value.EntryTypeID = existing.EntryTypeID
	value.Slug = defaultString(value.Slug, existing.Slug)
	value.TimelineDisplay = value.Timeline.Display(value.TimelineDisplay)
	value.UpdatedBy = identity.User.ID
	return s.content.UpdateEntry(ctx, value)
}

func (s *ContentService) MoveEntry(ctx context.Context, identity domain.Identity, entryID uuid.UUID, newParentID *uuid.UUID) (domain.Entry, error) {
	existing, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, existing.WorldID, "editor"); err != nil {
		return domain.Entry{}, err
	}
	moved, err := s.content.MoveEntry(ctx, entryID, newParentID)
	if err != nil {
		return domain.Entry{}, err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "entry.move", "entry", &moved.ID, moved.Path)
	return moved, nil
}

func (s *ContentService) DeleteEntry(ctx context.Context, identity domain.Identity, entryID uuid.UUID, recursive bool) error {
	existing, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, existing.WorldID, "editor"); err != nil {
		return err
	}
	// Non-recursive delete hides only the named entry. Descendants stay
	// live and keep their paths, reachable by id, slug or subtree listing.
	if err := s.content.DeleteEntry(ctx, entryID, recursive); err != nil {
		return err
	}
	s.auth.WriteActivity(ctx, &identity.User.ID, "entry.delete", "entry", &entryID, existing.Slug)
	return nil
}

// SetFieldValue validates the value against its definition before
// writing. Non-temporal fields only ever hold one unbounded row;
// temporal fields accumulate dated rows.
func (s *ContentService) SetFieldValue(ctx context.Context, identity domain.Identity, value domain.FieldValue) (domain.FieldValue, error) {
	entry, err := s.content.GetEntry(ctx, value.EntryID)
	if err != nil {
		return domain.FieldValue{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "editor"); err != nil {
		return domain.FieldValue{}, err
	}
	def, err := s.catalog.GetFieldDefinition(ctx, value.FieldDefinitionID)
	if err != nil {
		return domain.FieldValue{}, err
	}
	if def.EntryTypeID != entry.EntryTypeID {
		return domain.FieldValue{}, errors.New("field definition does not belong to the entry's type")
	}
	if !def.IsTemporal && !value.Timeline.Unbounded() {
		return domain.FieldValue{}, fmt.Errorf("field %q is not temporal", def.Slug)
	}
	if err := value.Timeline.Validate(); err != nil {
		return domain.FieldValue{}, err
	}

	value.CreatedBy = identity.User.ID
	value.UpdatedBy = identity.User.ID
	return s.content.SetFieldValue(ctx, value)
}

func (s *ContentService) ListFieldValues(ctx context.Context, identity domain.Identity, entryID uuid.UUID, timelineYear *int) ([]domain.FieldValue, error) {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "viewer"); err != nil {
		return nil, err
	}
	return s.content.ListFieldValues(ctx, entryID, timelineYear)
}

func (s *ContentService) ListFieldValueHistory(ctx context.Context, identity domain.Identity, entryID, fieldDefinitionID uuid.UUID) ([]domain.FieldValue, error) {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "viewer"); err != nil {
		return nil, err
	}
	return s.content.ListFieldValueHistory(ctx, entryID, fieldDefinitionID)
}

func (s *ContentService) DeleteFieldValue(ctx context.Context, identity domain.Identity, entryID, fieldValueID uuid.UUID) error {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "editor"); err != nil {
		return err
	}
	return s.content.DeleteFieldValue(ctx, fieldValueID)
}

// FieldValueOverlap is a pair of history rows whose intervals overlap.
type FieldValueOverlap struct {
	First  domain.FieldValue `json:"first"`
	Second domain.FieldValue `json:"second"`
}

// DetectFieldValueOverlaps reports overlapping intervals in a temporal
// field's history. Overlaps are legal (worlds can have competing
// accounts of the same era); this is a diagnostic read.
func (s *ContentService) DetectFieldValueOverlaps(ctx context.Context, identity domain.Identity, entryID, fieldDefinitionID uuid.UUID) ([]FieldValueOverlap, error) {
	history, err := s.ListFieldValueHistory(ctx, identity, entryID, fieldDefinitionID)
	if err != nil {
		return nil, err
	}

	overlaps := make([]FieldValueOverlap, 0)
	for i := 0; i < len(history); i++ {
		for j := i + 1; j < len(history); j++ {
			if history[i].Timeline.Overlaps(history[j].Timeline) {
				overlaps = append(overlaps, FieldValueOverlap{First: history[i], Second: history[j]})
			}
		}
	}
	return overlaps, nil
}

func (s *ContentService) CreateBlock(ctx context.Context, identity domain.Identity, value domain.Block) (domain.Block, error) {
	if _, err := s.authorizeBlockWrite(ctx, identity, value.EntryID); err != nil {
		return domain.Block{}, err
	}
	if err := validateBlock(&value); err != nil {
		return domain.Block{}, err
	}
	value.CreatedBy = identity.User.ID
	return s.content.CreateBlock(ctx, value)
}

func (s *ContentService) CreateBlocks(ctx context.Context, identity domain.Identity, entryID uuid.UUID, values []domain.Block) ([]domain.Block, error) {
	if _, err := s.authorizeBlockWrite(ctx, identity, entryID); err != nil {
		return nil, err
	}
	for i := range values {
		values[i].EntryID = entryID
		values[i].CreatedBy = identity.User.ID
		if err := validateBlock(&values[i]); err != nil {
			return nil, err
		}
	}
	return s.content.CreateBlocks(ctx, values)
}

func (s *ContentService) ListEntryBlocks(ctx context.Context, identity domain.Identity, entryID uuid.UUID, timelineYear *int) ([]domain.Block, error) {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "viewer"); err != nil {
		return nil, err
	}
	return s.content.ListEntryBlocks(ctx, entryID, timelineYear)
}

func (s *ContentService) UpdateBlock(ctx context.Context, identity domain.Identity, value domain.Block) (domain.Block, error) {
	existing, err := s.content.GetBlock(ctx, value.ID)
	if err != nil {
		return domain.Block{}, err
	}
	if _, err := s.authorizeBlockWrite(ctx, identity, existing.EntryID); err != nil {
		return domain.Block{}, err
	}
	value.EntryID = existing.EntryID
	if err := validateBlock(&value); err != nil {
		return domain.Block{}, err
	}
	value.UpdatedBy = identity.User.ID
	return s.content.UpdateBlock(ctx, value)
}

func (s *ContentService) DeleteBlock(ctx context.Context, identity domain.Identity, blockID uuid.UUID) error {
	existing, err := s.content.GetBlock(ctx, blockID)
	if err != nil {
		return err
	}
	if _, err := s.authorizeBlockWrite(ctx, identity, existing.EntryID); err != nil {
		return err
	}
	return s.content.DeleteBlock(ctx, blockID)
}

// CharacterCounts totals the visible text of every live block per
// entry. Entries with no blocks report zero.
func (s *ContentService) CharacterCounts(ctx context.Context, identity domain.Identity, worldID uuid.UUID, entryIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, worldID, "viewer"); err != nil {
		return nil, err
	}
	blocks, err := s.content.ListBlocksForEntries(ctx, entryIDs)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(entryIDs))
	for _, id := range entryIDs {
		counts[id] = 0
	}
	for _, b := range blocks {
		counts[b.EntryID] += CountBlockCharacters(b)
	}
	return counts, nil
}

func (s *ContentService) CreateReferenceType(ctx context.Context, identity domain.Identity, value domain.ReferenceType) (domain.ReferenceType, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, value.WorldID, "admin"); err != nil {
		return domain.ReferenceType{}, err
	}
	if value.Name == "" {
		return domain.ReferenceType{}, errors.New("name is required")
	}
	value.Slug = defaultString(value.Slug, domain.Slugify(value.Name))
	value.CreatedBy = identity.User.ID
	return s.content.CreateReferenceType(ctx, value)
}

func (s *ContentService) ListReferenceTypes(ctx context.Context, identity domain.Identity, worldID uuid.UUID) ([]domain.ReferenceType, error) {
	if err := s.tenancy.AuthorizeWorld(ctx, identity, worldID, "viewer"); err != nil {
		return nil, err
	}
	return s.content.ListReferenceTypes(ctx, worldID)
}

func (s *ContentService) CreateReference(ctx context.Context, identity domain.Identity, value domain.Reference) (domain.Reference, error) {
	source, err := s.content.GetEntry(ctx, value.SourceEntryID)
	if err != nil {
		return domain.Reference{}, fmt.Errorf("source entry: %w", err)
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, source.WorldID, "editor"); err != nil {
		return domain.Reference{}, err
	}
	if err := value.Timeline.Validate(); err != nil {
		return domain.Reference{}, err
	}
	value.TimelineDisplay = value.Timeline.Display(value.TimelineDisplay)
	value.CreatedBy = identity.User.ID
	return s.content.CreateReference(ctx, value)
}

func (s *ContentService) ListEntryReferences(ctx context.Context, identity domain.Identity, entryID uuid.UUID, incoming bool, timelineYear *int) ([]domain.Reference, error) {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "viewer"); err != nil {
		return nil, err
	}
	return s.content.ListEntryReferences(ctx, entryID, incoming, timelineYear)
}

func (s *ContentService) DeleteReference(ctx context.Context, identity domain.Identity, entryID, referenceID uuid.UUID) error {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "editor"); err != nil {
		return err
	}
	return s.content.DeleteReference(ctx, referenceID)
}

func (s *ContentService) authorizeBlockWrite(ctx context.Context, identity domain.Identity, entryID uuid.UUID) (domain.Entry, error) {
	entry, err := s.content.GetEntry(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := s.tenancy.AuthorizeWorld(ctx, identity, entry.WorldID, "editor"); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

func validateBlock(b *domain.Block) error {
	if b.BlockType == "" {
		return errors.New("block type is required")
	}
	if err := b.Timeline.Validate(); err != nil {
		return err
	}
	b.TimelineDisplay = b.Timeline.Display(b.TimelineDisplay)
	return nil
}
