package domain

import (
	"context"

	"github.com/google/uuid"
)

// ContentRepository owns the entry tree, field value ledger, blocks
// and references. Implementations must apply move and recursive-delete
// cascades atomically: the parent rewrite and every descendant rewrite
// commit together or not at all.
type ContentRepository interface {
	CreateEntry(ctx context.Context, value Entry, parentID *uuid.UUID) (Entry, error)
	GetEntry(ctx context.Context, entryID uuid.UUID) (Entry, error)
	GetEntryBySlug(ctx context.Context, worldID uuid.UUID, slug string) (Entry, error)
	ListWorldEntries(ctx context.Context, worldID uuid.UUID, filter EntryFilter) ([]Entry, error)
	ListRootEntries(ctx context.Context, worldID uuid.UUID, entryTypeID *uuid.UUID) ([]Entry, error)
	ListChildren(ctx context.Context, parentID uuid.UUID, recursive bool) ([]Entry, error)
	ListAncestors(ctx context.Context, entryID uuid.UUID) ([]Entry, error)
	UpdateEntry(ctx context.Context, value Entry) (Entry, error)
	MoveEntry(ctx context.Context, entryID uuid.UUID, newParentID *uuid.UUID) (Entry, error)
	DeleteEntry(ctx context.Context, entryID uuid.UUID, recursive bool) error

	SetFieldValue(ctx context.Context, value FieldValue) (FieldValue, error)
	ListFieldValues(ctx context.Context, entryID uuid.UUID, timelineYear *int) ([]FieldValue, error)
	ListFieldValueHistory(ctx context.Context, entryID, fieldDefinitionID uuid.UUID) ([]FieldValue, error)
	DeleteFieldValue(ctx context.Context, fieldValueID uuid.UUID) error

	CreateBlock(ctx context.Context, value Block) (Block, error)
	CreateBlocks(ctx context.Context, values []Block) ([]Block, error)
	GetBlock(ctx context.Context, blockID uuid.UUID) (Block, error)
	ListEntryBlocks(ctx context.Context, entryID uuid.UUID, timelineYear *int) ([]Block, error)
	ListBlocksForEntries(ctx context.Context, entryIDs []uuid.UUID) ([]Block, error)
	UpdateBlock(ctx context.Context, value Block) (Block, error)
	DeleteBlock(ctx context.Context, blockID uuid.UUID) error

	CreateReferenceType(ctx context.Context, value ReferenceType) (ReferenceType, error)
	ListReferenceTypes(ctx context.Context, worldID uuid.UUID) ([]ReferenceType, error)
	CreateReference(ctx context.Context, value Reference) (Reference, error)
	ListEntryReferences(ctx context.Context, entryID uuid.UUID, incoming bool, timelineYear *int) ([]Reference, error)
	DeleteReference(ctx context.Context, referenceID uuid.UUID) error
}

// CatalogRepository owns entry types and their field schemas.
type CatalogRepository interface {
	CreateEntryType(ctx context.Context, value EntryType) (EntryType, error)
	GetEntryType(ctx context.Context, entryTypeID uuid.UUID) (EntryType, error)
	GetEntryTypeBySlug(ctx context.Context, worldID uuid.UUID, slug string) (EntryType, error)
	ListEntryTypes(ctx context.Context, worldID uuid.UUID, skip, limit int) ([]EntryType, error)
	UpdateEntryType(ctx context.Context, value EntryType) (EntryType, error)
	DeleteEntryType(ctx context.Context, entryTypeID uuid.UUID) error

	CreateFieldDefinition(ctx context.Context, value FieldDefinition) (FieldDefinition, error)
	GetFieldDefinition(ctx context.Context, fieldDefinitionID uuid.UUID) (FieldDefinition, error)
	ListFieldDefinitions(ctx context.Context, entryTypeID uuid.UUID) ([]FieldDefinition, error)
	UpdateFieldDefinition(ctx context.Context, value FieldDefinition) (FieldDefinition, error)
	ReorderFieldDefinitions(ctx context.Context, entryTypeID uuid.UUID, orderedIDs []uuid.UUID) error
	// DeleteFieldDefinition hard-deletes the definition and every
	// field value referencing it, in one transaction.
	DeleteFieldDefinition(ctx context.Context, fieldDefinitionID uuid.UUID) error
}

// TenancyRepository owns weaves, worlds and their memberships.
type TenancyRepository interface {
	CreateWeave(ctx context.Context, value Weave) (Weave, error)
	GetWeave(ctx context.Context, weaveID uuid.UUID) (Weave, error)
	GetWeaveBySlug(ctx context.Context, slug string) (Weave, error)
	ListUserWeaves(ctx context.Context, userID uuid.UUID) ([]Weave, error)
	AddWeaveUser(ctx context.Context, value WeaveUser) (WeaveUser, error)
	GetWeaveUser(ctx context.Context, weaveID, userID uuid.UUID) (WeaveUser, error)

	// CreateWorld also records the creator as world admin and seeds
	// the system entry-type taxonomy, all in one transaction.
	CreateWorld(ctx context.Context, value World, seed []EntryTypeSeed) (World, error)
	GetWorld(ctx context.Context, worldID uuid.UUID) (World, error)
	ListWeaveWorlds(ctx context.Context, weaveID uuid.UUID) ([]World, error)
	ListUserWorlds(ctx context.Context, userID uuid.UUID) ([]World, error)
	UpdateWorld(ctx context.Context, value World) (World, error)
	DeleteWorld(ctx context.Context, worldID uuid.UUID) error
	AddWorldUser(ctx context.Context, value WorldUser) (WorldUser, error)
	GetWorldUser(ctx context.Context, worldID, userID uuid.UUID) (WorldUser, error)
	ListWorldMembers(ctx context.Context, worldID uuid.UUID) ([]WorldUser, error)
	RemoveWorldUser(ctx context.Context, worldID, userID uuid.UUID) error
}

// AccountRepository owns users, auth records and the activity log.
type AccountRepository interface {
	CreateUser(ctx context.Context, value User) (User, error)
	CountUsers(ctx context.Context) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)

	CreateSession(ctx context.Context, value AuthSession) (AuthSession, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (AuthSession, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	CreateAPIToken(ctx context.Context, value APIToken) (APIToken, error)
	GetAPITokenByTokenHash(ctx context.Context, tokenHash string) (APIToken, error)

	MembershipsByUserID(ctx context.Context, userID uuid.UUID) (weaves map[uuid.UUID]string, worlds map[uuid.UUID]string, err error)

	CreateActivityLog(ctx context.Context, value ActivityLog) error
	ListActivityLogs(ctx context.Context, limit int) ([]ActivityLog, error)
}

// EntryTypeSeed is one node of the default taxonomy created for every
// new world. ParentName refers to another seed's Name.
type EntryTypeSeed struct {
	Name       string
	ParentName string
}

// DefaultEntryTypes is the system taxonomy seeded at world creation.
// Four top-level categories, each (except General) with subcategories.
var DefaultEntryTypes = []EntryTypeSeed{
	{Name: "General"},
	{Name: "Places"},
	{Name: "Regions", ParentName: "Places"},
	{Name: "Locations", ParentName: "Places"},
	{Name: "Natural Features", ParentName: "Places"},
	{Name: "People"},
	{Name: "Characters", ParentName: "People"},
	{Name: "Groups", ParentName: "People"},
	{Name: "Organizations", ParentName: "People"},
	{Name: "Concepts"},
	{Name: "Culture", ParentName: "Concepts"},
	{Name: "Magic Systems", ParentName: "Concepts"},
	{Name: "History", ParentName: "Concepts"},
}
