package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/timeline"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AuthSession struct {
	ID        uint
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type APIToken struct {
	ID        uint
	UserID    uuid.UUID
	Name      string
	TokenHash string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Weave is the top-level tenant. Subscription fields are carried for
// the surrounding product but nothing in this service acts on them.
type Weave struct {
	ID                 uuid.UUID
	Name               string
	Slug               string
	Description        string
	Icon               string
	Color              string
	SubscriptionTier   string
	SubscriptionStatus string
	Settings           map[string]any
	CreatedBy          uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

type WeaveUser struct {
	ID        uint
	WeaveID   uuid.UUID
	UserID    uuid.UUID
	Role      string // owner, admin, member
	Status    string // active, invited, suspended
	InvitedBy *uuid.UUID
	InvitedAt *time.Time
	JoinedAt  time.Time
}

type World struct {
	ID          uuid.UUID
	WeaveID     uuid.UUID
	Name        string
	Slug        string
	Description string
	Icon        string
	CoverImage  string
	Color       string
	IsPublic    bool
	IsTemplate  bool
	Settings    map[string]any
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedBy   uuid.UUID
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

type WorldUser struct {
	ID      uint
	WorldID uuid.UUID
	UserID  uuid.UUID
	Role    string // admin, editor, commenter, viewer
	AddedAt time.Time
}

// EntryType categorizes entries within a world and carries the field
// schema for that category. Entry types form their own tree via
// ParentID, independent of the entry tree.
type EntryType struct {
	ID            uuid.UUID
	WorldID       uuid.UUID
	ParentID      *uuid.UUID
	Name          string
	Slug          string
	IsSystem      bool
	DefaultTitle  string
	TitleProperty string
	Settings      map[string]any
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// FieldType enumerates the supported field value shapes. The set is
// closed: writes with an unknown type are rejected.
type FieldType string

const (
	FieldText           FieldType = "text"
	FieldLongText       FieldType = "long_text"
	FieldNumber         FieldType = "number"
	FieldCheckbox       FieldType = "checkbox"
	FieldDate           FieldType = "date"
	FieldSelect         FieldType = "select"
	FieldMultiSelect    FieldType = "multi_select"
	FieldReference      FieldType = "reference"
	FieldMultiReference FieldType = "multi_reference"
	FieldURL            FieldType = "url"
	FieldEmail          FieldType = "email"
	FieldPhone          FieldType = "phone"
	FieldTimelineDate   FieldType = "timeline_date"
	FieldJSON           FieldType = "json"
)

func (ft FieldType) Valid() bool {
	switch ft {
	case FieldText, FieldLongText, FieldNumber, FieldCheckbox, FieldDate,
		FieldSelect, FieldMultiSelect, FieldReference, FieldMultiReference,
		FieldURL, FieldEmail, FieldPhone, FieldTimelineDate, FieldJSON:
		return true
	}
	return false
}

type FieldDefinition struct {
	ID            uuid.UUID
	EntryTypeID   uuid.UUID
	Name          string
	Slug          string
	Description   string
	FieldType     FieldType
	Config        map[string]any
	IsRequired    bool
	DefaultValue  map[string]any
	ShowInTable   bool
	ShowInPreview bool
	// IsTemporal governs whether values of this field carry a
	// timeline interval and therefore accumulate history.
	IsTemporal bool
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Entry is one node in a world's content tree. Path encodes its full
// ancestry (treepath codec); it is never set directly by callers.
type Entry struct {
	ID          uuid.UUID
	WorldID     uuid.UUID
	EntryTypeID uuid.UUID
	Path        string
	Title       string
	Slug        string
	Icon        string
	CoverImage  string

	Timeline        timeline.Interval
	TimelineDisplay string

	// Position orders siblings via fractional indexing.
	Position float64

	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedBy uuid.UUID
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// FieldValue is one (possibly time-boxed) value of one field on one
// entry. The Value payload shape depends on the field's FieldType.
type FieldValue struct {
	ID                uuid.UUID
	EntryID           uuid.UUID
	FieldDefinitionID uuid.UUID
	Value             map[string]any
	Timeline          timeline.Interval
	CreatedBy         uuid.UUID
	CreatedAt         time.Time
	UpdatedBy         uuid.UUID
	UpdatedAt         time.Time
}

type BlockType string

const (
	BlockParagraph    BlockType = "paragraph"
	BlockHeading1     BlockType = "heading1"
	BlockHeading2     BlockType = "heading2"
	BlockHeading3     BlockType = "heading3"
	BlockQuote        BlockType = "quote"
	BlockCallout      BlockType = "callout"
	BlockBulletList   BlockType = "bullet_list"
	BlockNumberedList BlockType = "numbered_list"
	BlockChecklist    BlockType = "checklist"
	BlockImage        BlockType = "image"
	BlockCode         BlockType = "code"
	BlockDivider      BlockType = "divider"
	BlockEmbed        BlockType = "embed"
	BlockTable        BlockType = "table"
)

// Block is a content unit within an entry. Blocks nest through
// ParentBlockID, a tree independent of the entry path tree.
type Block struct {
	ID            uuid.UUID
	EntryID       uuid.UUID
	ParentBlockID *uuid.UUID
	BlockType     BlockType
	Content       map[string]any

	Timeline        timeline.Interval
	TimelineDisplay string

	Position        float64
	Version         int
	IsCollapsed     bool
	BackgroundColor string
	TextColor       string

	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedBy uuid.UUID
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// ReferenceType defines a bidirectional, typed relationship between
// entries ("rules"/"ruled by", "located in"/"contains").
type ReferenceType struct {
	ID               uuid.UUID
	WorldID          uuid.UUID
	Name             string
	InverseName      string
	Slug             string
	InverseSlug      string
	Description      string
	SourceEntryTypes []string
	TargetEntryTypes []string
	IsSymmetric      bool
	AllowMultiple    bool
	IsSystem         bool
	Settings         map[string]any
	CreatedBy        uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type Reference struct {
	ID              uuid.UUID
	ReferenceTypeID uuid.UUID
	SourceEntryID   uuid.UUID
	TargetEntryID   uuid.UUID

	Timeline        timeline.Interval
	TimelineDisplay string

	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type ActivityLog struct {
	ID          uint
	ActorUserID *uuid.UUID
	Action      string
	TargetType  string
	TargetID    *uuid.UUID
	Metadata    string
	CreatedAt   time.Time
}

type Identity struct {
	User   User
	Weaves map[uuid.UUID]string // weave id -> role
	Worlds map[uuid.UUID]string // world id -> role
}

// EntryFilter narrows ListWorldEntries. TimelineYear, when set, keeps
// only entries whose interval contains that year.
type EntryFilter struct {
	EntryTypeID  *uuid.UUID
	TimelineYear *int
	Skip         int
	Limit        int
}
