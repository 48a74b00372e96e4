package sqlite

import (
	"time"

	"github.com/google/uuid"
)

// TimelineColumns is the flattened interval embedded in every temporal
// table. Filtering only reads the year columns; month/day refine
// display.
type TimelineColumns struct {
	TimelineStartYear  *int
	TimelineStartMonth *int
	TimelineStartDay   *int
	TimelineEndYear    *int
	TimelineEndMonth   *int
	TimelineEndDay     *int
	TimelineIsCirca    bool `gorm:"not null;default:false"`
	TimelineIsOngoing  bool `gorm:"not null;default:false"`
}

type UserModel struct {
	ID           uuid.UUID `gorm:"primaryKey"`
	Email        string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

type SessionModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"not null;index"`
	TokenHash string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (SessionModel) TableName() string { return "sessions" }

type APITokenModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"not null;index"`
	Name      string    `gorm:"not null"`
	TokenHash string    `gorm:"not null;uniqueIndex"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}

func (APITokenModel) TableName() string { return "api_tokens" }

type WeaveModel struct {
	ID                 uuid.UUID `gorm:"primaryKey"`
	Name               string    `gorm:"not null"`
	Slug               string    `gorm:"not null;uniqueIndex"`
	Description        string
	Icon               string
	Color              string
	SubscriptionTier   string `gorm:"not null;default:'free'"`
	SubscriptionStatus string `gorm:"not null;default:'active'"`
	Settings           string `gorm:"not null;default:'{}'"`
	CreatedBy          uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

func (WeaveModel) TableName() string { return "weaves" }

type WeaveUserModel struct {
	ID        uint      `gorm:"primaryKey"`
	WeaveID   uuid.UUID `gorm:"not null;index:idx_weave_user,unique"`
	UserID    uuid.UUID `gorm:"not null;index:idx_weave_user,unique"`
	Role      string    `gorm:"not null"`
	Status    string    `gorm:"not null;default:'active'"`
	InvitedBy *uuid.UUID
	InvitedAt *time.Time
	JoinedAt  time.Time
}

func (WeaveUserModel) TableName() string { return "weave_users" }

type WorldModel struct {
	ID          uuid.UUID `gorm:"primaryKey"`
	WeaveID     uuid.UUID `gorm:"not null;index:idx_world_slug,unique"`
	Name        string    `gorm:"not null"`
	Slug        string    `gorm:"not null;index:idx_world_slug,unique"`
	Description string
	Icon        string
	CoverImage  string
	Color       string
	IsPublic    bool   `gorm:"not null;default:false"`
	IsTemplate  bool   `gorm:"not null;default:false"`
	Settings    string `gorm:"not null;default:'{}'"`
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedBy   uuid.UUID
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

func (WorldModel) TableName() string { return "worlds" }

type WorldUserModel struct {
	ID      uint      `gorm:"primaryKey"`
	WorldID uuid.UUID `gorm:"not null;index:idx_world_user,unique"`
	UserID  uuid.UUID `gorm:"not null;index:idx_world_user,unique"`
	Role    string    `gorm:"not null"`
	AddedAt time.Time
}

func (WorldUserModel) TableName() string { return "world_users" }

type EntryTypeModel struct {
	ID            uuid.UUID `gorm:"primaryKey"`
	WorldID       uuid.UUID `gorm:"not null;index;index:idx_entry_type_slug,unique"`
	ParentID      *uuid.UUID
	Name          string `gorm:"not null"`
	Slug          string `gorm:"not null;index:idx_entry_type_slug,unique"`
	IsSystem      bool   `gorm:"not null;default:false"`
	DefaultTitle  string `gorm:"not null;default:'Untitled'"`
	TitleProperty string
	Settings      string `gorm:"not null;default:'{}'"`
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

func (EntryTypeModel) TableName() string { return "entry_types" }

type FieldDefinitionModel struct {
	ID            uuid.UUID `gorm:"primaryKey"`
	EntryTypeID   uuid.UUID `gorm:"not null;index;index:idx_field_def_slug,unique"`
	Name          string    `gorm:"not null"`
	Slug          string    `gorm:"not null;index:idx_field_def_slug,unique"`
	Description   string
	FieldType     string `gorm:"not null"`
	Config        string `gorm:"not null;default:'{}'"`
	IsRequired    bool   `gorm:"not null;default:false"`
	DefaultValue  string `gorm:"not null;default:'null'"`
	ShowInTable   bool   `gorm:"not null;default:true"`
	ShowInPreview bool   `gorm:"not null;default:false"`
	IsTemporal    bool   `gorm:"not null;default:false"`
	Position      int    `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (FieldDefinitionModel) TableName() string { return "field_definitions" }

type EntryModel struct {
	ID          uuid.UUID `gorm:"primaryKey"`
	WorldID     uuid.UUID `gorm:"not null;index;index:idx_entry_slug,unique"`
	EntryTypeID uuid.UUID `gorm:"not null;index"`
	Path        string    `gorm:"not null;index"`
	Title       string    `gorm:"not null"`
	Slug        string    `gorm:"not null;index:idx_entry_slug,unique"`
	Icon        string
	CoverImage  string

	TimelineColumns `gorm:"embedded"`
	TimelineDisplay string

	Position  float64 `gorm:"not null;default:0"`
	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedBy uuid.UUID
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (EntryModel) TableName() string { return "entries" }

type FieldValueModel struct {
	ID                uuid.UUID `gorm:"primaryKey"`
	EntryID           uuid.UUID `gorm:"not null;index:idx_field_value_pair"`
	FieldDefinitionID uuid.UUID `gorm:"not null;index:idx_field_value_pair"`
	Value             string    `gorm:"not null;default:'{}'"`

	TimelineColumns `gorm:"embedded"`

	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedBy uuid.UUID
	UpdatedAt time.Time
}

func (FieldValueModel) TableName() string { return "field_values" }

type BlockModel struct {
	ID            uuid.UUID `gorm:"primaryKey"`
	EntryID       uuid.UUID `gorm:"not null;index"`
	ParentBlockID *uuid.UUID
	BlockType     string `gorm:"not null"`
	Content       string `gorm:"not null;default:'{}'"`

	TimelineColumns `gorm:"embedded"`
	TimelineDisplay string

	Position        float64 `gorm:"not null;default:0"`
	Version         int     `gorm:"not null;default:1"`
	IsCollapsed     bool    `gorm:"not null;default:false"`
	BackgroundColor string
	TextColor       string

	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedBy uuid.UUID
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (BlockModel) TableName() string { return "blocks" }

type ReferenceTypeModel struct {
	ID               uuid.UUID `gorm:"primaryKey"`
	WorldID          uuid.UUID `gorm:"not null;index;index:idx_reference_type_slug,unique"`
	Name             string    `gorm:"not null"`
	InverseName      string    `gorm:"not null"`
	Slug             string    `gorm:"not null;index:idx_reference_type_slug,unique"`
	InverseSlug      string    `gorm:"not null"`
	Description      string
	SourceEntryTypes string `gorm:"not null;default:'[]'"`
	TargetEntryTypes string `gorm:"not null;default:'[]'"`
	IsSymmetric      bool   `gorm:"not null;default:false"`
	AllowMultiple    bool   `gorm:"not null;default:true"`
	IsSystem         bool   `gorm:"not null;default:false"`
	Settings         string `gorm:"not null;default:'{}'"`
	CreatedBy        uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

func (ReferenceTypeModel) TableName() string { return "reference_types" }

type ReferenceModel struct {
	ID              uuid.UUID `gorm:"primaryKey"`
	ReferenceTypeID uuid.UUID `gorm:"not null;index"`
	SourceEntryID   uuid.UUID `gorm:"not null;index"`
	TargetEntryID   uuid.UUID `gorm:"not null;index"`

	TimelineColumns `gorm:"embedded"`
	TimelineDisplay string

	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// "references" is a SQL keyword, so the table gets a prefixed name.
func (ReferenceModel) TableName() string { return "entry_references" }

type ActivityLogModel struct {
	ID          uint `gorm:"primaryKey"`
	ActorUserID *uuid.UUID
	Action      string `gorm:"not null;index"`
	TargetType  string `gorm:"not null;index"`
	TargetID    *uuid.UUID
	Metadata    string
	CreatedAt   time.Time
}

func (ActivityLogModel) TableName() string { return "activity_logs" }
