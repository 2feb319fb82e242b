package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the ID in the application so the same models work
// against both postgres and the in-memory sqlite used by tests (the SQL
// migrations carry the postgres-side gen_random_uuid default).
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// LeadStatus represents where a lead sits in the sales funnel
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "NEW"
	LeadStatusContacted   LeadStatus = "CONTACTED"
	LeadStatusQualified   LeadStatus = "QUALIFIED"
	LeadStatusNegotiating LeadStatus = "NEGOTIATING"
	LeadStatusConverted   LeadStatus = "CONVERTED"
	LeadStatusLost        LeadStatus = "LOST"
)

// IsValid checks if the LeadStatus is a valid enum value
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusNegotiating, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

// CallFrequency represents the recurring outreach cadence for a lead
type CallFrequency string

const (
	CallFrequencyDaily    CallFrequency = "DAILY"
	CallFrequencyWeekly   CallFrequency = "WEEKLY"
	CallFrequencyBiweekly CallFrequency = "BIWEEKLY"
	CallFrequencyMonthly  CallFrequency = "MONTHLY"
)

// IsValid checks if the CallFrequency is a valid enum value
func (f CallFrequency) IsValid() bool {
	switch f {
	case CallFrequencyDaily, CallFrequencyWeekly, CallFrequencyBiweekly, CallFrequencyMonthly:
		return true
	}
	return false
}

// Lead represents a prospective or active account owned by a KAM
type Lead struct {
	BaseModel
	Name              string        `gorm:"type:varchar(200);not null;index"`
	Street            string        `gorm:"type:varchar(200)"`
	City              string        `gorm:"type:varchar(100)"`
	State             string        `gorm:"type:varchar(100)"`
	ZipCode           string        `gorm:"type:varchar(20);column:zip_code"`
	Status            LeadStatus    `gorm:"type:varchar(50);not null;default:'NEW';index"`
	AssignedKamID     uuid.UUID     `gorm:"type:uuid;not null;index;column:assigned_kam_id"`
	AssignedKam       *User         `gorm:"foreignKey:AssignedKamID"`
	CallFrequency     CallFrequency `gorm:"type:varchar(20);not null;default:'WEEKLY';column:call_frequency"`
	LastCallDate      *time.Time    `gorm:"index;column:last_call_date"`
	NextCallDate      *time.Time    `gorm:"index;column:next_call_date"`
	AverageOrderValue float64       `gorm:"type:decimal(15,2);not null;default:0;column:average_order_value"`
	OrderFrequency    float64       `gorm:"type:decimal(10,4);not null;default:0;column:order_frequency"`
	// Version is the optimistic-concurrency counter. Every lead mutation
	// must bump it with a WHERE version = ? guard; a zero-row update means
	// another writer won and the operation must be retried by the caller.
	Version         int64          `gorm:"not null;default:0"`
	Contacts        []Contact      `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
	Interactions    []Interaction  `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
	TransferHistory []LeadTransfer `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
}

// LeadTransfer is one append-only ownership-change record for a lead
type LeadTransfer struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	LeadID    uuid.UUID `gorm:"type:uuid;not null;index;column:lead_id"`
	FromKamID uuid.UUID `gorm:"type:uuid;not null;column:from_kam_id"`
	ToKamID   uuid.UUID `gorm:"type:uuid;not null;column:to_kam_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database does not
func (t *LeadTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Contact represents a person at a lead's organization
type Contact struct {
	BaseModel
	LeadID    uuid.UUID `gorm:"type:uuid;not null;index;column:lead_id"`
	Lead      *Lead     `gorm:"foreignKey:LeadID"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Role      string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Phone     string    `gorm:"type:varchar(50);not null"`
	IsPrimary bool      `gorm:"not null;default:false;column:is_primary"`
}

// InteractionType represents the type of interaction
type InteractionType string

const (
	InteractionTypeCall    InteractionType = "CALL"
	InteractionTypeOrder   InteractionType = "ORDER"
	InteractionTypeEmail   InteractionType = "EMAIL"
	InteractionTypeMeeting InteractionType = "MEETING"

	// System-generated audit types, never accepted from API callers
	InteractionTypeStatusChange InteractionType = "STATUS_CHANGE"
	InteractionTypeKamChange    InteractionType = "KAM_CHANGE"
	InteractionTypeKamTransfer  InteractionType = "KAM_TRANSFER"
)

// IsValid checks if the InteractionType is a valid enum value
func (t InteractionType) IsValid() bool {
	switch t {
	case InteractionTypeCall, InteractionTypeOrder, InteractionTypeEmail, InteractionTypeMeeting,
		InteractionTypeStatusChange, InteractionTypeKamChange, InteractionTypeKamTransfer:
		return true
	}
	return false
}

// IsRecordable reports whether callers may record this type directly.
// The remaining types are written by the engine as audit records.
func (t InteractionType) IsRecordable() bool {
	switch t {
	case InteractionTypeCall, InteractionTypeOrder, InteractionTypeEmail, InteractionTypeMeeting:
		return true
	}
	return false
}

// Interaction is an immutable event on a lead's timeline. Rows are only
// ever inserted; ordering is by CreatedAt with insertion order as tiebreak.
type Interaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	LeadID     uuid.UUID       `gorm:"type:uuid;not null;index;column:lead_id"`
	Lead       *Lead           `gorm:"foreignKey:LeadID"`
	Type       InteractionType `gorm:"type:varchar(20);not null;index"`
	ContactID  *uuid.UUID      `gorm:"type:uuid;column:contact_id"`
	Contact    *Contact        `gorm:"foreignKey:ContactID"`
	Notes      string          `gorm:"type:text"`
	Outcome    string          `gorm:"type:varchar(500)"`
	OrderValue float64         `gorm:"type:decimal(15,2);not null;default:0;column:order_value"`
	KamID      uuid.UUID       `gorm:"type:uuid;not null;index;column:kam_id"`
	Kam        *User           `gorm:"foreignKey:KamID"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// BeforeCreate assigns an ID when the database does not
func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// UserRole represents a role a user can have
type UserRole string

const (
	RoleKam   UserRole = "KAM"
	RoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleKam, RoleAdmin:
		return true
	}
	return false
}

// User represents an account manager or admin
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);not null;unique"`
	PasswordHash string     `gorm:"type:varchar(100);not null;column:password_hash" json:"-"`
	Name         string     `gorm:"type:varchar(200);not null"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'KAM';index"`
	Timezone     string     `gorm:"type:varchar(100);not null;default:'UTC'"`
	IsActive     bool       `gorm:"not null;default:true;column:is_active"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
}

// CanOwnLeads reports whether leads may be assigned to this user
func (u *User) CanOwnLeads() bool {
	return u.IsActive && u.Role == RoleKam
}
