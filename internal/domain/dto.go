package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API requests and responses

type LeadDTO struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	Street            string            `json:"street,omitempty"`
	City              string            `json:"city,omitempty"`
	State             string            `json:"state,omitempty"`
	ZipCode           string            `json:"zipCode,omitempty"`
	Status            LeadStatus        `json:"status"`
	AssignedKamID     uuid.UUID         `json:"assignedKamId"`
	AssignedKamName   string            `json:"assignedKamName,omitempty"`
	CallFrequency     CallFrequency     `json:"callFrequency"`
	LastCallDate      *time.Time        `json:"lastCallDate,omitempty"`
	NextCallDate      *time.Time        `json:"nextCallDate,omitempty"`
	AverageOrderValue float64           `json:"averageOrderValue"`
	OrderFrequency    float64           `json:"orderFrequency"`
	TransferHistory   []LeadTransferDTO `json:"transferHistory,omitempty"`
	CreatedAt         string            `json:"createdAt"` // ISO 8601
	UpdatedAt         string            `json:"updatedAt"` // ISO 8601
}

type LeadTransferDTO struct {
	FromKamID uuid.UUID `json:"fromKamId"`
	ToKamID   uuid.UUID `json:"toKamId"`
	Timestamp string    `json:"timestamp"`
}

type ContactDTO struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt string    `json:"createdAt"`
}

type InteractionDTO struct {
	ID         uuid.UUID       `json:"id"`
	LeadID     uuid.UUID       `json:"leadId"`
	Type       InteractionType `json:"type"`
	ContactID  *uuid.UUID      `json:"contactId,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Outcome    string          `json:"outcome,omitempty"`
	OrderValue float64         `json:"orderValue"`
	KamID      uuid.UUID       `json:"kamId"`
	CreatedAt  string          `json:"createdAt"`
}

type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        UserRole   `json:"role"`
	Timezone    string     `json:"timezone"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}

type CreateLeadRequest struct {
	Name          string        `json:"name" validate:"required,max=200"`
	Street        string        `json:"street,omitempty" validate:"max=200"`
	City          string        `json:"city,omitempty" validate:"max=100"`
	State         string        `json:"state,omitempty" validate:"max=100"`
	ZipCode       string        `json:"zipCode,omitempty" validate:"max=20"`
	CallFrequency CallFrequency `json:"callFrequency,omitempty" validate:"omitempty,oneof=DAILY WEEKLY BIWEEKLY MONTHLY"`
	// AssignedKamID is optional; when empty the lead is assigned to the caller
	AssignedKamID *uuid.UUID `json:"assignedKamId,omitempty"`
}

// UpdateLeadRequest carries the user-mutable profile fields. This is the
// static allow-list: anything not here cannot be changed through updates.
type UpdateLeadRequest struct {
	Name          *string        `json:"name,omitempty" validate:"omitempty,max=200"`
	Street        *string        `json:"street,omitempty" validate:"omitempty,max=200"`
	City          *string        `json:"city,omitempty" validate:"omitempty,max=100"`
	State         *string        `json:"state,omitempty" validate:"omitempty,max=100"`
	ZipCode       *string        `json:"zipCode,omitempty" validate:"omitempty,max=20"`
	CallFrequency *CallFrequency `json:"callFrequency,omitempty" validate:"omitempty,oneof=DAILY WEEKLY BIWEEKLY MONTHLY"`
}

type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" validate:"required,oneof=NEW CONTACTED QUALIFIED NEGOTIATING CONVERTED LOST"`
	Notes  string     `json:"notes,omitempty" validate:"max=2000"`
}

type RecordInteractionRequest struct {
	Type       InteractionType `json:"type" validate:"required,oneof=CALL ORDER EMAIL MEETING"`
	ContactID  *uuid.UUID      `json:"contactId,omitempty"`
	Notes      string          `json:"notes,omitempty" validate:"max=2000"`
	Outcome    string          `json:"outcome,omitempty" validate:"max=500"`
	OrderValue float64         `json:"orderValue,omitempty" validate:"gte=0"`
}

type CreateContactRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Role      string `json:"role" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,max=50"`
	IsPrimary bool   `json:"isPrimary,omitempty"`
}

type ReassignLeadRequest struct {
	NewKamID uuid.UUID `json:"newKamId" validate:"required"`
}

type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Name     string   `json:"name" validate:"required,max=200"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=KAM ADMIN"`
	Timezone string   `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// UpdateUserRequest carries the allow-listed user profile fields
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Timezone *string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// LeadPerformance holds the rolling order statistics for a single lead
type LeadPerformance struct {
	TotalOrders          int           `json:"totalOrders"`
	TotalValue           float64       `json:"totalValue"`
	AverageOrderValue    float64       `json:"averageOrderValue"`
	OrderFrequency       float64       `json:"orderFrequency"`
	AverageOrderGapDays  float64       `json:"averageOrderGapDays"`
	OrdersByWeekday      [7]int        `json:"ordersByWeekday"` // index 0 = Sunday
	WeeklyTrends         []WeeklyTrend `json:"weeklyTrends"`
	DaysWithOrders       int           `json:"daysWithOrders"`
	WindowDays           int           `json:"windowDays"`
	ConsistencyPercent   float64       `json:"consistencyPercent"`
}

// WeeklyTrend is one 7-day bucket of order activity, counted from window start
type WeeklyTrend struct {
	WeekStart string  `json:"weekStart"` // local date, YYYY-MM-DD
	Orders    int     `json:"orders"`
	Value     float64 `json:"value"`
}

// KamDashboard aggregates a KAM's portfolio performance over a date range
type KamDashboard struct {
	TotalLeads           int                `json:"totalLeads"`
	LeadsByStatus        map[LeadStatus]int `json:"leadsByStatus"`
	ConversionRate       float64            `json:"conversionRate"`
	TotalCalls           int                `json:"totalCalls"`
	TotalOrders          int                `json:"totalOrders"`
	AverageCallsPerLead  float64            `json:"averageCallsPerLead"`
	AverageOrdersPerLead float64            `json:"averageOrdersPerLead"`
	TotalValue           float64            `json:"totalValue"`
	AverageValuePerLead  float64            `json:"averageValuePerLead"`
	TopLeads             []LeadValue        `json:"topLeads"`
}

// LeadValue ranks a lead by its total order value within a window
type LeadValue struct {
	LeadID uuid.UUID `json:"leadId"`
	Name   string    `json:"name,omitempty"`
	Value  float64   `json:"value"`
}

// KamStats is the 30-day activity summary shown on a user profile
type KamStats struct {
	TotalLeads     int                `json:"totalLeads"`
	LeadsByStatus  map[LeadStatus]int `json:"leadsByStatus"`
	ConversionRate float64            `json:"conversionRate"`
	TotalCalls     int                `json:"totalCalls"`
	TotalOrders    int                `json:"totalOrders"`
	TotalMeetings  int                `json:"totalMeetings"`
	TotalValue     float64            `json:"totalValue"`
}

// PaginatedResponse wraps list responses
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
