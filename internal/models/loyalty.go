package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand runs its own loyalty program inside a tenant
type Brand struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(100);index" json:"slug"`
	LogoURL     string    `gorm:"type:text" json:"logo_url,omitempty"`
	PrimaryHex  string    `gorm:"type:varchar(7)" json:"primary_color,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	Description string    `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Brand) TableName() string {
	return "brands"
}

// Promotion is a brand campaign redeemable by clients
type Promotion struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BrandID        uuid.UUID `gorm:"type:uuid;not null;index" json:"brand_id"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	PointsRequired int       `gorm:"not null;default:0" json:"points_required"`
	Status         string    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Promotion) TableName() string {
	return "promotions"
}

// Visit is a field visit by a promotor or sales advisor to a client
type Visit struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BrandID         *uuid.UUID `gorm:"type:uuid;index" json:"brand_id,omitempty"`
	DistributorID   *uuid.UUID `gorm:"type:uuid;index" json:"distributor_id,omitempty"`
	AssignedToID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"assigned_to_id"` // user_profiles.id
	ClientProfileID *uuid.UUID `gorm:"type:uuid;index" json:"client_profile_id,omitempty"`
	Status          string     `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	ScheduledAt     time.Time  `gorm:"index" json:"scheduled_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Visit) TableName() string {
	return "visits"
}

// ListParams bounds list queries
type ListParams struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
