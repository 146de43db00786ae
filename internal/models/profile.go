package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the name of a capability granted to a profile
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleBrand          Role = "brand"
	RoleSupervisor     Role = "supervisor"
	RolePromotor       Role = "promotor"
	RoleAsesorDeVentas Role = "asesor_de_ventas"
	RoleClient         Role = "client"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBrand, RoleSupervisor, RolePromotor, RoleAsesorDeVentas, RoleClient:
		return true
	}
	return false
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserProfile is the tenant-scoped record of an auth provider user
type UserProfile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // auth provider user id
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	FullName string    `gorm:"type:varchar(255)" json:"full_name"`
	Email    string    `gorm:"type:varchar(255)" json:"email"`
	Phone    string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Status   string    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	Roles []UserRole `gorm:"foreignKey:UserProfileID" json:"roles"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (UserProfile) TableName() string {
	return "user_profiles"
}

// BeforeCreate hook
func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UserRole assigns a role to a profile, optionally scoped to a tenant,
// brand or distributor
type UserRole struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserProfileID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_profile_id"`
	Role          Role       `gorm:"column:role;type:varchar(50);not null;index" json:"role"`
	Status        string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	TenantID      *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id,omitempty"`
	BrandID       *uuid.UUID `gorm:"type:uuid;index" json:"brand_id,omitempty"`
	DistributorID *uuid.UUID `gorm:"type:uuid;index" json:"distributor_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (UserRole) TableName() string {
	return "user_roles"
}

// BeforeCreate hook
func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the assignment can grant access
func (r UserRole) IsActive() bool {
	return r.Status == StatusActive && !r.DeletedAt.Valid
}
