package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when no active profile exists for a user
var ErrProfileNotFound = errors.New("user profile not found")

// ProfileRepository handles user profile and role assignment reads
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindActiveProfile loads the active profile of an auth provider user together
// with its active role assignments. Soft-deleted rows are excluded by gorm on
// both tables.
func (r *ProfileRepository) FindActiveProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).
		Preload("Roles", "status = ?", models.StatusActive).
		Where("user_id = ? AND status = ?", userID, models.StatusActive).
		Order("created_at ASC").
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile, nil
}
