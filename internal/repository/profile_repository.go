package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"propertydesk/internal/model"
)

// ErrNotFound is returned by lookups that require exactly one row.
var ErrNotFound = errors.New("record not found")

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns nil, nil when the user has no profile row.
func (r *ProfileRepository) FindByID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query profile failed: %w", err)
	}
	return &profile, nil
}

// GetByID fails with ErrNotFound when the profile row is missing.
func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	return profile, nil
}
