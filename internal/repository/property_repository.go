package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"propertydesk/internal/model"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, property *model.Property) error {
	if err := r.db.WithContext(ctx).Create(property).Error; err != nil {
		return fmt.Errorf("create property failed: %w", err)
	}
	return nil
}

func (r *PropertyRepository) CreateBatch(ctx context.Context, properties []model.Property) error {
	if len(properties) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&properties).Error; err != nil {
		return fmt.Errorf("create properties batch failed: %w", err)
	}
	return nil
}

func (r *PropertyRepository) ListByUserID(ctx context.Context, userID string) ([]model.Property, error) {
	var list []model.Property
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list properties failed: %w", err)
	}
	return list, nil
}

func (r *PropertyRepository) GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Property, error) {
	var property model.Property
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get property failed: %w", err)
	}
	return &property, nil
}

// Update writes the given columns on the caller's property. Columns absent from
// updates are left untouched.
func (r *PropertyRepository) Update(ctx context.Context, id, userID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Property{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update property failed: %w", err)
	}
	return nil
}

// DeleteByIDAndUserID reports whether a row was removed.
func (r *PropertyRepository) DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Property{})
	if result.Error != nil {
		return false, fmt.Errorf("delete property failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
