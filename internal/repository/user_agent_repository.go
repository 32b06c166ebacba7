package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"propertydesk/internal/model"
)

type UserAgentRepository struct {
	db *gorm.DB
}

func NewUserAgentRepository(db *gorm.DB) *UserAgentRepository {
	return &UserAgentRepository{db: db}
}

// Bind is idempotent.
func (r *UserAgentRepository) Bind(ctx context.Context, userID, agentID string) error {
	row := &model.UserAgent{UserID: userID, AgentID: agentID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return fmt.Errorf("bind user agent failed: %w", err)
	}
	return nil
}

func (r *UserAgentRepository) Exists(ctx context.Context, userID, agentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserAgent{}).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("query user agent failed: %w", err)
	}
	return count > 0, nil
}

func (r *UserAgentRepository) ListAgentIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.UserAgent{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("agent_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list user agents failed: %w", err)
	}
	return ids, nil
}
