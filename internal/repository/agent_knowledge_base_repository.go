package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"propertydesk/internal/model"
)

type AgentKnowledgeBaseRepository struct {
	db *gorm.DB
}

func NewAgentKnowledgeBaseRepository(db *gorm.DB) *AgentKnowledgeBaseRepository {
	return &AgentKnowledgeBaseRepository{db: db}
}

// ReplaceForAgent clears every assignment of the agent and inserts the new one
// inside a single transaction, so readers never observe zero or two rows.
func (r *AgentKnowledgeBaseRepository) ReplaceForAgent(ctx context.Context, agentID, documentID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("agent_id = ?", agentID).Delete(&model.AgentKnowledgeBase{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.AgentKnowledgeBase{AgentID: agentID, DocumentID: documentID}).Error
	})
	if err != nil {
		return fmt.Errorf("replace agent knowledge base failed: %w", err)
	}
	return nil
}

// FindByAgentID returns nil, nil when the agent has no assignment yet.
func (r *AgentKnowledgeBaseRepository) FindByAgentID(ctx context.Context, agentID string) (*model.AgentKnowledgeBase, error) {
	var row model.AgentKnowledgeBase
	if err := r.db.WithContext(ctx).Where("agent_id = ?", agentID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get agent knowledge base failed: %w", err)
	}
	return &row, nil
}
