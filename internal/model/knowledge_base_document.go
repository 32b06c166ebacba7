package model

import "time"

// KnowledgeBaseDocument mirrors a document hosted by the agent provider.
// ID is the provider's document id.
type KnowledgeBaseDocument struct {
	ID        string    `gorm:"size:128;primaryKey" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	UserID    string    `gorm:"type:char(36);not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (KnowledgeBaseDocument) TableName() string { return "knowledge_base_documents" }
