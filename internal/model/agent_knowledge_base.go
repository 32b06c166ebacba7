package model

import "time"

// AgentKnowledgeBase is the single knowledge-base assignment of an agent.
type AgentKnowledgeBase struct {
	AgentID    string    `gorm:"size:128;not null;uniqueIndex" json:"agent_id"`
	DocumentID string    `gorm:"size:128;not null;index" json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AgentKnowledgeBase) TableName() string { return "agent_knowledge_base" }
