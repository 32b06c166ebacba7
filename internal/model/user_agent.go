package model

import "time"

// UserAgent grants a user management rights over a provider agent.
type UserAgent struct {
	UserID    string    `gorm:"type:char(36);primaryKey" json:"user_id"`
	AgentID   string    `gorm:"size:128;primaryKey" json:"agent_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserAgent) TableName() string { return "user_agents" }
