package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PropertyTypeApartment = "apartment"
	PropertyTypeHouse     = "house"

	SourceURL = "url"
	SourceCSV = "csv"
	SourcePDF = "pdf"
)

type Property struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Address     string    `gorm:"size:255;not null" json:"address"`
	City        string    `gorm:"size:128;not null" json:"city"`
	Type        string    `gorm:"size:16;not null" json:"type"`
	Price       float64   `gorm:"not null" json:"price"`
	Surface     float64   `gorm:"not null" json:"surface"`
	Bedrooms    *int      `json:"bedrooms,omitempty"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Source      string    `gorm:"size:8;not null" json:"source"`
	SourceURL   *string   `gorm:"size:2048" json:"source_url,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

func (p *Property) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func IsValidPropertyType(t string) bool {
	return t == PropertyTypeApartment || t == PropertyTypeHouse
}

func IsValidSource(s string) bool {
	return s == SourceURL || s == SourceCSV || s == SourcePDF
}
