package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"propertydesk/internal/model"
)

type KnowledgeBaseDocumentRepository struct {
	db *gorm.DB
}

func NewKnowledgeBaseDocumentRepository(db *gorm.DB) *KnowledgeBaseDocumentRepository {
	return &KnowledgeBaseDocumentRepository{db: db}
}

// Save inserts the document or refreshes its name. The owner of an existing
// row is never rewritten.
func (r *KnowledgeBaseDocumentRepository) Save(ctx context.Context, doc *model.KnowledgeBaseDocument) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("save knowledge base document failed: %w", err)
	}
	return nil
}

func (r *KnowledgeBaseDocumentRepository) FindByID(ctx context.Context, id string) (*model.KnowledgeBaseDocument, error) {
	var doc model.KnowledgeBaseDocument
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get knowledge base document failed: %w", err)
	}
	return &doc, nil
}

// List returns the newest documents first. An empty ownerID lists every document.
func (r *KnowledgeBaseDocumentRepository) List(ctx context.Context, ownerID string) ([]model.KnowledgeBaseDocument, error) {
	q := r.db.WithContext(ctx).Model(&model.KnowledgeBaseDocument{})
	if ownerID != "" {
		q = q.Where("user_id = ?", ownerID)
	}
	var list []model.KnowledgeBaseDocument
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list knowledge base documents failed: %w", err)
	}
	return list, nil
}

func (r *KnowledgeBaseDocumentRepository) DeleteByID(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.KnowledgeBaseDocument{}).Error; err != nil {
		return fmt.Errorf("delete knowledge base document failed: %w", err)
	}
	return nil
}
