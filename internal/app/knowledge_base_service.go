package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"propertydesk/internal/agentprovider"
	"propertydesk/internal/model"
	"propertydesk/internal/repository"
)

// AdminProfileStore resolves a profile that must exist; a missing row is
// repository.ErrNotFound.
type AdminProfileStore interface {
	GetByID(ctx context.Context, userID string) (*model.Profile, error)
}

type UserAgentStore interface {
	Bind(ctx context.Context, userID, agentID string) error
	Exists(ctx context.Context, userID, agentID string) (bool, error)
	ListAgentIDs(ctx context.Context, userID string) ([]string, error)
}

type DocumentStore interface {
	Save(ctx context.Context, doc *model.KnowledgeBaseDocument) error
	FindByID(ctx context.Context, id string) (*model.KnowledgeBaseDocument, error)
	List(ctx context.Context, ownerID string) ([]model.KnowledgeBaseDocument, error)
	DeleteByID(ctx context.Context, id string) error
}

type AssignmentStore interface {
	ReplaceForAgent(ctx context.Context, agentID, documentID string) error
	FindByAgentID(ctx context.Context, agentID string) (*model.AgentKnowledgeBase, error)
}

type AgentProvider interface {
	Configured() bool
	GetAgent(ctx context.Context, agentID string) (agentprovider.AgentConfig, error)
	UpdateAgent(ctx context.Context, agentID string, cfg agentprovider.AgentConfig) error
	GetDocument(ctx context.Context, documentID string) (map[string]interface{}, error)
}

// KnowledgeBaseService keeps the knowledge base configured on a provider-hosted
// agent in step with the local assignment table.
type KnowledgeBaseService struct {
	profiles    AdminProfileStore
	userAgents  UserAgentStore
	documents   DocumentStore
	assignments AssignmentStore
	provider    AgentProvider
	concurrency int
	logger      *zap.Logger
}

type AssignInput struct {
	CallerID   string
	AgentID    string
	DocumentID string
}

// AgentBinding is one agent the caller may manage, with the document currently
// assigned to it. DocumentID is empty before the first assignment.
type AgentBinding struct {
	AgentID    string `json:"agentId"`
	DocumentID string `json:"documentId,omitempty"`
}

type TrackInput struct {
	CallerID   string
	DocumentID string
	Name       string
}

type ListResult struct {
	Documents []map[string]interface{}
	IsAdmin   bool
}

func NewKnowledgeBaseService(
	profiles AdminProfileStore,
	userAgents UserAgentStore,
	documents DocumentStore,
	assignments AssignmentStore,
	provider AgentProvider,
	concurrency int,
	logger *zap.Logger,
) *KnowledgeBaseService {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeBaseService{
		profiles:    profiles,
		userAgents:  userAgents,
		documents:   documents,
		assignments: assignments,
		provider:    provider,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Assign makes documentID the only knowledge base of agentID, both at the
// provider and locally, and returns the provider's resulting configuration.
// The provider is updated first; the local rows are replaced in one
// transaction only after the provider accepted the change.
func (s *KnowledgeBaseService) Assign(ctx context.Context, input AssignInput) (agentprovider.AgentConfig, error) {
	if input.CallerID == "" {
		return nil, ErrUnauthorized
	}
	agentID := strings.TrimSpace(input.AgentID)
	documentID := strings.TrimSpace(input.DocumentID)
	if agentID == "" || documentID == "" {
		return nil, ErrInvalidInput
	}
	if !s.provider.Configured() {
		return nil, ErrProviderConfig
	}

	isAdmin, err := s.isAdmin(ctx, input.CallerID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		bound, err := s.userAgents.Exists(ctx, input.CallerID, agentID)
		if err != nil {
			return nil, err
		}
		if !bound {
			return nil, ErrForbidden
		}
	}

	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	current, err := s.provider.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	merged := agentprovider.WithKnowledgeBase(current, agentprovider.FileRef(doc.ID, doc.Name))
	if err := s.provider.UpdateAgent(ctx, agentID, merged); err != nil {
		return nil, err
	}

	if err := s.assignments.ReplaceForAgent(ctx, agentID, doc.ID); err != nil {
		s.logger.Error("record knowledge base assignment failed",
			zap.String("agent_id", agentID),
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
		return nil, err
	}

	updated, err := s.provider.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("knowledge base assigned",
		zap.String("agent_id", agentID),
		zap.String("document_id", doc.ID),
		zap.String("caller_id", input.CallerID),
	)
	return updated, nil
}

// List returns the provider's view of every document visible to the caller.
// Documents the provider no longer knows are removed locally; any other
// per-document failure only drops that document from the result.
func (s *KnowledgeBaseService) List(ctx context.Context, callerID string) (*ListResult, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	isAdmin, err := s.isAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !s.provider.Configured() {
		return nil, ErrProviderConfig
	}

	owner := callerID
	if isAdmin {
		owner = ""
	}
	docs, err := s.documents.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	details := make([]map[string]interface{}, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range docs {
		doc := docs[i]
		g.Go(func() error {
			detail, err := s.provider.GetDocument(gctx, doc.ID)
			if err == nil {
				details[i] = detail
				return nil
			}
			s.logger.Warn("fetch knowledge base document failed", zap.String("document_id", doc.ID), zap.Error(err))
			if agentprovider.IsNotFound(err) {
				if err := s.documents.DeleteByID(gctx, doc.ID); err != nil {
					s.logger.Error("delete stale knowledge base document failed", zap.String("document_id", doc.ID), zap.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &ListResult{Documents: make([]map[string]interface{}, 0, len(docs)), IsAdmin: isAdmin}
	for _, detail := range details {
		if detail != nil {
			result.Documents = append(result.Documents, detail)
		}
	}
	return result, nil
}

// Track records a provider document as owned by the caller after checking that
// the provider knows it. A document already tracked by someone else may only be
// re-tracked by an admin, and keeps its original owner.
func (s *KnowledgeBaseService) Track(ctx context.Context, input TrackInput) (*model.KnowledgeBaseDocument, error) {
	if input.CallerID == "" {
		return nil, ErrUnauthorized
	}
	documentID := strings.TrimSpace(input.DocumentID)
	if documentID == "" {
		return nil, ErrInvalidInput
	}
	if !s.provider.Configured() {
		return nil, ErrProviderConfig
	}

	ownerID := input.CallerID
	existing, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.UserID != input.CallerID {
		isAdmin, err := s.isAdmin(ctx, input.CallerID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			return nil, ErrForbidden
		}
		ownerID = existing.UserID
	}

	detail, err := s.provider.GetDocument(ctx, documentID)
	if err != nil {
		if agentprovider.IsNotFound(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		if remote, ok := detail["name"].(string); ok {
			name = remote
		}
	}
	if name == "" {
		name = documentID
	}

	doc := &model.KnowledgeBaseDocument{ID: documentID, Name: name, UserID: ownerID}
	if err := s.documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// BindAgent lets userID manage agentID. Only admins may bind.
func (s *KnowledgeBaseService) BindAgent(ctx context.Context, callerID, userID, agentID string) error {
	if callerID == "" {
		return ErrUnauthorized
	}
	userID = strings.TrimSpace(userID)
	agentID = strings.TrimSpace(agentID)
	if userID == "" || agentID == "" {
		return ErrInvalidInput
	}
	isAdmin, err := s.isAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrAdminRequired
	}
	return s.userAgents.Bind(ctx, userID, agentID)
}

func (s *KnowledgeBaseService) ListAgents(ctx context.Context, callerID string) ([]AgentBinding, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	ids, err := s.userAgents.ListAgentIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}
	bindings := make([]AgentBinding, 0, len(ids))
	for _, id := range ids {
		binding := AgentBinding{AgentID: id}
		row, err := s.assignments.FindByAgentID(ctx, id)
		if err != nil {
			return nil, err
		}
		if row != nil {
			binding.DocumentID = row.DocumentID
		}
		bindings = append(bindings, binding)
	}
	return bindings, nil
}

func (s *KnowledgeBaseService) isAdmin(ctx context.Context, userID string) (bool, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrProfileNotFound
		}
		return false, fmt.Errorf("fetch profile failed: %w", err)
	}
	return profile.IsAdmin, nil
}
