package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propertydesk/internal/agentprovider"
	"propertydesk/internal/app"
	"propertydesk/internal/model"
	"propertydesk/internal/transport/http/middleware"
	"propertydesk/internal/transport/http/response"
)

const (
	assignSuccessMessage = "knowledge base assigned successfully"

	assignRequiredMessage = "agentId and documentId are required"
	trackRequiredMessage  = "documentId is required"
	bindRequiredMessage   = "userId and agentId are required"
)

type KnowledgeBaseService interface {
	Assign(ctx context.Context, input app.AssignInput) (agentprovider.AgentConfig, error)
	List(ctx context.Context, callerID string) (*app.ListResult, error)
	Track(ctx context.Context, input app.TrackInput) (*model.KnowledgeBaseDocument, error)
	BindAgent(ctx context.Context, callerID, userID, agentID string) error
	ListAgents(ctx context.Context, callerID string) ([]app.AgentBinding, error)
}

type KnowledgeBaseHandler struct {
	service KnowledgeBaseService
	logger  *zap.Logger
}

type AssignKnowledgeBaseRequest struct {
	AgentID    string `json:"agentId"`
	DocumentID string `json:"documentId"`
}

type TrackDocumentRequest struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
}

type BindAgentRequest struct {
	UserID  string `json:"userId"`
	AgentID string `json:"agentId"`
}

func NewKnowledgeBaseHandler(service KnowledgeBaseService, logger *zap.Logger) *KnowledgeBaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeBaseHandler{service: service, logger: logger}
}

func (h *KnowledgeBaseHandler) Assign(c *gin.Context) {
	var req AssignKnowledgeBaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, assignRequiredMessage)
		return
	}

	agent, err := h.service.Assign(c.Request.Context(), app.AssignInput{
		CallerID:   middleware.UserID(c),
		AgentID:    req.AgentID,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		h.writeError(c, err, assignRequiredMessage)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": assignSuccessMessage,
		"agent":   agent,
	})
}

func (h *KnowledgeBaseHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": result.Documents,
		"isAdmin":   result.IsAdmin,
	})
}

func (h *KnowledgeBaseHandler) Track(c *gin.Context) {
	var req TrackDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, trackRequiredMessage)
		return
	}

	doc, err := h.service.Track(c.Request.Context(), app.TrackInput{
		CallerID:   middleware.UserID(c),
		DocumentID: req.DocumentID,
		Name:       req.Name,
	})
	if err != nil {
		h.writeError(c, err, trackRequiredMessage)
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Success: true, Message: "ok", Data: doc})
}

func (h *KnowledgeBaseHandler) BindAgent(c *gin.Context) {
	var req BindAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, bindRequiredMessage)
		return
	}
	if err := h.service.BindAgent(c.Request.Context(), middleware.UserID(c), req.UserID, req.AgentID); err != nil {
		h.writeError(c, err, bindRequiredMessage)
		return
	}
	response.OK(c, gin.H{"userId": req.UserID, "agentId": req.AgentID})
}

func (h *KnowledgeBaseHandler) ListAgents(c *gin.Context) {
	bindings, err := h.service.ListAgents(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	response.OK(c, gin.H{"agents": bindings})
}

// writeError maps service errors onto the envelope. required is the message
// reported for app.ErrInvalidInput and names the fields the caller must send.
func (h *KnowledgeBaseHandler) writeError(c *gin.Context, err error, required string) {
	var upstream *agentprovider.UpstreamError
	switch {
	case errors.Is(err, app.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		if required == "" {
			required = err.Error()
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, required)
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrAdminRequired):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
	case errors.Is(err, app.ErrProviderConfig):
		h.logger.Error("agent provider api key missing")
		response.Error(c, http.StatusInternalServerError, response.CodeServerConfig, err.Error())
	case errors.Is(err, app.ErrProfileNotFound):
		h.logger.Error("caller has no profile", zap.String("user_id", middleware.UserID(c)))
		response.Error(c, http.StatusInternalServerError, response.CodeProfileNotFound, "error fetching user profile")
	case errors.As(err, &upstream):
		h.logger.Warn("agent provider rejected request", zap.Int("status", upstream.Status), zap.String("message", upstream.Message))
		response.Error(c, upstream.Status, response.CodeUpstream, upstream.Message)
	default:
		h.logger.Error("knowledge base request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "internal server error")
	}
}
