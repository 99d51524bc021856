package message

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/middleware"
	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/service/message"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
	"github.com/coopcare/admin-api/pkg/httputil"
)

type Handler struct {
	service *message.Service
}

func NewHandler(service *message.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	{
		messages.POST("", h.SendMessage)
		messages.GET("", h.ListMessages)
		messages.GET("/:id", h.GetMessage)
		messages.POST("/:id/read", h.MarkRead)
		messages.DELETE("/:id", h.DeleteMessage)
	}
}

func (h *Handler) SendMessage(c *gin.Context) {
	senderID, ok := middleware.CurrentStaffID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), senderID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, msg)
}

func (h *Handler) GetMessage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid message id", err))
		return
	}

	msg, err := h.service.GetMessage(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	staffID, ok := middleware.CurrentStaffID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid message id", err))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, staffID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"read": true})
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid message id", err))
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListMessages(c *gin.Context) {
	staffID, ok := middleware.CurrentStaffID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	filters := &model.MessageFilters{}
	switch c.Query("box") {
	case "sent":
		filters.SenderID = staffID
	case "unread":
		filters.RecipientID = staffID
		filters.UnreadBy = staffID
	default:
		filters.RecipientID = staffID
	}
	if err := c.ShouldBindQuery(&filters.Range); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, messages)
}
