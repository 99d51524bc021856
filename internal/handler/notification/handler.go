package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/middleware"
	"github.com/coopcare/admin-api/internal/service/notification"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
	"github.com/coopcare/admin-api/pkg/httputil"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/:id", h.GetNotification)
	}
}

// ListNotifications returns the caller's in-app notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	staffID, ok := middleware.CurrentStaffID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	notifications, err := h.service.ListForRecipient(c.Request.Context(), staffID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) GetNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid notification id", err))
		return
	}

	n, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, n)
}
