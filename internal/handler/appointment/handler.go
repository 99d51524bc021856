package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/scheduling"
	"github.com/coopcare/admin-api/internal/service/appointment"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
	"github.com/coopcare/admin-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appts := r.Group("/appointments")
	{
		appts.POST("", h.CreateAppointment)
		appts.GET("", h.ListAppointments)
		appts.POST("/check-conflicts", h.CheckConflicts)
		appts.GET("/:id", h.GetAppointment)
		appts.PUT("/:id", h.UpdateAppointment)
		appts.POST("/:id/cancel", h.CancelAppointment)
		appts.DELETE("/:id", h.DeleteAppointment)
	}
}

// respondConflicts returns 409 with the conflict list so clients can
// show them and optionally retry with force.
func respondConflicts(c *gin.Context, conflicts []scheduling.Conflict) {
	c.JSON(http.StatusConflict, httputil.Response{
		Success: false,
		Data:    gin.H{"conflicts": conflicts},
		Error: &httputil.Error{
			Code:    int(apperrors.ErrConflict),
			Message: "appointment conflicts detected",
		},
	})
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		var conflictErr *appointment.ConflictError
		if errors.As(err, &conflictErr) {
			respondConflicts(c, conflictErr.Conflicts)
			return
		}
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), id, &req)
	if err != nil {
		var conflictErr *appointment.ConflictError
		if errors.As(err, &conflictErr) {
			respondConflicts(c, conflictErr.Conflicts)
			return
		}
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Body is optional for cancellations.
	_ = c.ShouldBindJSON(&body)

	apt, err := h.service.CancelAppointment(c.Request.Context(), id, body.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{
		Status: model.AppointmentStatus(c.Query("status")),
	}
	if raw := c.Query("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid staff_id", err))
			return
		}
		filters.StaffID = id
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient_id", err))
			return
		}
		filters.PatientID = id
	}
	if err := c.ShouldBindQuery(&filters.Range); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	appts, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appts)
}

type checkConflictsRequest struct {
	AppointmentID *uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	StaffID       uuid.UUID  `json:"staff_id" binding:"required"`
	StartTime     time.Time  `json:"start_time" binding:"required"`
	EndTime       time.Time  `json:"end_time" binding:"required,gtfield=StartTime"`
}

// CheckConflicts runs the advisory scan without booking anything.
func (h *Handler) CheckConflicts(c *gin.Context) {
	var req checkConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	candidate := scheduling.Candidate{
		PatientID: req.PatientID,
		StaffID:   req.StaffID,
		Start:     req.StartTime,
		End:       req.EndTime,
	}
	if req.AppointmentID != nil {
		candidate.ExcludeID = *req.AppointmentID
	}

	conflicts, err := h.service.CheckConflicts(c.Request.Context(), candidate)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []scheduling.Conflict{}
	}
	httputil.RespondWithSuccess(c, gin.H{
		"has_conflicts": len(conflicts) > 0,
		"conflicts":     conflicts,
	})
}
