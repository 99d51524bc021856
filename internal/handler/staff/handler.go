package staff

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/service/schedule"
	"github.com/coopcare/admin-api/internal/service/staff"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
	"github.com/coopcare/admin-api/pkg/httputil"
)

type Handler struct {
	service     *staff.Service
	scheduleSvc *schedule.Service
	adminOnly   gin.HandlerFunc
}

// NewHandler builds the staff handler. adminOnly guards the account
// management routes; schedule and availability routes stay open to all
// authenticated staff.
func NewHandler(service *staff.Service, scheduleSvc *schedule.Service, adminOnly gin.HandlerFunc) *Handler {
	return &Handler{service: service, scheduleSvc: scheduleSvc, adminOnly: adminOnly}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	members := r.Group("/staff")
	{
		members.POST("", h.adminOnly, h.CreateStaff)
		members.GET("", h.ListStaff)
		members.GET("/:id", h.GetStaff)
		members.PUT("/:id", h.adminOnly, h.UpdateStaff)
		members.DELETE("/:id", h.adminOnly, h.DeleteStaff)

		members.PUT("/:id/schedule", h.UpsertSchedule)
		members.GET("/:id/schedules", h.ListSchedules)
		members.GET("/:id/availability", h.Availability)
	}
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req model.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	created, err := h.service.CreateStaff(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid staff id", err))
		return
	}

	member, err := h.service.GetStaff(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, member)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid staff id", err))
		return
	}

	var req model.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateStaff(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid staff id", err))
		return
	}

	if err := h.service.DeleteStaff(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListStaff(c *gin.Context) {
	filters := &model.StaffFilters{
		Role:       model.StaffRole(c.Query("role")),
		ActiveOnly: c.Query("active") == "true",
		SearchTerm: c.Query("search"),
	}

	members, err := h.service.ListStaff(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, members)
}

func (h *Handler) UpsertSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid staff id", err))
		return
	}

	var req model.UpsertScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	req.StaffID = id

	sched, err := h.scheduleSvc.UpsertSchedule(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sched)
}

func (h *Handler) ListSchedules(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid staff id", err))
		return
	}

	var rng model.DateRange
	if err := c.ShouldBindQuery(&rng); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	schedules, err := h.scheduleSvc.ListForStaff(c.Request.Context(), id, rng)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedules)
}

// Availability returns open slots for one staff member on one date.
// Query params: date=2026-04-14, duration_mins=30 (defaults to the
// schedule's slot length when omitted).
func (h *Handler) Availability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid staff id", err))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err))
		return
	}

	var duration time.Duration
	if raw := c.Query("duration_mins"); raw != "" {
		mins, err := time.ParseDuration(raw + "m")
		if err != nil || mins <= 0 {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid duration_mins", err))
			return
		}
		duration = mins
	}

	slots, err := h.scheduleSvc.Availability(c.Request.Context(), id, date, duration)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"date":  date.Format("2006-01-02"),
		"slots": slots,
	})
}
