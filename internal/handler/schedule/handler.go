package schedule

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/praxisdesk/booking-api/internal/handler"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/service/schedule"
)

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/schedule")
	{
		group.GET("/work-schedules", h.ListWorkSchedules)
		group.PUT("/work-schedules", h.UpsertWorkSchedule)
		group.POST("/slots", h.CreateSlot)
		group.DELETE("/slots/:id", h.DeleteSlot)
		group.POST("/unavailable-days", h.CreateUnavailableDay)
		group.DELETE("/unavailable-days/:id", h.DeleteUnavailableDay)
		group.GET("/unavailable-frames", h.ListUnavailableTimeFrames)
		group.POST("/unavailable-frames", h.CreateUnavailableTimeFrame)
		group.DELETE("/unavailable-frames/:id", h.DeleteUnavailableTimeFrame)
	}
}

func (h *Handler) ListWorkSchedules(c *gin.Context) {
	schedules, err := h.service.ListWorkSchedules(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(schedules))
}

func (h *Handler) UpsertWorkSchedule(c *gin.Context) {
	var req model.UpsertWorkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.UpsertWorkSchedule(c.Request.Context(), *req.Weekday, req.IsWorkingDay)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req model.CreateAvailableSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), *req.Weekday, req.StartTime, req.EndTime)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(slot))
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteSlot)
}

func (h *Handler) CreateUnavailableDay(c *gin.Context) {
	var req model.CreateUnavailableDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	day, err := h.service.CreateUnavailableDay(c.Request.Context(), req.Date)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(day))
}

func (h *Handler) DeleteUnavailableDay(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteUnavailableDay)
}

func (h *Handler) ListUnavailableTimeFrames(c *gin.Context) {
	frames, err := h.service.ListUnavailableTimeFrames(c.Request.Context(), c.Query("date"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(frames))
}

func (h *Handler) CreateUnavailableTimeFrame(c *gin.Context) {
	var req model.CreateUnavailableTimeFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	frame, err := h.service.CreateUnavailableTimeFrame(c.Request.Context(), req.Date, req.StartTime, req.EndTime)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(frame))
}

func (h *Handler) DeleteUnavailableTimeFrame(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteUnavailableTimeFrame)
}

func (h *Handler) deleteByID(c *gin.Context, del func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid id"))
		return
	}

	if err := del(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
