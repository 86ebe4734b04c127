package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxisdesk/booking-api/internal/dateutil"
	"github.com/praxisdesk/booking-api/internal/handler"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/service/appointment"
	apperrors "github.com/praxisdesk/booking-api/pkg/errors"
	"github.com/praxisdesk/booking-api/pkg/metrics"
)

type Handler struct {
	service *appointment.Service
	metrics *metrics.Metrics
}

func NewHandler(service *appointment.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

// RegisterPublicRoutes mounts the endpoints patients reach without a session.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup, cancelThrottle gin.HandlerFunc) {
	r.POST("/appointments", h.Book)
	r.POST("/appointments/cancel", cancelThrottle, h.Cancel)
	r.GET("/appointments/cancel/verify", cancelThrottle, h.VerifyCancellation)
}

// RegisterStaffRoutes mounts the authenticated day view.
func (h *Handler) RegisterStaffRoutes(r *gin.RouterGroup) {
	r.GET("/appointments", h.ListForDate)
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	resp, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.ErrConflict {
			h.metrics.BookingConflicts.Inc()
		}
		handler.RespondError(c, err)
		return
	}

	h.metrics.BookingsTotal.Inc()
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(resp))
}

func (h *Handler) Cancel(c *gin.Context) {
	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("token is required"))
		return
	}

	appt, err := h.service.Cancel(c.Request.Context(), req.Token)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.metrics.CancellationsTotal.Inc()
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"appointment_id": appt.ID,
		"status":         appt.Status,
	}))
}

func (h *Handler) VerifyCancellation(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("token is required"))
		return
	}

	preview, err := h.service.VerifyCancellation(c.Request.Context(), tokenStr)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(preview))
}

func (h *Handler) ListForDate(c *gin.Context) {
	date, err := dateutil.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	appointments, err := h.service.ListForDate(c.Request.Context(), date)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}
