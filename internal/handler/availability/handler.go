package availability

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxisdesk/booking-api/internal/dateutil"
	"github.com/praxisdesk/booking-api/internal/handler"
	"github.com/praxisdesk/booking-api/internal/service/availability"
	"github.com/praxisdesk/booking-api/pkg/metrics"
)

type Handler struct {
	service *availability.Service
	metrics *metrics.Metrics
}

func NewHandler(service *availability.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/availability/:date", h.GetAvailability)
}

// GetAvailability returns the ordered bookable slots for one date.
func (h *Handler) GetAvailability(c *gin.Context) {
	date, err := dateutil.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	h.metrics.AvailabilityRequests.Inc()

	slots, err := h.service.Resolve(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, availability.ErrNoSchedule) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("no schedule configured for that day"))
			return
		}
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"date":  dateutil.Key(date),
		"slots": slots,
	}))
}
