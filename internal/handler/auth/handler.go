package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxisdesk/booking-api/internal/handler"
	"github.com/praxisdesk/booking-api/internal/middleware"
	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/service/auth"
	"github.com/praxisdesk/booking-api/pkg/metrics"
	"github.com/praxisdesk/booking-api/pkg/token"
)

type Handler struct {
	service       *auth.Service
	metrics       *metrics.Metrics
	secureCookies bool
}

func NewHandler(service *auth.Service, m *metrics.Metrics, secureCookies bool) *Handler {
	return &Handler{service: service, metrics: m, secureCookies: secureCookies}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, loginThrottle gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", loginThrottle, h.Login)
		authGroup.POST("/verify", h.Verify)
		authGroup.POST("/logout", h.Logout)
	}
}

// Login checks credentials and sets the session cookie. The token is
// stateless; logout is purely cookie deletion on the client side.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("email and password are required"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		handler.RespondError(c, err)
		return
	}
	h.metrics.LoginAttempts.WithLabelValues("success").Inc()

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, resp.Token, int(token.AuthTokenTTL.Seconds()), "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) Verify(c *gin.Context) {
	var req model.VerifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("token is required"))
		return
	}

	claims, err := h.service.Verify(req.Token)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(claims))
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
