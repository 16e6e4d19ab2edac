package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sharepoint-portal/portal-backend/internal/users"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes registers auth routes on an authenticated group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.GET("/ping", h.Ping)
		authGroup.GET("/me", h.Me)
	}
}

// Ping endpoint
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "auth service alive!"})
}

// Me returns the resolved principal.
func (h *Handler) Me(c *gin.Context) {
	p, ok := users.CurrentPrincipal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": p})
}
