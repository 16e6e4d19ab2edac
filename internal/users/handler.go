package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/httputil"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers user management routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/roles", h.listRoles)

	u := rg.Group("/users")
	{
		u.GET("", h.list)
		u.PUT("/:id/roles", h.updateRoles)
		u.DELETE("/:id", h.delete)
	}
}

func (h *Handler) listRoles(c *gin.Context) {
	c.JSON(http.StatusOK, Roles)
}

func (h *Handler) list(c *gin.Context) {
	actor, ok := CurrentPrincipal(c)
	if !ok {
		return
	}
	all, err := h.service.ListUsers(c.Request.Context(), actor)
	if err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *Handler) updateRoles(c *gin.Context) {
	actor, ok := CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := httputil.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.UpdateRoles(c.Request.Context(), actor, id, req.Roles); err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) delete(c *gin.Context) {
	actor, ok := CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := httputil.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), actor, id); err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
