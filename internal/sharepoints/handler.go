package sharepoints

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/httputil"
	"sharepoint-portal/portal-backend/internal/users"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	sp := rg.Group("/sharepoints")
	{
		sp.POST("", h.Create)
		sp.GET("", h.List)
		sp.GET("/my/assigned", h.MyAssigned)
		sp.GET("/my/created", h.MyCreated)
		sp.GET("/my/approvals", h.MyApprovals)
		sp.GET("/:id", h.Get)
		sp.PUT("/:id", h.Update)
		sp.DELETE("/:id", h.Delete)
		sp.POST("/:id/sign", h.Sign)
		sp.POST("/:id/disapprove", h.Disapprove)
		sp.POST("/:id/approve", h.Approve)
		sp.POST("/:id/relaunch", h.Relaunch)
		sp.GET("/:id/can-sign", h.CanSign)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := users.CurrentPrincipal(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := users.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := httputil.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) List(c *gin.Context) {
	h.listWith(c, h.service.List)
}

func (h *Handler) MyAssigned(c *gin.Context) {
	h.listWith(c, h.service.MyAssigned)
}

func (h *Handler) MyCreated(c *gin.Context) {
	h.listWith(c, h.service.MyCreated)
}

func (h *Handler) MyApprovals(c *gin.Context) {
	h.listWith(c, h.service.MyApprovals)
}

type listFunc func(ctx context.Context, actor users.Principal, q ListQuery) (*ListResult, error)

func (h *Handler) listWith(c *gin.Context, fn listFunc) {
	actor, ok := users.CurrentPrincipal(c)
	if !ok {
		return
	}
	q, ok := parseListQuery(c)
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), actor, q)
	if err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseListQuery(c *gin.Context) (ListQuery, bool) {
	q := ListQuery{
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      httputil.IntQuery(c, "page", defaultPage),
		Limit:     httputil.IntQuery(c, "limit", defaultLimit),
	}
	for name, dst := range map[string]**uuid.UUID{"createdBy": &q.CreatedBy, "assignedTo": &q.AssignedTo} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return q, false
		}
		*dst = &id
	}
	return q, true
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := users.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := httputil.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := users.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := httputil.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SharePoint deleted"})
}

func (h *Handler) Approve(c *gin.Context) {
	var req ApproveRequest
	h.transition(c, &req, func(actor users.Principal, id uuid.UUID) (*View, error) {
		return h.service.Approve(c.Request.Context(), actor, id, req)
	})
}

func (h *Handler) Sign(c *gin.Context) {
	var req SignRequest
	h.transition(c, &req, func(actor users.Principal, id uuid.UUID) (*View, error) {
		return h.service.Sign(c.Request.Context(), actor, id, req)
	})
}

func (h *Handler) Disapprove(c *gin.Context) {
	var req DisapproveRequest
	h.transition(c, &req, func(actor users.Principal, id uuid.UUID) (*View, error) {
		return h.service.Disapprove(c.Request.Context(), actor, id, req)
	})
}

func (h *Handler) Relaunch(c *gin.Context) {
	var req RelaunchRequest
	h.transition(c, &req, func(actor users.Principal, id uuid.UUID) (*View, error) {
		return h.service.Relaunch(c.Request.Context(), actor, id, req)
	})
}

// transition binds an optional JSON body into req and runs one workflow operation.
func (h *Handler) transition(c *gin.Context, req interface{}, run func(users.Principal, uuid.UUID) (*View, error)) {
	actor, ok := users.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := httputil.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	view, err := run(actor, id)
	if err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CanSign(c *gin.Context) {
	actor, ok := users.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := httputil.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var userID *uuid.UUID
	if raw := c.Query("userId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
			return
		}
		userID = &parsed
	}
	res, err := h.service.CanUserSign(c.Request.Context(), actor, id, userID)
	if err != nil {
		httputil.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
