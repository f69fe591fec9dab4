package handler

import (
	"net/http"
	"strconv"

	"identity-service/internal/audit"
	"identity-service/internal/auth"
	"identity-service/internal/auth/provider"
	"identity-service/internal/logger"
	"identity-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	provider provider.IdentityProvider
	audit    audit.Recorder
}

func NewHandler(
	idp provider.IdentityProvider,
	recorder audit.Recorder,
) *Handler {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Handler{
		provider: idp,
		audit:    recorder,
	}
}

// RegisterRoutes mounts the user-management endpoints. The caller is
// responsible for putting them behind bearer authentication.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/users", h.createUser)
	r.GET("/users", h.listUsers)
	r.POST("/users/assign-role", h.assignRole)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, err := h.provider.CreateUser(c.Request.Context(), auth.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, "create_user", err)
		return
	}

	subject := userID
	if subject == "" {
		subject = req.Username
	}
	h.record(c, audit.Entry{
		Action:  audit.ActionUserCreated,
		Subject: subject,
		Detail:  req.Username,
	})

	c.JSON(http.StatusCreated, gin.H{
		"status":   "user_created",
		"username": req.Username,
		"id":       userID,
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	query := auth.UserQuery{Search: c.Query("search")}

	for name, dst := range map[string]**int{"first": &query.First, "max": &query.Max} {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return
		}
		*dst = &n
	}

	users, err := h.provider.GetUsers(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, "get_users", err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type assignRoleRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

func (h *Handler) assignRole(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.provider.AssignRealmRole(c.Request.Context(), req.UserID, req.Role); err != nil {
		h.writeError(c, "assign_realm_role", err)
		return
	}

	h.record(c, audit.Entry{
		Action:  audit.ActionRoleAssigned,
		Subject: req.UserID,
		Detail:  req.Role,
	})

	c.JSON(http.StatusOK, gin.H{"status": "role_assigned"})
}

// record stores an audit entry for the authenticated caller. Failures are
// logged only; the provider call has already succeeded.
func (h *Handler) record(c *gin.Context, e audit.Entry) {
	if info, ok := middleware.UserInfoFromContext(c.Request.Context()); ok {
		e.Actor = info.Subject()
	}

	if err := h.audit.Record(c.Request.Context(), e); err != nil {
		logger.Error("audit record failed", map[string]any{
			"action":  e.Action,
			"subject": e.Subject,
			"error":   err.Error(),
		})
	}
}
