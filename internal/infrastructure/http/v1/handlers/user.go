package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"smartshop/internal/domain/auth"
	"smartshop/internal/infrastructure/http/v1/dto"
)

// UserHandler serves /users and /roles.
type UserHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *BaseHandler, service *auth.Service) *UserHandler {
	return &UserHandler{BaseHandler: base, service: service}
}

// List handles GET /users.
func (h *UserHandler) List(c *gin.Context) {
	result, err := h.service.ListUsers(c.Request.Context(), h.ListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      lo.Map(result.Items, func(u *auth.User, _ int) *dto.UserResponse { return dto.FromUser(u) }),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}, "Users retrieved successfully.")
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := h.ParseID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user), "User retrieved successfully.")
}

// Create handles POST /users.
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.service.CreateUser(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+user.ID.String())
	h.Created(c, dto.FromUser(user), "User created successfully.")
}

// Update handles PUT /users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.service.UpdateUser(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user), "User updated successfully.")
}

// ChangePassword handles PUT /users/:id/password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), userID, req.Password); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, nil, "Password changed successfully.")
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := h.ParseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Roles handles GET /roles.
func (h *UserHandler) Roles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, roles, "Roles retrieved successfully.")
}
