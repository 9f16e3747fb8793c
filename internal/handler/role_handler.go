package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	"github.com/guestpostlinks/pr-admin-api/internal/service"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
	"github.com/guestpostlinks/pr-admin-api/pkg/response"
)

// RoleHandler wires HTTP endpoints to the role service.
type RoleHandler struct {
	service *service.RoleService
}

// NewRoleHandler creates a new handler.
func NewRoleHandler(svc *service.RoleService) *RoleHandler {
	return &RoleHandler{service: svc}
}

// List godoc
// @Summary List roles
// @Description Paginated role listing with optional search
// @Tags Roles
// @Produce json
// @Param search query string false "Search across id, name and permissions"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /roles/getRoles [get]
func (h *RoleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	result, err := h.service.List(c.Request.Context(), models.RoleFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result.Roles, &result.Pagination)
}

// Get godoc
// @Summary Get role
// @Tags Roles
// @Produce json
// @Param id path string true "Role id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /roles/getRole/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, role, nil)
}

// Create godoc
// @Summary Create role
// @Description Store a role under a caller-supplied identifier
// @Tags Roles
// @Accept json
// @Produce json
// @Param payload body service.CreateRoleRequest true "Role payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /roles/createRole [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}

	role, err := h.service.Create(c.Request.Context(), req, userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, role)
}

// Update godoc
// @Summary Update role
// @Description Rename or replace permissions, optionally cascading to users
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Role id"
// @Param payload body service.UpdateRoleRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /roles/updateRole/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}

	role, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, role, nil)
}

// Delete godoc
// @Summary Delete role
// @Description Remove a role unless any user still holds it
// @Tags Roles
// @Produce json
// @Param id path string true "Role id"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /roles/deleteRole/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "role deleted successfully")
}

// PermissionUsage godoc
// @Summary Permission usage counts
// @Description Per module, count roles granting at least one capability
// @Tags Roles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /roles/permission/count [get]
func (h *RoleHandler) PermissionUsage(c *gin.Context) {
	usage, err := h.service.PermissionUsage(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, usage, nil)
}
