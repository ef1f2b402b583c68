// internal/handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/services"
	"github.com/javajoker/localshop-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	filter := services.AdminUserFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Search:           c.Query("search"),
	}
	if role := models.Role(c.Query("role")); role.Valid() {
		filter.Role = &role
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		filter.Active = &active
	}

	users, total, err := h.adminService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(summaries, total, filter.PaginationParams))
}

// PATCH /admin/users/:id
func (h *AdminHandler) UpdateUserAccess(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, services.ErrUserNotFound)
	if !ok {
		return
	}

	var req services.UpdateUserAccessRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.UpdateUserAccess(c.Request.Context(), actorID, targetID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user.Summary())
}
