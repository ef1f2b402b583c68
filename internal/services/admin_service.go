// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/utils"
)

type AdminService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type UpdateUserAccessRequest struct {
	Role   *models.Role `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Active *bool        `json:"active,omitempty"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role   *models.Role
	Active *bool
	Search string
}

func NewAdminService(db *gorm.DB, notificationService *NotificationService) *AdminService {
	return &AdminService{
		db:                  db,
		notificationService: notificationService,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "email", "name", "role"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// UpdateUserAccess changes a user's role and/or active flag on behalf of
// actorID while keeping at least one active admin in the system.
func (s *AdminService) UpdateUserAccess(ctx context.Context, actorID, targetID uuid.UUID, req *UpdateUserAccessRequest) (*models.User, error) {
	if req == nil || (req.Role == nil && req.Active == nil) {
		return nil, ErrNoUpdateFields
	}
	if req.Role != nil && !req.Role.Valid() {
		return nil, &ValidationError{Field: "role", Message: "must be one of: user admin"}
	}

	if actorID == targetID {
		if req.Role != nil && *req.Role != models.RoleAdmin {
			return nil, ErrSelfDemoteForbidden
		}
		if req.Active != nil && !*req.Active {
			return nil, ErrSelfDisableForbidden
		}
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the active-admin set before the target so concurrent
		// demotions queue on the same rows in the same order.
		var activeAdmins []models.User
		if err := lockForUpdate(tx).
			Where("role = ? AND active = ?", models.RoleAdmin, true).
			Order("id").
			Find(&activeAdmins).Error; err != nil {
			return fmt.Errorf("failed to load active admins: %w", err)
		}

		if err := lockForUpdate(tx).First(&user, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		newRole, newActive := user.Role, user.Active
		if req.Role != nil {
			newRole = *req.Role
		}
		if req.Active != nil {
			newActive = *req.Active
		}

		losesAdmin := newRole != models.RoleAdmin || !newActive
		if user.IsActiveAdmin() && losesAdmin {
			others := 0
			for _, admin := range activeAdmins {
				if admin.ID != user.ID {
					others++
				}
			}
			if others == 0 {
				return ErrLastAdminForbidden
			}
		}

		if err := tx.Model(&user).Updates(map[string]interface{}{
			"role":   newRole,
			"active": newActive,
		}).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		user.Role, user.Active = newRole, newActive
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"actor_id":  actorID,
		"target_id": targetID,
		"role":      user.Role,
		"active":    user.Active,
	}).Info("User access updated")

	if s.notificationService != nil {
		s.notificationService.NotifyAccessChanged(user)
	}

	return &user, nil
}
