// internal/services/authorization_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/models"
)

// AuthorizationService decides admin access from the stored user record,
// never from claims carried by the session token.
type AuthorizationService struct {
	db *gorm.DB
}

func NewAuthorizationService(db *gorm.DB) *AuthorizationService {
	return &AuthorizationService{db: db}
}

// RequireAdmin reloads the caller and succeeds only for an active admin.
func (s *AuthorizationService) RequireAdmin(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted since the token was issued.
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !user.IsActiveAdmin() {
		return nil, ErrForbidden
	}
	return &user, nil
}
