// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	Name         string `json:"name" gorm:"size:100"`
	Role         Role   `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`
	Active       bool   `json:"active" gorm:"not null"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// IsActiveAdmin is the capability every admin mutation is gated on.
func (u *User) IsActiveAdmin() bool {
	return u != nil && u.Role == RoleAdmin && u.Active
}

// UserSummary is the public projection returned by user administration.
type UserSummary struct {
	ID     string `json:"id"`
	Role   Role   `json:"role"`
	Active bool   `json:"active"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:     u.ID.String(),
		Role:   u.Role,
		Active: u.Active,
		Email:  u.Email,
		Name:   u.Name,
	}
}
