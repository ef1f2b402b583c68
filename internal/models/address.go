// internal/models/address.go
package models

import (
	"github.com/google/uuid"
)

type Address struct {
	BaseModel
	UserID    uuid.UUID `json:"userId" gorm:"type:varchar(36);not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Phone     string    `json:"phone" gorm:"size:50"`
	Province  string    `json:"province" gorm:"size:100"`
	City      string    `json:"city" gorm:"size:100"`
	District  string    `json:"district" gorm:"size:100"`
	Detail    string    `json:"detail" gorm:"size:255"`
	IsDefault bool      `json:"isDefault" gorm:"default:false"`
}
