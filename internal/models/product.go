// internal/models/product.go
package models

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name         string           `json:"name" gorm:"size:255;not null"`
	Description  string           `json:"description" gorm:"type:text"`
	Price        decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	ComparePrice *decimal.Decimal `json:"comparePrice" gorm:"type:decimal(10,2)"`
	Category     string           `json:"category" gorm:"size:100;index"`
	Brand        *string          `json:"brand" gorm:"size:100"`
	Images       StringList       `json:"images" gorm:"type:text"`
	Stock        int              `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Rating       float64          `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount  int              `json:"reviewCount" gorm:"default:0"`
	Featured     bool             `json:"featured" gorm:"default:false;index"`
}
