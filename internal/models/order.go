// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is immutable once created except for Status.
type Order struct {
	BaseModel
	UserID      uuid.UUID       `json:"userId" gorm:"type:varchar(36);not null;index"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	ShippingFee decimal.Decimal `json:"shippingFee" gorm:"type:decimal(10,2);not null"`
	AddressID   uuid.UUID       `json:"addressId" gorm:"type:varchar(36);not null;index"`

	// Relationships
	User    *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Address *Address    `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Items   []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem.Price is the unit price captured when the order was placed.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `json:"orderId" gorm:"type:varchar(36);not null;index"`
	ProductID uuid.UUID       `json:"productId" gorm:"type:varchar(36);not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null;check:quantity >= 1"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
