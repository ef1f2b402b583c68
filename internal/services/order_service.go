// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/utils"
)

const fallbackRecipientName = "Customer"

type OrderService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type OrderLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderResponse struct {
	OrderID uuid.UUID `json:"orderId"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

type OrderFilter struct {
	utils.PaginationParams
	Status *models.OrderStatus
	UserID *uuid.UUID
}

func NewOrderService(db *gorm.DB, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:                  db,
		notificationService: notificationService,
	}
}

// PlaceOrder reserves stock for every line and records a pending order in a
// single transaction. Either all effects are committed or none are.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest, displayName string) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	lines, err := parseOrderLines(req)
	if err != nil {
		return uuid.Nil, err
	}

	var order *models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.loadProducts(tx, lines)
		if err != nil {
			return err
		}

		// Check in caller order so the reported product is the first short line.
		remaining := make(map[uuid.UUID]int, len(products))
		for id, p := range products {
			remaining[id] = p.Stock
		}
		for _, line := range lines {
			if remaining[line.productID] < line.quantity {
				return &InsufficientStockError{ProductName: products[line.productID].Name}
			}
			remaining[line.productID] -= line.quantity
		}

		for _, line := range lines {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.productID, line.quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return &InsufficientStockError{ProductName: products[line.productID].Name}
			}
		}

		address, err := resolveShippingAddress(tx, userID, displayName)
		if err != nil {
			return err
		}

		order = &models.Order{
			UserID:      userID,
			Status:      models.OrderStatusPending,
			ShippingFee: decimal.Zero,
			AddressID:   address.ID,
		}
		total := decimal.Zero
		for _, line := range lines {
			price := products[line.productID].Price
			order.Items = append(order.Items, models.OrderItem{
				ProductID: line.productID,
				Quantity:  line.quantity,
				Price:     price,
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.quantity))))
		}
		order.Total = total

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"items":    len(order.Items),
		"total":    order.Total.StringFixed(2),
	}).Info("Order placed")

	if s.notificationService != nil {
		s.notificationService.NotifyOrderPlaced(order.ID)
	}

	return order.ID, nil
}

type orderLine struct {
	productID uuid.UUID
	quantity  int
}

func parseOrderLines(req *CreateOrderRequest) ([]orderLine, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, &ValidationError{Field: "items", Message: "must contain at least one item"}
	}

	lines := make([]orderLine, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be at least 1",
			}
		}
		// An id that is not a UUID cannot match any product.
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, ErrProductNotFound
		}
		lines = append(lines, orderLine{productID: id, quantity: item.Quantity})
	}
	return lines, nil
}

// loadProducts reads every referenced product in one query, locking the rows
// where the dialect supports it.
func (s *OrderService) loadProducts(tx *gorm.DB, lines []orderLine) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.productID] {
			seen[line.productID] = true
			ids = append(ids, line.productID)
		}
	}

	var found []models.Product
	if err := lockForUpdate(tx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	if len(found) != len(ids) {
		return nil, ErrProductNotFound
	}

	products := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}
	return products, nil
}

// resolveShippingAddress returns the default address, else the oldest one,
// else a new placeholder flagged as default.
func resolveShippingAddress(tx *gorm.DB, userID uuid.UUID, displayName string) (*models.Address, error) {
	var address models.Address
	err := tx.Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		First(&address).Error
	if err == nil {
		return &address, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load address: %w", err)
	}

	name := displayName
	if name == "" {
		name = fallbackRecipientName
	}
	address = models.Address{
		UserID:    userID,
		Name:      name,
		IsDefault: true,
	}
	if err := tx.Create(&address).Error; err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &address, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := withOrderDetails(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// GetUserOrder hides orders owned by other users behind ErrOrderNotFound.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(s.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "total", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var orders []models.Order
	if err := withOrderDetails(query).Preload("User").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus moves an order along its lifecycle. Only status is mutable.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "unknown order status"}
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transitionOrder(tx, orderID, status, &order)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("Order status updated")

	return &order, nil
}

func transitionOrder(tx *gorm.DB, orderID uuid.UUID, status models.OrderStatus, order *models.Order) error {
	if err := lockForUpdate(tx).First(order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if !order.Status.CanTransitionTo(status) {
		return &InvalidTransitionError{From: string(order.Status), To: string(status)}
	}
	if order.Status == status {
		return nil
	}

	if err := tx.Model(order).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status
	return nil
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Address").
		Preload("Items").
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB {
			// Deleted products still describe past orders.
			return db.Unscoped()
		})
}

// lockForUpdate adds FOR UPDATE on dialects that have it. SQLite serializes
// writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
