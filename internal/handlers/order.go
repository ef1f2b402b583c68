// internal/handlers/order.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/localshop-backend/internal/i18n"
	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/services"
	"github.com/javajoker/localshop-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	orderID, err := h.orderService.PlaceOrder(c.Request.Context(), userID, &req, utils.GetUserNameFromContext(c))
	if err != nil {
		// At checkout a missing product is a bad cart, not a missing resource.
		if errors.Is(err, services.ErrProductNotFound) {
			lang := utils.GetLangFromContext(c)
			utils.ErrorResponse(c, http.StatusBadRequest, "PRODUCT_NOT_FOUND", i18n.T(lang, i18n.KeyOrderProductNotFound), nil)
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, services.CreateOrderResponse{OrderID: orderID})
}

// GET /orders
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders})
}

// GET /orders/:id
func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, services.ErrOrderNotFound)
	if !ok {
		return
	}

	order, err := h.orderService.GetUserOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// GET /admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{PaginationParams: utils.GetPaginationParams(c)}
	if status := models.OrderStatus(c.Query("status")); status.Valid() {
		filter.Status = &status
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, filter.PaginationParams))
}

// PATCH /admin/orders/:id
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, services.ErrOrderNotFound)
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": gin.H{"id": order.ID, "status": order.Status}})
}
