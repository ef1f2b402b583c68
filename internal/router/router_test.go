package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/config"
	"github.com/javajoker/localshop-backend/internal/database"
	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/services"
)

type APITestSuite struct {
	suite.Suite
	db            *gorm.DB
	router        *gin.Engine
	notifications *services.NotificationService
	admin         *models.User
	shopper       *models.User
	adminToken    string
	userToken     string
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(config.DatabaseConfig{
		Driver:       "sqlite",
		Database:     ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), database.RunMigrations(db))
	suite.db = db

	suite.router, suite.notifications = Initialize(db, &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1, RefreshTokenTTL: 24},
		CORS:        config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
		Payment:     config.PaymentConfig{Currency: "cny"},
		I18n:        config.I18nConfig{DefaultLocale: "en"},
	})

	suite.admin = suite.createUser("admin@example.com", "Admin", models.RoleAdmin)
	suite.shopper = suite.createUser("shopper@example.com", "Shopper", models.RoleUser)
	suite.adminToken = suite.login("admin@example.com")
	suite.userToken = suite.login("shopper@example.com")
}

func (suite *APITestSuite) TearDownTest() {
	require.NoError(suite.T(), suite.notifications.Wait(context.Background()))
	database.Close(suite.db)
}

func (suite *APITestSuite) createUser(email, name string, role models.Role) *models.User {
	user := &models.User{Email: email, Name: name, Role: role, Active: true}
	require.NoError(suite.T(), user.SetPassword("password123"))
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *APITestSuite) createProduct(name string, price string, stock int) *models.Product {
	product := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "general",
		Images:   models.StringList{},
		Stock:    stock,
	}
	require.NoError(suite.T(), suite.db.Create(product).Error)
	return product
}

func (suite *APITestSuite) do(method, path string, body interface{}, token string, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &response)
	}
	return w, response
}

func (suite *APITestSuite) login(email string) string {
	w, response := suite.do(http.MethodPost, "/v1/auth/login", gin.H{"email": email, "password": "password123"}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	token, _ := response["accessToken"].(string)
	require.NotEmpty(suite.T(), token)
	return token
}

func (suite *APITestSuite) TestHealth() {
	w, response := suite.do(http.MethodGet, "/health", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "healthy", response["status"])
	assert.Equal(suite.T(), false, response["payments"])
}

func (suite *APITestSuite) TestRegisterAndProfile() {
	w, response := suite.do(http.MethodPost, "/v1/auth/register",
		gin.H{"email": "new.person@example.com", "password": "secret1"}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	user := response["user"].(map[string]interface{})
	assert.Equal(suite.T(), "new.person", user["name"])
	assert.NotContains(suite.T(), user, "passwordHash")

	w, response = suite.do(http.MethodPost, "/v1/auth/register",
		gin.H{"email": "new.person@example.com", "password": "secret1"}, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "EMAIL_TAKEN", response["code"])

	w, response = suite.do(http.MethodPost, "/v1/auth/register",
		gin.H{"email": "short@example.com", "password": "123"}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", response["code"])

	w, response = suite.do(http.MethodGet, "/v1/auth/me", nil, suite.userToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "shopper@example.com", response["user"].(map[string]interface{})["email"])
}

func (suite *APITestSuite) TestLoginFailures() {
	w, response := suite.do(http.MethodPost, "/v1/auth/login",
		gin.H{"email": "shopper@example.com", "password": "nope"}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "INVALID_CREDENTIALS", response["code"])

	require.NoError(suite.T(), suite.db.Model(suite.shopper).Update("active", false).Error)
	w, response = suite.do(http.MethodPost, "/v1/auth/login",
		gin.H{"email": "shopper@example.com", "password": "password123"}, "")
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "ACCOUNT_DISABLED", response["code"])
}

func (suite *APITestSuite) TestPlaceOrder() {
	mug := suite.createProduct("Mug", "12.50", 3)

	w, response := suite.do(http.MethodPost, "/v1/orders",
		gin.H{"items": []gin.H{{"productId": mug.ID.String(), "quantity": 2}}}, suite.userToken)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	orderID, _ := response["orderId"].(string)
	_, err := uuid.Parse(orderID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), response, 1)

	w, response = suite.do(http.MethodGet, "/v1/orders/"+orderID, nil, suite.userToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	order := response["order"].(map[string]interface{})
	assert.Equal(suite.T(), "pending", order["status"])
	assert.Equal(suite.T(), 25.0, order["total"])

	address := order["address"].(map[string]interface{})
	assert.Equal(suite.T(), "Shopper", address["name"])
	assert.Equal(suite.T(), true, address["isDefault"])

	w, _ = suite.do(http.MethodGet, "/v1/orders/"+orderID, nil, suite.adminToken)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w, response = suite.do(http.MethodGet, "/v1/orders", nil, suite.userToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), response["orders"], 1)
}

func (suite *APITestSuite) TestPlaceOrderFailures() {
	mug := suite.createProduct("Mug", "12.50", 1)

	w, response := suite.do(http.MethodPost, "/v1/orders",
		gin.H{"items": []gin.H{{"productId": mug.ID.String(), "quantity": 2}}}, suite.userToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "INSUFFICIENT_STOCK", response["code"])
	assert.Equal(suite.T(), "Insufficient stock for Mug", response["message"])

	w, response = suite.do(http.MethodPost, "/v1/orders",
		gin.H{"items": []gin.H{{"productId": mug.ID.String(), "quantity": 2}}}, suite.userToken,
		"Accept-Language", "zh-CN")
	assert.Equal(suite.T(), "Mug 库存不足", response["message"])

	w, response = suite.do(http.MethodPost, "/v1/orders",
		gin.H{"items": []gin.H{{"productId": uuid.NewString(), "quantity": 1}}}, suite.userToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "PRODUCT_NOT_FOUND", response["code"])

	w, response = suite.do(http.MethodPost, "/v1/orders", gin.H{"items": []gin.H{}}, suite.userToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", response["code"])

	w, _ = suite.do(http.MethodPost, "/v1/orders",
		gin.H{"items": []gin.H{{"productId": mug.ID.String(), "quantity": 0}}}, suite.userToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, response = suite.do(http.MethodPost, "/v1/orders",
		gin.H{"items": []gin.H{{"productId": mug.ID.String(), "quantity": 1}}}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "UNAUTHENTICATED", response["code"])

	var fresh models.Product
	require.NoError(suite.T(), suite.db.First(&fresh, "id = ?", mug.ID).Error)
	assert.Equal(suite.T(), 1, fresh.Stock)
}

func (suite *APITestSuite) TestAdminGuardReadsCurrentUser() {
	w, response := suite.do(http.MethodGet, "/v1/admin/users", nil, suite.userToken)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "FORBIDDEN", response["code"])

	w, _ = suite.do(http.MethodGet, "/v1/admin/users", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w, response = suite.do(http.MethodGet, "/v1/admin/users", nil, suite.adminToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), response["data"], 2)

	// A user promoted after login gains access without a new token.
	require.NoError(suite.T(), suite.db.Model(suite.shopper).Update("role", models.RoleAdmin).Error)
	w, _ = suite.do(http.MethodGet, "/v1/admin/users", nil, suite.userToken)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// And a revoked admin loses it on the next call.
	require.NoError(suite.T(), suite.db.Model(suite.admin).Update("active", false).Error)
	w, _ = suite.do(http.MethodGet, "/v1/admin/users", nil, suite.adminToken)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestPatchUserAccess() {
	path := "/v1/admin/users/" + suite.admin.ID.String()

	w, response := suite.do(http.MethodPatch, path, gin.H{"role": "user"}, suite.adminToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "SELF_DEMOTE_FORBIDDEN", response["code"])

	w, response = suite.do(http.MethodPatch, path, gin.H{"active": false}, suite.adminToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "SELF_DISABLE_FORBIDDEN", response["code"])

	w, response = suite.do(http.MethodPatch, path, gin.H{}, suite.adminToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", response["code"])

	w, response = suite.do(http.MethodPatch, "/v1/admin/users/"+suite.shopper.ID.String(),
		gin.H{"role": "owner"}, suite.adminToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", response["code"])

	w, response = suite.do(http.MethodPatch, "/v1/admin/users/"+uuid.NewString(),
		gin.H{"active": false}, suite.adminToken)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "USER_NOT_FOUND", response["code"])

	w, response = suite.do(http.MethodPatch, "/v1/admin/users/"+suite.shopper.ID.String(),
		gin.H{"role": "admin"}, suite.adminToken)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), map[string]interface{}{
		"id":     suite.shopper.ID.String(),
		"role":   "admin",
		"active": true,
		"email":  "shopper@example.com",
		"name":   "Shopper",
	}, response)

	// With two active admins the other one may now demote the original.
	w, response = suite.do(http.MethodPatch, path, gin.H{"role": "user"}, suite.userToken)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), "user", response["role"])

	var audits int64
	require.NoError(suite.T(), suite.db.Model(&models.AuditLog{}).Count(&audits).Error)
	assert.Equal(suite.T(), int64(7), audits)
}

func (suite *APITestSuite) TestInactiveAdminDoesNotCountAsAdmin() {
	second := suite.createUser("second@example.com", "Second", models.RoleAdmin)
	secondToken := suite.login("second@example.com")
	require.NoError(suite.T(), suite.db.Model(suite.admin).Update("active", false).Error)

	w, response := suite.do(http.MethodPatch, "/v1/admin/users/"+second.ID.String(),
		gin.H{"active": false}, secondToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "SELF_DISABLE_FORBIDDEN", response["code"])

	w, _ = suite.do(http.MethodPatch, "/v1/admin/users/"+suite.admin.ID.String(),
		gin.H{"role": "user"}, secondToken)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestAdminCatalogAndOrders() {
	w, response := suite.do(http.MethodPost, "/v1/admin/products", gin.H{
		"name":        "Teapot",
		"description": "Cast iron",
		"price":       88.5,
		"category":    "kitchen",
		"images":      []string{"/teapot.jpg"},
		"stock":       4,
	}, suite.adminToken)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	product := response["product"].(map[string]interface{})
	productID := product["id"].(string)
	assert.Equal(suite.T(), 88.5, product["price"])

	w, response = suite.do(http.MethodPost, "/v1/admin/products", gin.H{
		"name": "Free", "description": "x", "price": 0, "category": "kitchen",
	}, suite.adminToken)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, response = suite.do(http.MethodPut, "/v1/admin/products/"+productID, gin.H{"stock": 10}, suite.adminToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), 10.0, response["product"].(map[string]interface{})["stock"])

	w, response = suite.do(http.MethodGet, "/v1/products?category=kitchen", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), response["data"], 1)
	assert.Equal(suite.T(), "1", w.Header().Get("X-Total-Count"))

	w, response = suite.do(http.MethodPost, "/v1/orders",
		gin.H{"items": []gin.H{{"productId": productID, "quantity": 1}}}, suite.userToken)
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	orderID := response["orderId"].(string)

	w, response = suite.do(http.MethodPatch, "/v1/admin/orders/"+orderID, gin.H{"status": "delivered"}, suite.adminToken)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "INVALID_STATUS_TRANSITION", response["code"])

	w, response = suite.do(http.MethodPatch, "/v1/admin/orders/"+orderID, gin.H{"status": "paid"}, suite.adminToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "paid", response["order"].(map[string]interface{})["status"])

	w, response = suite.do(http.MethodGet, "/v1/admin/orders?status=paid", nil, suite.adminToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), response["data"], 1)

	w, _ = suite.do(http.MethodDelete, "/v1/admin/products/"+productID, nil, suite.adminToken)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, response = suite.do(http.MethodGet, "/v1/products/"+productID, nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "PRODUCT_NOT_FOUND", response["code"])
}

func (suite *APITestSuite) TestPaymentsDisabled() {
	mug := suite.createProduct("Mug", "12.50", 3)
	_, response := suite.do(http.MethodPost, "/v1/orders",
		gin.H{"items": []gin.H{{"productId": mug.ID.String(), "quantity": 1}}}, suite.userToken)
	orderID := response["orderId"].(string)

	w, response := suite.do(http.MethodPost, "/v1/orders/"+orderID+"/payment-intent", nil, suite.userToken)
	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
	assert.Equal(suite.T(), "PAYMENTS_DISABLED", response["code"])
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
