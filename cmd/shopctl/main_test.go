package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/config"
	"github.com/javajoker/localshop-backend/internal/database"
	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/router"
)

type harness struct {
	t       *testing.T
	db      *gorm.DB
	server  *httptest.Server
	dataDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(config.DatabaseConfig{
		Driver:       "sqlite",
		Database:     ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	user := &models.User{Email: "shopper@example.com", Name: "Shopper", Role: models.RoleUser, Active: true}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)

	engine, notifications := router.Initialize(db, &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1, RefreshTokenTTL: 24},
		I18n:        config.I18nConfig{DefaultLocale: "en"},
	})
	server := httptest.NewServer(engine)

	h := &harness{t: t, db: db, server: server, dataDir: t.TempDir()}
	t.Cleanup(func() {
		server.Close()
		assert.NoError(t, notifications.Wait(context.Background()))
		database.Close(db)
	})
	return h
}

func (h *harness) product(name, price string, stock int) *models.Product {
	product := &models.Product{Name: name, Price: decimal.RequireFromString(price), Category: "general", Stock: stock}
	require.NoError(h.t, h.db.Create(product).Error)
	return product
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	full := append([]string{"-server", h.server.URL, "-data", h.dataDir}, args...)
	err := run(context.Background(), full, &out)
	return out.String(), err
}

func TestCartAndCheckout(t *testing.T) {
	h := newHarness(t)
	mug := h.product("Mug", "12.50", 5)
	lamp := h.product("Lamp", "40", 2)

	out, err := h.run("login", "shopper@example.com", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as shopper@example.com")

	_, err = h.run("cart", "add", mug.ID.String(), "2")
	require.NoError(t, err)
	_, err = h.run("cart", "add", mug.ID.String())
	require.NoError(t, err)
	out, err = h.run("cart", "add", lamp.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Mug")
	assert.Contains(t, out, "total 77.50")

	out, err = h.run("cart", "set", lamp.ID.String(), "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "Lamp")

	_, err = h.run("cart", "remove", "missing-id")
	require.NoError(t, err)

	out, err = h.run("checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "placed")

	out, err = h.run("cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty")

	var fresh models.Product
	require.NoError(t, h.db.First(&fresh, "id = ?", mug.ID).Error)
	assert.Equal(t, 2, fresh.Stock)

	out, err = h.run("orders")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "37.50")
}

func TestCheckoutKeepsCartOnFailure(t *testing.T) {
	h := newHarness(t)
	lamp := h.product("Lamp", "40", 1)

	_, err := h.run("login", "shopper@example.com", "password123")
	require.NoError(t, err)
	_, err = h.run("cart", "add", lamp.ID.String(), "3")
	require.NoError(t, err)

	_, err = h.run("checkout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock for Lamp")

	out, err := h.run("cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Lamp")
}

func TestCheckoutEmptyCart(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("checkout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
}

func TestProducts(t *testing.T) {
	h := newHarness(t)
	h.product("Mug", "12.50", 5)

	out, err := h.run("products", "-search", "mug")
	require.NoError(t, err)
	assert.Contains(t, out, "Mug")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "(1 products)")
}

func TestCartPersistsInDataDir(t *testing.T) {
	h := newHarness(t)
	mug := h.product("Mug", "12.50", 5)

	_, err := h.run("cart", "add", mug.ID.String())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(h.dataDir, "local-cart.json"))
	assert.NoError(t, err)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run()
	assert.ErrorIs(t, err, errUsage)

	_, err = h.run("refund")
	assert.ErrorIs(t, err, errUsage)

	_, err = h.run("cart", "set", "p1")
	assert.ErrorIs(t, err, errUsage)

	_, err = h.run("cart", "add", "p1", "many")
	assert.EqualError(t, err, `invalid quantity "many"`)
}
