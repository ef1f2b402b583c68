package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/utils"
)

func TestProductLifecycle(t *testing.T) {
	db := newTestDB(t)
	service := NewProductService(db)
	ctx := context.Background()

	compare := decimal.RequireFromString("129.00")
	brand := "Acme"
	product, err := service.CreateProduct(ctx, &CreateProductRequest{
		Name:         "Kettle",
		Description:  "Boils water",
		Price:        decimal.RequireFromString("99.00"),
		ComparePrice: &compare,
		Category:     "kitchen",
		Brand:        &brand,
		Images:       []string{"/kettle-1.jpg", "/kettle-2.jpg"},
		Stock:        5,
	})
	require.NoError(t, err)

	got, err := service.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"/kettle-1.jpg", "/kettle-2.jpg"}, got.Images)
	require.NotNil(t, got.ComparePrice)
	assert.True(t, got.ComparePrice.Equal(compare))

	zero := decimal.Zero
	empty := ""
	stock := 0
	images := []string{"/kettle-3.jpg"}
	updated, err := service.UpdateProduct(ctx, product.ID, &UpdateProductRequest{
		ComparePrice: &zero,
		Brand:        &empty,
		Stock:        &stock,
		Images:       &images,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ComparePrice)
	assert.Nil(t, updated.Brand)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, models.StringList{"/kettle-3.jpg"}, updated.Images)
	assert.Equal(t, "Kettle", updated.Name)

	require.NoError(t, service.DeleteProduct(ctx, product.ID))
	_, err = service.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, service.DeleteProduct(ctx, product.ID), ErrProductNotFound)

	_, err = service.UpdateProduct(ctx, uuid.New(), &UpdateProductRequest{Stock: &stock})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSearchProducts(t *testing.T) {
	db := newTestDB(t)
	service := NewProductService(db)
	ctx := context.Background()

	mug := createProduct(t, db, "Blue Mug", "10.00", 5)
	createProduct(t, db, "Red Mug", "12.00", 0)
	lamp := createProduct(t, db, "Desk Lamp", "40.00", 3)
	require.NoError(t, db.Model(lamp).Updates(map[string]interface{}{"category": "lighting", "featured": true}).Error)

	page := utils.PaginationParams{Page: 1, Limit: 20, Sort: "price", Order: "asc"}

	products, total, err := service.SearchProducts(ctx, ProductSearchParams{PaginationParams: page})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, mug.ID, products[0].ID)

	_, total, err = service.SearchProducts(ctx, ProductSearchParams{PaginationParams: page, Search: "mug"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	products, total, err = service.SearchProducts(ctx, ProductSearchParams{PaginationParams: page, Search: "mug", InStock: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mug.ID, products[0].ID)

	featured := true
	products, _, err = service.SearchProducts(ctx, ProductSearchParams{PaginationParams: page, Featured: &featured})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, lamp.ID, products[0].ID)

	_, total, err = service.SearchProducts(ctx, ProductSearchParams{PaginationParams: page, Category: "lighting"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	categories, err := service.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "lighting"}, categories)
}
