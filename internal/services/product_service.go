// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/models"
	"github.com/javajoker/localshop-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name         string           `json:"name" validate:"required,max=200"`
	Description  string           `json:"description" validate:"required"`
	Price        decimal.Decimal  `json:"price" validate:"required,gt=0"`
	ComparePrice *decimal.Decimal `json:"comparePrice,omitempty" validate:"omitempty,gt=0"`
	Category     string           `json:"category" validate:"required,max=100"`
	Brand        *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	Images       []string         `json:"images" validate:"omitempty,dive,required"`
	Stock        int              `json:"stock" validate:"gte=0"`
	Featured     bool             `json:"featured"`
}

// UpdateProductRequest is a partial update. A comparePrice of 0 or an empty
// brand clears the field.
type UpdateProductRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,min=1"`
	Price        *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gt=0"`
	ComparePrice *decimal.Decimal `json:"comparePrice,omitempty" validate:"omitempty,gte=0"`
	Category     *string          `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Brand        *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	Images       *[]string        `json:"images,omitempty" validate:"omitempty,dive,required"`
	Stock        *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Featured     *bool            `json:"featured,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Category string
	Search   string
	Featured *bool
	InStock  bool
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		ComparePrice: req.ComparePrice,
		Category:     req.Category,
		Brand:        req.Brand,
		Images:       models.StringList(req.Images),
		Stock:        req.Stock,
		Featured:     req.Featured,
	}
	if product.Images == nil {
		product.Images = models.StringList{}
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logrus.WithField("product_id", product.ID).Info("Product created")
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		if req.ComparePrice.IsZero() {
			updates["compare_price"] = nil
		} else {
			updates["compare_price"] = *req.ComparePrice
		}
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Brand != nil {
		if *req.Brand == "" {
			updates["brand"] = nil
		} else {
			updates["brand"] = *req.Brand
		}
	}
	if req.Images != nil {
		updates["images"] = models.StringList(*req.Images)
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct soft-deletes so past order items can still show the product.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	logrus.WithField("product_id", id).Info("Product deleted")
	return nil
}

func (s *ProductService) SearchProducts(ctx context.Context, params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.Featured != nil {
		query = query.Where("featured = ?", *params.Featured)
	}

	if params.InStock {
		query = query.Where("stock > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "rating", "stock"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// ListCategories returns the distinct categories of live products.
func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}
