package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cafe-pos/internal/database/models"
)

// -- Categories --

func (s *POSHandler) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, storageErr("list categories", err)
	}
	return categories, nil
}

func (s *POSHandler) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category := models.Category{Name: strings.TrimSpace(name)}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, storageErr("create category", err)
	}
	s.InvalidatePOSCaches(ctx, POS_PRODUCT_CACHE_KEY)
	return &category, nil
}

func (s *POSHandler) UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	res := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Update("name", strings.TrimSpace(name))
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, storageErr("update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}
	s.InvalidatePOSCaches(ctx, POS_PRODUCT_CACHE_KEY)
	return &models.Category{ID: id, Name: strings.TrimSpace(name)}, nil
}

// DeleteCategory refuses while any product still points at the category.
func (s *POSHandler) DeleteCategory(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryInUse
		}

		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCategoryInUse) || errors.Is(err, ErrCategoryNotFound) {
			return err
		}
		return storageErr("delete category", err)
	}
	return nil
}

// -- POS Products --

type ProductInput struct {
	Name       string
	CategoryID *int64
	Price      decimal.Decimal
	Stock      int64
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidProduct)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}

// ListProducts filters by a name substring and/or category. The unfiltered
// list is served from cache.
func (s *POSHandler) ListProducts(ctx context.Context, q string, categoryID *int64) ([]models.ProductView, error) {
	q = strings.TrimSpace(q)
	unfiltered := q == "" && categoryID == nil

	if !unfiltered {
		return s.queryProducts(ctx, q, categoryID)
	}

	products := []models.ProductView{}
	if s.getCached(ctx, POS_PRODUCT_CACHE_KEY, &products) {
		return products, nil
	}

	// Collapses concurrent misses on the unfiltered list into one query. The
	// shared query must not die with whichever caller happened to start it.
	v, err, _ := s.sfg.Do(POS_PRODUCT_CACHE_KEY, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedQueryTimeout)
		defer cancel()

		products, err := s.queryProducts(sharedCtx, "", nil)
		if err != nil {
			return nil, err
		}
		s.setCached(sharedCtx, POS_PRODUCT_CACHE_KEY, products, CACHE_TTL_SHORT)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ProductView), nil
}

func (s *POSHandler) queryProducts(ctx context.Context, q string, categoryID *int64) ([]models.ProductView, error) {
	products := []models.ProductView{}
	query := s.db.WithContext(ctx).
		Table("products").
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
	if categoryID != nil {
		query = query.Where("products.category_id = ?", *categoryID)
	}
	if q != "" {
		query = query.Where("products.name ILIKE ?", "%"+q+"%")
	}

	if err := query.Order("products.name").Scan(&products).Error; err != nil {
		return nil, storageErr("list products", err)
	}
	return products, nil
}

func (s *POSHandler) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:       strings.TrimSpace(in.Name),
		CategoryID: in.CategoryID,
		Price:      in.Price,
		Stock:      in.Stock,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, storageErr("create product", err)
	}
	s.InvalidatePOSCaches(ctx, POS_PRODUCT_CACHE_KEY)
	return &product, nil
}

func (s *POSHandler) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"category_id": in.CategoryID,
		"price":       in.Price,
		"stock":       in.Stock,
	})
	if res.Error != nil {
		return nil, storageErr("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	s.InvalidatePOSCaches(ctx, POS_PRODUCT_CACHE_KEY)
	return &models.Product{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		CategoryID: in.CategoryID,
		Price:      in.Price,
		Stock:      in.Stock,
	}, nil
}

// DeleteProduct detaches historic order lines before removing the product,
// so recorded sales keep their captured name and price.
func (s *POSHandler) DeleteProduct(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderItem{}).
			Where("product_id = ?", id).
			UpdateColumn("product_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return err
		}
		return storageErr("delete product", err)
	}

	s.InvalidatePOSCaches(ctx, POS_PRODUCT_CACHE_KEY)
	return nil
}
