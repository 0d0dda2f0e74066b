package handler

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cafe-pos/internal/database/models"
)

const DefaultLowStockThreshold = 10

var ErrInvalidAdjustment = errors.New("invalid stock adjustment")

// AdjustStock applies a manual stock movement: positive for a delivery,
// negative for waste or a count correction. Unlike checkout it refuses to
// take a product below zero.
func (s *POSHandler) AdjustStock(ctx context.Context, id, delta int64) (*models.Product, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", ErrInvalidAdjustment)
	}

	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if product.Stock+delta < 0 {
			return fmt.Errorf("%w: only %d in stock", ErrInvalidAdjustment, product.Stock)
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", id).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error; err != nil {
			return err
		}
		product.Stock += delta
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrInvalidAdjustment) {
			return nil, err
		}
		return nil, storageErr("adjust stock", err)
	}

	s.InvalidatePOSCaches(ctx, POS_PRODUCT_CACHE_KEY)
	return &product, nil
}

// ListLowStock returns products at or below threshold, emptiest first.
func (s *POSHandler) ListLowStock(ctx context.Context, threshold int64) ([]models.Product, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", ErrInvalidAdjustment)
	}

	products := []models.Product{}
	if err := s.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC, name ASC").
		Find(&products).Error; err != nil {
		return nil, storageErr("list low stock", err)
	}
	return products, nil
}
