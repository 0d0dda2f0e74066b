package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cafe-pos/internal/database"
	"cafe-pos/internal/database/models"
	"cafe-pos/internal/services/pos/checkout"
)

// -- Settings --

func (s *POSHandler) GetSettings(ctx context.Context) (map[string]string, error) {
	settings := map[string]string{}
	if s.getCached(ctx, POS_SETTINGS_CACHE_KEY, &settings) {
		return settings, nil
	}

	var rows []models.Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, storageErr("load settings", err)
	}
	for _, r := range rows {
		settings[r.Key] = r.Value
	}

	s.setCached(ctx, POS_SETTINGS_CACHE_KEY, settings, CACHE_TTL_MEDIUM)
	return settings, nil
}

// UpdateSettings upserts every key. Known keys are validated first so a bad
// tax value never reaches the register.
func (s *POSHandler) UpdateSettings(ctx context.Context, updates map[string]string) error {
	if len(updates) == 0 {
		return nil
	}

	rows := make([]models.Setting, 0, len(updates))
	for k, v := range updates {
		key := strings.TrimSpace(k)
		if key == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidSetting)
		}
		if err := validateSetting(key, v); err != nil {
			return err
		}
		rows = append(rows, models.Setting{Key: key, Value: v})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return storageErr("update settings", err)
	}

	s.InvalidatePOSCaches(ctx, POS_SETTINGS_CACHE_KEY)
	return nil
}

// TaxConfig reads the tax percentage and mode, falling back to 10% when the
// stored value is missing.
func (s *POSHandler) TaxConfig(ctx context.Context) (decimal.Decimal, checkout.TaxMode, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return decimal.Zero, "", err
	}

	rate := decimal.NewFromInt(10)
	if v, ok := settings[database.SettingTaxPercent]; ok {
		if parsed, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			rate = parsed
		}
	}

	mode, err := checkout.ParseTaxMode(settings[database.SettingTaxMode])
	if err != nil {
		mode = checkout.TaxPercentage
	}
	return rate, mode, nil
}

func validateSetting(key, value string) error {
	switch key {
	case database.SettingTaxPercent:
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || rate.IsNegative() {
			return fmt.Errorf("%w: %s=%s", ErrInvalidSetting, key, strconv.Quote(value))
		}
	case database.SettingTaxMode:
		if _, err := checkout.ParseTaxMode(value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSetting, err)
		}
	}
	return nil
}
