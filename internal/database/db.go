package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cafe-pos/internal/database/models"
)

const (
	SettingTaxPercent = "tax_percent"
	SettingTaxMode    = "tax_mode"
)

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

func MigratePOSDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Setting{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	defaults := []models.Setting{
		{Key: SettingTaxPercent, Value: "10"},
		{Key: SettingTaxMode, Value: "percentage"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error
}

// SeedPOSDB loads the demo catalog and staff accounts. Without force it only
// runs against an empty product table.
func SeedPOSDB(db *gorm.DB, force bool) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if !force && count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := []struct{ email, password, role string }{
			{"kh@ch", "0000", models.RoleCashier},
			{"manager@example", "manager123", models.RoleManager},
		}
		for _, u := range users {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user := models.User{Email: u.email, Password: string(hash), Role: u.role}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
				return err
			}
		}

		categoryIDs := map[string]int64{}
		for _, name := range []string{"Hot Drinks", "Cold Drinks", "Bakery"} {
			category := models.Category{Name: name}
			if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
				return err
			}
			categoryIDs[name] = category.ID
		}

		products := []models.Product{
			{Name: "Espresso", CategoryID: ptr(categoryIDs["Hot Drinks"]), Price: decimal.RequireFromString("2.50"), Stock: 20},
			{Name: "Latte", CategoryID: ptr(categoryIDs["Hot Drinks"]), Price: decimal.RequireFromString("3.50"), Stock: 15},
			{Name: "Iced Coffee", CategoryID: ptr(categoryIDs["Cold Drinks"]), Price: decimal.RequireFromString("3.00"), Stock: 12},
			{Name: "Croissant", CategoryID: ptr(categoryIDs["Bakery"]), Price: decimal.RequireFromString("2.00"), Stock: 8},
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}

		order := models.Order{
			OrderTime:     time.Now(),
			Subtotal:      decimal.RequireFromString("4.50"),
			Tax:           decimal.RequireFromString("0.45"),
			Discount:      decimal.Zero,
			Total:         decimal.RequireFromString("4.95"),
			PaymentMethod: models.PaymentCash,
			CashReceived:  decimal.NewFromInt(10),
			ChangeGiven:   decimal.RequireFromString("5.05"),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		items := []models.OrderItem{
			{OrderID: order.ID, ProductID: ptr(products[0].ID), Name: "Espresso", Qty: 1, Price: products[0].Price},
			{OrderID: order.ID, ProductID: ptr(products[3].ID), Name: "Croissant", Qty: 1, Price: products[3].Price},
		}
		return tx.Create(&items).Error
	})
}

func ptr[T any](v T) *T {
	return &v
}
