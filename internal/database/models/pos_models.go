package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Product stock is informational only and may go negative.
type Product struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string          `gorm:"type:varchar(128);not null" json:"name"`
	CategoryID *int64          `gorm:"index" json:"category_id"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock      int64           `gorm:"not null;default:0" json:"stock"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// ProductView is a product joined with its category name.
type ProductView struct {
	Product
	CategoryName *string `json:"category"`
}

type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderTime     time.Time       `gorm:"index;not null" json:"order_time"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentMethod string          `gorm:"type:varchar(16);not null" json:"payment_method"`
	CashReceived  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cash_received"`
	ChangeGiven   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"change_given"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"-"`
}

// OrderItem snapshots the product at sale time. ProductID has no foreign key
// so lines survive catalog deletes.
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"index;not null" json:"order_id"`
	ProductID *int64          `gorm:"index" json:"product_id"`
	Name      string          `gorm:"type:varchar(128);not null" json:"name"`
	Qty       int64           `gorm:"not null" json:"qty"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Modifiers string          `gorm:"type:text" json:"modifiers"`
	Notes     string          `gorm:"type:text" json:"notes"`
}

type Setting struct {
	Key   string `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value string `gorm:"type:text;not null" json:"value"`
}
