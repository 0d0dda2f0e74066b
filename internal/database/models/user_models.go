package models

import "time"

const (
	RoleCashier = "cashier"
	RoleManager = "manager"
)

type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      string     `gorm:"type:varchar(32);not null" json:"role"`
	LastLogin *time.Time `json:"-"`
	CreatedAt *time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime" json:"-"`
}
