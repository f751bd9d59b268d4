package models

import "time"

// InventoryItem is one row of the stock table. Item names are unique per
// owner; owner 0 is the shared single-operator namespace used when auth is
// disabled.
type InventoryItem struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	OwnerID   uint      `gorm:"not null;index:idx_owner_item,unique,priority:1" json:"-"`
	Item      string    `gorm:"size:120;not null;index:idx_owner_item,unique,priority:2" json:"item"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// SaleRecord is an append-only snapshot of one cart line at the moment of
// checkout. Price and Total are copied from the inventory row, so later
// price edits never rewrite history. Every line of a checkout carries the
// same SaleID and Timestamp.
type SaleRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"-"`
	SaleID    string    `gorm:"size:36;index" json:"sale_id"`
	Item      string    `gorm:"not null" json:"item"`
	Qty       int       `gorm:"not null" json:"qty"`
	Price     float64   `gorm:"not null" json:"price"`
	Total     float64   `gorm:"not null" json:"total"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	CreatedAt time.Time `json:"-"`
}

// User & auth related models
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null;index" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // hashed
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
