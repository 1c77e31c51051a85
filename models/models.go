package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Email     string `gorm:"size:255;not null;uniqueIndex"`
	Password  string `gorm:"size:255;not null"`
	Phone     string `gorm:"size:20"`
	Address   string
	CreatedAt time.Time
	Orders    []Order `gorm:"foreignKey:CustomerID"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string
	ParentID    *uint      `gorm:"index"`
	Children    []Category `gorm:"foreignKey:ParentID"`
	Products    []Product  `gorm:"foreignKey:CategoryID"`
}

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	CategoryID  uint   `gorm:"not null;index"`
	Name        string `gorm:"size:255;not null"`
	Description string
	Price       float64 `gorm:"not null"`
	Stock       int     `gorm:"default:0"`
	CreatedAt   time.Time
	Images      []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variations  []Variation    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	ImageURL  string `gorm:"size:500;not null"`
	IsPrimary bool   `gorm:"default:false"`
}

type Variation struct {
	ID              uint    `gorm:"primaryKey"`
	ProductID       uint    `gorm:"not null;uniqueIndex:idx_variations_attr"`
	AttributeName   string  `gorm:"size:100;not null;uniqueIndex:idx_variations_attr"`
	AttributeValue  string  `gorm:"size:100;not null;uniqueIndex:idx_variations_attr"`
	AdditionalPrice float64 `gorm:"default:0"`
	Stock           int     `gorm:"default:0"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID           uint   `gorm:"primaryKey"`
	CustomerID   *uint  `gorm:"index"`
	GuestName    string `gorm:"size:100"`
	GuestEmail   string `gorm:"size:255"`
	GuestPhone   string `gorm:"size:20"`
	GuestAddress string
	TotalAmount  float64     `gorm:"not null"`
	Status       OrderStatus `gorm:"size:20;not null;default:pending"`
	CreatedAt    time.Time
	Items        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID          uint  `gorm:"primaryKey"`
	OrderID     uint  `gorm:"not null;index"`
	ProductID   uint  `gorm:"not null;index"`
	VariationID *uint `gorm:"index"`
	Quantity    int   `gorm:"not null"`
	// Price is the unit price captured at order time, not a live reference
	// to the current product price.
	Price float64 `gorm:"not null"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Customer{},
		&Category{},
		&Product{},
		&ProductImage{},
		&Variation{},
		&Order{},
		&OrderItem{},
	)
}
