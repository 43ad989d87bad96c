package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	CancelledByUser  = "user"
	CancelledByAdmin = "admin"
)

// ValidOrderStatus reports whether s is one of the known order states.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID      string          `gorm:"primaryKey;size:36" json:"id"`
	OrderNo string          `gorm:"uniqueIndex;size:32" json:"order_no"`
	UserId  string          `gorm:"index;size:36" json:"user_id"`
	Total   decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	Status  string          `gorm:"index;size:16;default:PENDING" json:"status"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy string     `gorm:"size:16" json:"cancelled_by,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderId" json:"items,omitempty"`
	User  *User       `gorm:"foreignKey:UserId" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	OrderId   string          `gorm:"index;size:36" json:"order_id"`
	ProductId string          `gorm:"index;size:36" json:"product_id"`
	Quantity  int             `json:"quantity"`
	// Price is the unit price captured at order time, not the live price.
	Price decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`

	CreatedAt time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Cart struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserId string `gorm:"uniqueIndex;size:36" json:"user_id"`

	Items []CartItem `gorm:"foreignKey:CartId" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CartId    string `gorm:"index;size:36;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductId string `gorm:"size:36;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int    `json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductId" json:"product,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
