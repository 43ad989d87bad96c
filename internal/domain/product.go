package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id" form:"id"`
	Name string `gorm:"uniqueIndex;size:128" json:"name" form:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id" form:"id"`
	Name         string          `gorm:"index;size:255" json:"name" form:"name"`
	Description  string          `json:"description" form:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2)" json:"price" form:"price"`
	Unit         string          `gorm:"size:50" json:"unit" form:"unit"`
	Image        string          `json:"image" form:"image"`
	Discount     float64         `json:"discount" form:"discount"`
	Availability bool            `json:"availability" form:"availability"`
	Brand        string          `gorm:"index;size:100" json:"brand" form:"brand"`
	Rating       float64         `json:"rating" form:"rating"`

	// Optional category link; categories with dependent products cannot
	// be deleted (FK RESTRICT).
	CategoryId *int64    `gorm:"index" json:"category_id" form:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryId;constraint:OnDelete:RESTRICT" json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

type Review struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id" form:"id"`
	UserId    string  `gorm:"index;size:36;uniqueIndex:idx_review_user_product" json:"user_id"`
	ProductId string  `gorm:"index;size:36;uniqueIndex:idx_review_user_product" json:"product_id" form:"product_id"`
	Rating    float64 `json:"rating" form:"rating"`
	Content   string  `json:"content" form:"content"`

	User *User `gorm:"foreignKey:UserId" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}
