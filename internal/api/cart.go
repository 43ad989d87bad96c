package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/pkg/common"
)

type addCartItemPayload struct {
	ProductId string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemPayload struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ensureCart returns the user's cart, creating it on first use.
func ensureCart(db *gorm.DB, userId string) (*domain.Cart, error) {
	var cart domain.Cart
	err := db.Where(domain.Cart{UserId: userId}).
		Attrs(domain.Cart{ID: common.UUID()}).
		FirstOrCreate(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ownCartItem fetches a cart item owned by the requesting user; foreign
// items answer like missing ones.
func ownCartItem(c echo.Context, itemId string) (*domain.CartItem, bool) {
	var item domain.CartItem
	if err := GetDB(c).Where("id = ?", itemId).First(&item).Error; err != nil {
		return nil, false
	}
	var cart domain.Cart
	if err := GetDB(c).Where("id = ?", item.CartId).First(&cart).Error; err != nil {
		return nil, false
	}
	if cart.UserId != currentUser(c).ID {
		return nil, false
	}
	return &item, true
}

func getMyCart(c echo.Context) error {
	cart, err := ensureCart(GetDB(c), currentUser(c).ID)
	if err != nil {
		return failStore(c, err, "Cart not found")
	}

	if err := GetDB(c).Preload("Items.Product").Where("id = ?", cart.ID).First(cart).Error; err != nil {
		return failStore(c, err, "Cart not found")
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return ok(c, map[string]interface{}{"cart": cart})
}

// addCartItem adds quantity of a product to the user's cart. Repeated adds
// of the same product accumulate into one row through a single conditional
// upsert, so concurrent adds cannot lose an increment.
func addCartItem(c echo.Context) error {
	var payload addCartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse cart payload")
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}
	if payload.ProductId == "" || payload.Quantity < 0 {
		return fail(c, http.StatusBadRequest, "Please provide a valid product_id and quantity")
	}

	db := GetDB(c)
	var product domain.Product
	if err := db.Where("id = ?", payload.ProductId).First(&product).Error; err != nil {
		return failStore(c, err, "Product not found")
	}

	cart, err := ensureCart(db, currentUser(c).ID)
	if err != nil {
		return failStore(c, err, "Cart not found")
	}

	item := domain.CartItem{
		ID:        common.UUID(),
		CartId:    cart.ID,
		ProductId: payload.ProductId,
		Quantity:  payload.Quantity,
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return failStore(c, err, "Cart not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResCart)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Item added to cart",
	})
}

func updateCartItem(c echo.Context) error {
	var payload updateCartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse cart payload")
	}
	if payload.Quantity <= 0 {
		return fail(c, http.StatusBadRequest, "Quantity must be greater than zero")
	}

	item, found := ownCartItem(c, c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "Cart item not found")
	}

	err := GetDB(c).Model(item).Updates(map[string]interface{}{
		"quantity":   payload.Quantity,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return failStore(c, err, "Cart item not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResCart)
	return ok(c, map[string]interface{}{"item": item})
}

func removeCartItem(c echo.Context) error {
	item, found := ownCartItem(c, c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "Cart item not found")
	}

	if err := GetDB(c).Delete(item).Error; err != nil {
		return failStore(c, err, "Cart item not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResCart)
	return noContent(c)
}

func clearCart(c echo.Context) error {
	var cart domain.Cart
	err := GetDB(c).Where("user_id = ?", currentUser(c).ID).First(&cart).Error
	if err != nil {
		return failStore(c, err, "Cart not found")
	}

	if err := GetDB(c).Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
		return failStore(c, err, "Cart not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResCart)
	return noContent(c)
}
