package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/pkg/common"
)

type orderItemPayload struct {
	ProductId string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderPayload struct {
	Items []orderItemPayload `json:"items" validate:"required,min=1,dive"`
}

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// createOrder totals the order from current store prices (client-supplied
// prices are never trusted), then writes the header and all lines in one
// all-or-nothing transaction. Every line is validated before the
// transaction starts.
func createOrder(c echo.Context) error {
	var payload createOrderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse order payload")
	}
	if len(payload.Items) == 0 {
		return fail(c, http.StatusBadRequest, "Items is required and cannot be empty")
	}

	db := GetDB(c)
	total := decimal.Zero
	orderItems := make([]domain.OrderItem, 0, len(payload.Items))

	for _, line := range payload.Items {
		if line.Quantity <= 0 {
			return fail(c, http.StatusBadRequest, "Quantity must be greater than zero")
		}
		var product domain.Product
		if err := db.Where("id = ?", line.ProductId).First(&product).Error; err != nil {
			return fail(c, http.StatusNotFound, "Product not found: "+line.ProductId)
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		orderItems = append(orderItems, domain.OrderItem{
			ID:        common.UUID(),
			ProductId: line.ProductId,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	order := domain.Order{
		ID:      common.UUID(),
		OrderNo: common.NextOrderNo(),
		UserId:  currentUser(c).ID,
		Total:   total,
		Status:  domain.OrderStatusPending,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range orderItems {
			orderItems[i].OrderId = order.ID
		}
		return tx.Create(&orderItems).Error
	})
	if err != nil {
		return failStore(c, err, "Order not found")
	}
	order.Items = orderItems

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResOrder)
	zap.L().Info("order created",
		zap.String("order_id", order.ID),
		zap.String("order_no", order.OrderNo),
		zap.String("total", total.String()))

	return created(c, map[string]interface{}{"order": order})
}

func listMyOrders(c echo.Context) error {
	var orders []domain.Order
	err := GetDB(c).Preload("Items").
		Where("user_id = ?", currentUser(c).ID).
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return failStore(c, err, "Orders not found")
	}
	return okList(c, len(orders), map[string]interface{}{"orders": orders})
}

func getOrder(c echo.Context) error {
	var order domain.Order
	err := GetDB(c).Preload("Items").Where("id = ?", c.Param("id")).First(&order).Error
	if err != nil {
		return failStore(c, err, "Order not found")
	}

	user := currentUser(c)
	if order.UserId != user.ID && !user.IsAdmin() {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	return ok(c, map[string]interface{}{"order": order})
}

// cancelOrder performs the user-initiated PENDING -> CANCELLED transition.
// The status guard is part of the UPDATE predicate, so a concurrent
// transition cannot cancel twice.
func cancelOrder(c echo.Context) error {
	id := c.Param("id")

	db := GetDB(c)
	var order domain.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		return failStore(c, err, "Order not found")
	}
	if order.UserId != currentUser(c).ID {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	if order.Status == domain.OrderStatusCancelled {
		return fail(c, http.StatusBadRequest, "Order already cancelled")
	}
	if order.Status != domain.OrderStatusPending {
		return fail(c, http.StatusBadRequest, "Order cannot be cancelled at this stage")
	}

	now := time.Now()
	res := db.Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, domain.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.OrderStatusCancelled,
			"cancelled_at": now,
			"cancelled_by": domain.CancelledByUser,
			"updated_at":   now,
		})
	if res.Error != nil {
		return failStore(c, res.Error, "Order not found")
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusBadRequest, "Order cannot be cancelled at this stage")
	}

	db.Preload("Items").Where("id = ?", id).First(&order)

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResOrder)
	zap.L().Info("order cancelled by user", zap.String("order_id", id))

	return ok(c, map[string]interface{}{"order": order})
}

// adminUpdateOrderStatus is the admin-side status transition path.
func adminUpdateOrderStatus(c echo.Context) error {
	id := c.Param("id")

	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse order payload")
	}
	if !domain.ValidOrderStatus(payload.Status) {
		return fail(c, http.StatusBadRequest, "Unknown order status: "+payload.Status)
	}

	db := GetDB(c)
	var order domain.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		return failStore(c, err, "Order not found")
	}
	if order.Status == domain.OrderStatusCancelled {
		return fail(c, http.StatusBadRequest, "Cancelled orders cannot change status")
	}

	updates := map[string]interface{}{
		"status":     payload.Status,
		"updated_at": time.Now(),
	}
	if payload.Status == domain.OrderStatusCancelled {
		updates["cancelled_at"] = time.Now()
		updates["cancelled_by"] = domain.CancelledByAdmin
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		return failStore(c, err, "Order not found")
	}
	db.Preload("Items").Where("id = ?", id).First(&order)

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResOrder)
	zap.L().Info("order status updated by admin",
		zap.String("order_id", id), zap.String("status", payload.Status))

	return ok(c, map[string]interface{}{"order": order})
}
