package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/internal/query"
	"github.com/gocart-dev/gocart/pkg/common"
)

type productPayload struct {
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	Unit         string   `json:"unit" validate:"max=50"`
	Image        string   `json:"image" validate:"omitempty,url"`
	Discount     float64  `json:"discount" validate:"min=0,max=100"`
	Availability *bool    `json:"availability"`
	Brand        string   `json:"brand" validate:"max=100"`
	Rating       float64  `json:"rating" validate:"min=0,max=5"`
	CategoryId   *int64   `json:"category_id"`
}

type productUpdatePayload struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price" validate:"omitempty,gt=0"`
	Unit         *string  `json:"unit" validate:"omitempty,max=50"`
	Image        *string  `json:"image" validate:"omitempty,url"`
	Discount     *float64 `json:"discount" validate:"omitempty,min=0,max=100"`
	Availability *bool    `json:"availability"`
	Brand        *string  `json:"brand" validate:"omitempty,max=100"`
	Rating       *float64 `json:"rating" validate:"omitempty,min=0,max=5"`
	CategoryId   *int64   `json:"category_id"`
}

// listProducts serves the filtered, sorted, paginated catalog. The full
// response envelope of each distinct query is memoized until any product
// write sweeps the scope.
func listProducts(c echo.Context) error {
	q, err := query.ParseProductQuery(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	gw := GetCache(c)
	key := gw.KeyForQuery(domain.ResProduct, q.CacheKeyParams())
	if data, hit := gw.Get(ctx, key); hit {
		return c.JSONBlob(http.StatusOK, data)
	}

	base := GetDB(c).Model(&domain.Product{}).Scopes(q.Scope)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return failStore(c, err, "Products not found")
	}

	tx := GetDB(c).Model(&domain.Product{}).Scopes(q.Scope).
		Order(q.OrderClause()).Offset(q.Offset()).Limit(q.Limit)
	if len(q.Fields) > 0 {
		tx = tx.Select(q.Fields)
	} else {
		tx = tx.Preload("Category")
	}

	var products []domain.Product
	if err := tx.Find(&products).Error; err != nil {
		return failStore(c, err, "Products not found")
	}

	envelope := map[string]interface{}{
		"status":     "success",
		"results":    len(products),
		"data":       map[string]interface{}{"products": products},
		"pagination": q.Paginate(total),
	}
	gw.Set(ctx, key, envelope)
	return c.JSON(http.StatusOK, envelope)
}

func getProduct(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	gw := GetCache(c)
	key := gw.KeyForID(domain.ResProduct, id)
	if data, hit := gw.Get(ctx, key); hit {
		return c.JSONBlob(http.StatusOK, data)
	}

	var product domain.Product
	if err := GetDB(c).Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		return failStore(c, err, "Product not found")
	}

	envelope := map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"product": product},
	}
	gw.Set(ctx, key, envelope)
	return c.JSON(http.StatusOK, envelope)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse product payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product payload")
	}

	db := GetDB(c)
	if payload.CategoryId != nil {
		var count int64
		if err := db.Model(&domain.Category{}).Where("id = ?", *payload.CategoryId).Count(&count).Error; err != nil {
			return failStore(c, err, "Category not found")
		}
		if count == 0 {
			return fail(c, http.StatusBadRequest, "Referenced category does not exist")
		}
	}

	availability := true
	if payload.Availability != nil {
		availability = *payload.Availability
	}
	product := domain.Product{
		ID:           common.UUID(),
		Name:         payload.Name,
		Description:  payload.Description,
		Price:        decimal.NewFromFloat(payload.Price),
		Unit:         payload.Unit,
		Image:        payload.Image,
		Discount:     payload.Discount,
		Availability: availability,
		Brand:        payload.Brand,
		Rating:       payload.Rating,
		CategoryId:   payload.CategoryId,
	}
	if err := db.Create(&product).Error; err != nil {
		return failStore(c, err, "Product not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResProduct)
	return created(c, map[string]interface{}{"product": product})
}

func updateProduct(c echo.Context) error {
	id := c.Param("id")

	var payload productUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse product payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product payload")
	}

	db := GetDB(c)
	var product domain.Product
	if err := db.Where("id = ?", id).First(&product).Error; err != nil {
		return failStore(c, err, "Product not found")
	}

	if payload.CategoryId != nil {
		var count int64
		if err := db.Model(&domain.Category{}).Where("id = ?", *payload.CategoryId).Count(&count).Error; err != nil {
			return failStore(c, err, "Category not found")
		}
		if count == 0 {
			return fail(c, http.StatusBadRequest, "Referenced category does not exist")
		}
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Price != nil {
		updates["price"] = decimal.NewFromFloat(*payload.Price)
	}
	if payload.Unit != nil {
		updates["unit"] = *payload.Unit
	}
	if payload.Image != nil {
		updates["image"] = *payload.Image
	}
	if payload.Discount != nil {
		updates["discount"] = *payload.Discount
	}
	if payload.Availability != nil {
		updates["availability"] = *payload.Availability
	}
	if payload.Brand != nil {
		updates["brand"] = *payload.Brand
	}
	if payload.Rating != nil {
		updates["rating"] = *payload.Rating
	}
	if payload.CategoryId != nil {
		updates["category_id"] = *payload.CategoryId
	}

	if err := db.Model(&product).Updates(updates).Error; err != nil {
		return failStore(c, err, "Product not found")
	}
	db.Preload("Category").Where("id = ?", id).First(&product)

	// commit first, then best-effort invalidation
	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResProduct, id))
	gw.InvalidateScope(ctx, domain.ResProduct)

	return ok(c, map[string]interface{}{"product": product})
}

func deleteProduct(c echo.Context) error {
	id := c.Param("id")

	res := GetDB(c).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return failStore(c, res.Error, "Product not found")
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "Product not found")
	}

	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResProduct, id))
	gw.InvalidateScope(ctx, domain.ResProduct)

	return noContent(c)
}
