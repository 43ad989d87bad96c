package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gocart-dev/gocart/internal/domain"
)

type categoryPayload struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

func listCategories(c echo.Context) error {
	ctx := c.Request().Context()
	gw := GetCache(c)
	key := gw.KeyForQuery(domain.ResCategory, map[string]interface{}{"all": true})
	if data, hit := gw.Get(ctx, key); hit {
		return c.JSONBlob(http.StatusOK, data)
	}

	var categories []domain.Category
	if err := GetDB(c).Order("id ASC").Find(&categories).Error; err != nil {
		return failStore(c, err, "Categories not found")
	}

	envelope := map[string]interface{}{
		"status":  "success",
		"results": len(categories),
		"data":    map[string]interface{}{"categories": categories},
	}
	gw.Set(ctx, key, envelope)
	return c.JSON(http.StatusOK, envelope)
}

func getCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "Category ID must be a positive integer")
	}

	ctx := c.Request().Context()
	gw := GetCache(c)
	key := gw.KeyForID(domain.ResCategory, strconv.FormatInt(id, 10))
	if data, hit := gw.Get(ctx, key); hit {
		return c.JSONBlob(http.StatusOK, data)
	}

	var category domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&category).Error; err != nil {
		return failStore(c, err, "Category not found")
	}

	envelope := map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"category": category},
	}
	gw.Set(ctx, key, envelope)
	return c.JSON(http.StatusOK, envelope)
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse category payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Category name is required")
	}

	category := domain.Category{Name: payload.Name}
	if err := GetDB(c).Create(&category).Error; err != nil {
		return failStore(c, err, "Category not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResCategory)
	return created(c, map[string]interface{}{"category": category})
}

// deleteCategory removes an empty category. Categories still referenced by
// products are protected by the FK constraint and classified as a
// business-rule violation.
func deleteCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return fail(c, http.StatusBadRequest, "Category ID must be a positive integer")
	}

	db := GetDB(c)
	var category domain.Category
	if err := db.Where("id = ?", id).First(&category).Error; err != nil {
		return failStore(c, err, "Category not found")
	}

	var dependents int64
	if err := db.Model(&domain.Product{}).Where("category_id = ?", id).Count(&dependents).Error; err != nil {
		return failStore(c, err, "Category not found")
	}
	if dependents > 0 {
		return fail(c, http.StatusBadRequest, "Category still has products and cannot be deleted")
	}

	if err := db.Delete(&category).Error; err != nil {
		return failStore(c, err, "Category not found")
	}

	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResCategory, strconv.FormatInt(id, 10)))
	gw.InvalidateScope(ctx, domain.ResCategory)

	return noContent(c)
}
