package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/pkg/common"
)

type reviewPayload struct {
	ProductId string  `json:"product_id" validate:"required"`
	Rating    float64 `json:"rating" validate:"required,min=1,max=5"`
	Content   string  `json:"content"`
}

type reviewUpdatePayload struct {
	Rating  *float64 `json:"rating" validate:"omitempty,min=1,max=5"`
	Content *string  `json:"content"`
}

// listProductReviews serves all reviews of one product, memoized per
// product until any review write sweeps the scope.
func listProductReviews(c echo.Context) error {
	productId := c.QueryParam("product_id")
	if productId == "" {
		return fail(c, http.StatusBadRequest, "product_id query parameter is required")
	}

	ctx := c.Request().Context()
	gw := GetCache(c)
	key := gw.KeyForQuery(domain.ResReview, map[string]interface{}{"product_id": productId})
	if data, hit := gw.Get(ctx, key); hit {
		return c.JSONBlob(http.StatusOK, data)
	}

	var reviews []domain.Review
	err := GetDB(c).Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email")
	}).Where("product_id = ?", productId).Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return failStore(c, err, "Reviews not found")
	}

	envelope := map[string]interface{}{
		"status":  "success",
		"results": len(reviews),
		"data":    map[string]interface{}{"reviews": reviews},
	}
	gw.Set(ctx, key, envelope)
	return c.JSON(http.StatusOK, envelope)
}

// createReview adds a review; one review per user and product.
func createReview(c echo.Context) error {
	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse review payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid review payload: rating must be between 1 and 5")
	}

	db := GetDB(c)
	var product domain.Product
	if err := db.Where("id = ?", payload.ProductId).First(&product).Error; err != nil {
		return failStore(c, err, "Product not found")
	}

	review := domain.Review{
		ID:        common.UUID(),
		UserId:    currentUser(c).ID,
		ProductId: payload.ProductId,
		Rating:    payload.Rating,
		Content:   payload.Content,
	}
	if err := db.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusBadRequest, "You already reviewed this product")
		}
		return failStore(c, err, "Review not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResReview)
	return created(c, map[string]interface{}{"review": review})
}

// ownReview fetches a review owned by the requesting user; foreign reviews
// answer like missing ones.
func ownReview(c echo.Context, id string) (*domain.Review, bool) {
	var review domain.Review
	err := GetDB(c).Where("id = ?", id).First(&review).Error
	if err != nil || review.UserId != currentUser(c).ID {
		return nil, false
	}
	return &review, true
}

func updateReview(c echo.Context) error {
	review, found := ownReview(c, c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "Review not found")
	}

	var payload reviewUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse review payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid review payload: rating must be between 1 and 5")
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Rating != nil {
		updates["rating"] = *payload.Rating
	}
	if payload.Content != nil {
		updates["content"] = *payload.Content
	}
	if err := GetDB(c).Model(review).Updates(updates).Error; err != nil {
		return failStore(c, err, "Review not found")
	}
	GetDB(c).Where("id = ?", review.ID).First(review)

	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResReview, review.ID))
	gw.InvalidateScope(ctx, domain.ResReview)

	return ok(c, map[string]interface{}{"review": review})
}

func deleteReview(c echo.Context) error {
	review, found := ownReview(c, c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "Review not found")
	}

	if err := GetDB(c).Delete(review).Error; err != nil {
		return failStore(c, err, "Review not found")
	}

	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResReview, review.ID))
	gw.InvalidateScope(ctx, domain.ResReview)

	return noContent(c)
}
