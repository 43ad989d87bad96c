package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gocart-dev/gocart/internal/domain"
)

type updateMePayload struct {
	Name         *string `json:"name" validate:"omitempty,min=2"`
	Email        *string `json:"email" validate:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number" validate:"omitempty,min=10,max=15"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,url"`
	// Present passwords are rejected, not silently ignored.
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type adminUserPayload struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

func getMe(c echo.Context) error {
	return ok(c, map[string]interface{}{"user": currentUser(c)})
}

func updateMe(c echo.Context) error {
	var payload updateMePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse payload")
	}
	if payload.Password != "" || payload.PasswordConfirm != "" {
		return fail(c, http.StatusBadRequest,
			"This route is not for password updates, please use /updateMyPassword")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid profile payload")
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Email != nil {
		updates["email"] = *payload.Email
	}
	if payload.PhoneNumber != nil {
		updates["phone_number"] = *payload.PhoneNumber
	}
	if payload.ProfileImage != nil {
		updates["profile_image"] = *payload.ProfileImage
	}
	if len(updates) == 0 {
		return fail(c, http.StatusBadRequest,
			"Provide at least one field to update (name, email, phone_number, profile_image)")
	}
	updates["updated_at"] = time.Now()

	user := currentUser(c)
	if err := GetDB(c).Model(user).Updates(updates).Error; err != nil {
		return failStore(c, err, "User not found")
	}
	GetDB(c).Where("id = ?", user.ID).First(user)

	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResUser, user.ID))
	gw.InvalidateScope(ctx, domain.ResUser)

	return ok(c, map[string]interface{}{"user": user})
}

// deleteMe deactivates the account instead of deleting the row.
func deleteMe(c echo.Context) error {
	user := currentUser(c)
	if err := GetDB(c).Model(user).Update("active", false).Error; err != nil {
		return failStore(c, err, "User not found")
	}

	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResUser, user.ID))
	gw.InvalidateScope(ctx, domain.ResUser)

	return noContent(c)
}

// ---- admin surface ----

func adminListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	gw := GetCache(c)
	key := gw.KeyForQuery(domain.ResUser, map[string]interface{}{"all": true})
	if data, hit := gw.Get(ctx, key); hit {
		return c.JSONBlob(http.StatusOK, data)
	}

	var users []domain.User
	if err := GetDB(c).Order("created_at DESC").Find(&users).Error; err != nil {
		return failStore(c, err, "Users not found")
	}

	envelope := map[string]interface{}{
		"status":  "success",
		"results": len(users),
		"data":    map[string]interface{}{"users": users},
	}
	gw.Set(ctx, key, envelope)
	return c.JSON(http.StatusOK, envelope)
}

func adminGetUser(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	gw := GetCache(c)
	key := gw.KeyForID(domain.ResUser, id)
	if data, hit := gw.Get(ctx, key); hit {
		return c.JSONBlob(http.StatusOK, data)
	}

	var user domain.User
	if err := GetDB(c).Where("id = ?", id).First(&user).Error; err != nil {
		return failStore(c, err, "There is no user with this ID")
	}

	envelope := map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"user": user},
	}
	gw.Set(ctx, key, envelope)
	return c.JSON(http.StatusOK, envelope)
}

func adminCreateUser(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  "error",
		"message": "This route is not defined! Please use /signup instead",
	})
}

func adminUpdateUser(c echo.Context) error {
	id := c.Param("id")

	var payload adminUserPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user payload")
	}

	db := GetDB(c)
	var user domain.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return failStore(c, err, "No user found with this ID")
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Email != nil {
		updates["email"] = *payload.Email
	}
	if payload.Role != nil {
		updates["role"] = *payload.Role
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return failStore(c, err, "No user found with this ID")
	}
	db.Where("id = ?", id).First(&user)

	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResUser, id))
	gw.InvalidateScope(ctx, domain.ResUser)

	return ok(c, map[string]interface{}{"user": user})
}

func adminDeleteUser(c echo.Context) error {
	id := c.Param("id")

	res := GetDB(c).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return failStore(c, res.Error, "No user found with this ID")
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "No user found with this ID")
	}

	ctx := c.Request().Context()
	gw := GetCache(c)
	gw.Invalidate(ctx, gw.KeyForID(domain.ResUser, id))
	gw.InvalidateScope(ctx, domain.ResUser)

	return noContent(c)
}
