package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/internal/webserver"
	"github.com/gocart-dev/gocart/pkg/common"
)

type signupPayload struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,min=10,max=15"`
	ProfileImage    string `json:"profile_image" validate:"omitempty,url"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type forgetPasswordPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordPayload struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type updatePasswordPayload struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func issueSession(c echo.Context, user *domain.User, status int) error {
	token, err := webserver.GenerateToken(GetApp(c).Config().Web, user)
	if err != nil {
		return failStore(c, err, "")
	}
	return c.JSON(status, map[string]interface{}{
		"status": "success",
		"token":  token,
		"data":   map[string]interface{}{"user": user},
	})
}

func signup(c echo.Context) error {
	var payload signupPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse signup payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid signup payload: check name, email and matching passwords")
	}

	hashed, err := common.HashPassword(payload.Password)
	if err != nil {
		return failStore(c, err, "")
	}

	user := domain.User{
		ID:           common.UUID(),
		Name:         payload.Name,
		Email:        payload.Email,
		Password:     hashed,
		Role:         domain.RoleUser,
		PhoneNumber:  payload.PhoneNumber,
		ProfileImage: payload.ProfileImage,
		Active:       true,
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "An account with this email already exists")
		}
		return failStore(c, err, "")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResUser)
	zap.L().Info("user signed up", zap.String("user_id", user.ID))
	return issueSession(c, &user, http.StatusCreated)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse login payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Please provide email and password")
	}

	var user domain.User
	err := GetDB(c).Where("email = ?", payload.Email).First(&user).Error
	if err != nil || !common.CheckPassword(payload.Password, user.Password) {
		// identical answer for unknown email and bad password
		return fail(c, http.StatusUnauthorized, "Incorrect email or password")
	}
	if !user.Active {
		return fail(c, http.StatusUnauthorized, "This account has been deactivated")
	}

	zap.L().Info("user logged in", zap.String("user_id", user.ID))
	return issueSession(c, &user, http.StatusOK)
}

// forgetPassword issues a reset token and mails it. The answer does not
// reveal whether the address exists.
func forgetPassword(c echo.Context) error {
	var payload forgetPasswordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Please provide a valid email address")
	}

	neutral := func() error {
		return ok(c, map[string]interface{}{
			"message": "If the account exists, a reset token has been sent",
		})
	}

	var user domain.User
	if err := GetDB(c).Where("email = ? AND active = ?", payload.Email, true).First(&user).Error; err != nil {
		return neutral()
	}

	reset := common.NewPasswordResetToken()
	err := GetDB(c).Model(&user).Updates(map[string]interface{}{
		"password_reset_token":   reset.Hashed,
		"password_reset_expires": reset.ExpiresAt,
	}).Error
	if err != nil {
		return failStore(c, err, "")
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", c.Scheme()+"://"+c.Request().Host, reset.Plain)
	body := fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password to: %s\n"+
		"This link is valid for 10 minutes. If you didn't request a reset, ignore this email.", resetURL)
	if err := GetApp(c).Mailer().Send(user.Email, "Your password reset token", body); err != nil {
		zap.L().Error("failed to queue reset mail", zap.String("user_id", user.ID), zap.Error(err))
	}

	return neutral()
}

func resetPassword(c echo.Context) error {
	var payload resetPasswordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Passwords must match and be at least 8 characters")
	}

	hashedToken := common.Sha256Hash(c.Param("token"))

	var user domain.User
	err := GetDB(c).
		Where("password_reset_token = ? AND password_reset_expires > ?", hashedToken, time.Now()).
		First(&user).Error
	if err != nil {
		return fail(c, http.StatusBadRequest, "Token is invalid or has expired")
	}

	hashed, err := common.HashPassword(payload.Password)
	if err != nil {
		return failStore(c, err, "")
	}

	// backdate a second so the freshly issued token is not rejected
	now := time.Now().Add(-time.Second)
	err = GetDB(c).Model(&user).Updates(map[string]interface{}{
		"password":               hashed,
		"password_changed_at":    now,
		"password_reset_token":   "",
		"password_reset_expires": nil,
	}).Error
	if err != nil {
		return failStore(c, err, "")
	}

	zap.L().Info("password reset completed", zap.String("user_id", user.ID))
	user.Password = hashed
	return issueSession(c, &user, http.StatusOK)
}

func updateMyPassword(c echo.Context) error {
	var payload updatePasswordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Passwords must match and be at least 8 characters")
	}

	user := currentUser(c)
	if !common.CheckPassword(payload.PasswordCurrent, user.Password) {
		return fail(c, http.StatusUnauthorized, "Your current password is wrong")
	}

	hashed, err := common.HashPassword(payload.Password)
	if err != nil {
		return failStore(c, err, "")
	}

	now := time.Now().Add(-time.Second)
	err = GetDB(c).Model(user).Updates(map[string]interface{}{
		"password":            hashed,
		"password_changed_at": now,
	}).Error
	if err != nil {
		return failStore(c, err, "")
	}

	user.Password = hashed
	return issueSession(c, user, http.StatusOK)
}
