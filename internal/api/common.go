// Package api implements the resource controllers. Every handler follows
// the same request lifecycle: validate, optionally consult the cache, run
// the store operation, refresh or invalidate the cache, and answer with
// the fixed JSON envelope.
package api

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gocart-dev/gocart/internal/app"
	"github.com/gocart-dev/gocart/internal/cache"
	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/internal/webserver"
)

const currentUserKey = "gocart_current_user"

// GetApp returns the application context injected by the webserver.
func GetApp(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetApp(c).DB()
}

func GetCache(c echo.Context) *cache.Gateway {
	return GetApp(c).Cache()
}

// ---- response envelope ----

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

func okList(c echo.Context, results int, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"results": results,
		"data":    data,
	})
}

func noContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"status":  "error",
		"message": message,
	})
}

// failStore classifies a store-layer error into the error taxonomy:
// not-found, duplicate unique value, broken reference, or unexpected.
// Unexpected errors are logged and, outside debug mode, masked.
func failStore(c echo.Context, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fail(c, http.StatusConflict, "Duplicate field value entered, please use another value")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fail(c, http.StatusBadRequest, "Referenced record does not exist or is still referenced")
	}

	zap.L().Error("unexpected store error",
		zap.String("uri", c.Request().RequestURI), zap.Error(err))

	body := map[string]interface{}{
		"status":  "error",
		"message": "Something went wrong",
	}
	if GetApp(c).Config().System.Debug {
		body["error"] = err.Error()
		body["stack"] = string(debug.Stack())
	}
	return c.JSON(http.StatusInternalServerError, body)
}

// ---- authentication helpers ----

// Protect resolves the authenticated user behind the verified JWT and
// rejects stale tokens (password changed after issuance) and deactivated
// accounts. Runs after webserver.JwtMiddleware.
func Protect(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := webserver.TokenClaims(c)
		if claims == nil {
			return fail(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access")
		}

		var user domain.User
		if err := GetDB(c).Where("id = ?", claims.UserId).First(&user).Error; err != nil {
			return fail(c, http.StatusUnauthorized, "The user belonging to this token no longer exists")
		}
		if !user.Active {
			return fail(c, http.StatusUnauthorized, "This account has been deactivated")
		}
		var issuedAt time.Time
		if claims.IssuedAt != nil {
			issuedAt = claims.IssuedAt.Time
		}
		if user.PasswordChangedAfter(issuedAt) {
			return fail(c, http.StatusUnauthorized, "Password was changed recently, please log in again")
		}

		c.Set(currentUserKey, &user)
		return next(c)
	}
}

// restrictTo limits a route to the given roles; mounted after Protect.
func restrictTo(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := currentUser(c)
			if user == nil {
				return fail(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return fail(c, http.StatusForbidden, "You do not have permission to perform this action")
		}
	}
}

// currentUser returns the user resolved by Protect, nil on public routes.
func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(currentUserKey).(*domain.User)
	return user
}
