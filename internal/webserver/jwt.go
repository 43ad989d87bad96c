package webserver

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/gocart-dev/gocart/config"
	"github.com/gocart-dev/gocart/internal/domain"
)

// LoginClaims is the JWT payload issued at login.
type LoginClaims struct {
	UserId string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed access token for the user.
func GenerateToken(cfg config.WebConfig, user *domain.User) (string, error) {
	now := time.Now()
	claims := LoginClaims{
		UserId: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.JwtExpireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JwtSecret))
}

// JwtMiddleware verifies bearer tokens and stores the parsed claims under
// the default "user" context key.
func JwtMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(LoginClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized,
				"You are not logged in! Please log in to get access")
		},
	})
}

// TokenClaims extracts the verified login claims set by JwtMiddleware.
func TokenClaims(c echo.Context) *LoginClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*LoginClaims)
	if !ok {
		return nil
	}
	return claims
}
