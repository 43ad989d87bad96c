// Package webserver hosts the echo HTTP server: shared middleware, request
// validation, JWT verification and the error envelope for unhandled errors.
package webserver

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/gocart-dev/gocart/config"
	"github.com/gocart-dev/gocart/internal/app"
)

// AppContextKey is the echo context key under which the application
// context is injected for handlers.
const AppContextKey = "gocart_appctx"

type WebServer struct {
	root *echo.Echo
	appx app.AppContext
}

func New(appx app.AppContext) *WebServer {
	ws := &WebServer{root: echo.New(), appx: appx}
	ws.root.HideBanner = true
	ws.root.Validator = &payloadValidator{validate: validator.New()}
	ws.root.HTTPErrorHandler = ws.errorHandler

	ws.root.Use(middleware.Recover())
	ws.root.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
	}))
	ws.root.Use(ws.injectAppContext)
	ws.root.Use(requestLogger)

	return ws
}

// Echo exposes the underlying instance for route registration and tests.
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

func (s *WebServer) Config() *config.AppConfig {
	return s.appx.Config()
}

func (s *WebServer) Start() error {
	cfg := s.appx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("Starting web server %s", addr)
	return s.root.Start(addr)
}

func (s *WebServer) injectAppContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(AppContextKey, s.appx)
		return next(c)
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		zap.L().Debug("http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", c.Response().Status),
			zap.String("remote_ip", c.RealIP()))
		return err
	}
}

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// errorHandler renders errors that escaped the handlers: JWT failures,
// route 404s, panics. Handlers normally answer through the api envelope
// helpers and never reach here.
func (s *WebServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}

	body := map[string]interface{}{
		"status":  "error",
		"message": message,
	}

	if code >= http.StatusInternalServerError {
		zap.L().Error("unhandled server error",
			zap.String("uri", c.Request().RequestURI), zap.Error(err))
		if s.appx.Config().System.Debug {
			body["error"] = err.Error()
			body["stack"] = string(debug.Stack())
		} else {
			body["message"] = "Something went wrong"
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}
