package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gocart-dev/gocart/config"
	"github.com/gocart-dev/gocart/internal/app"
	"github.com/gocart-dev/gocart/internal/cache"
	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/internal/webserver"
	"github.com/gocart-dev/gocart/pkg/common"
	"github.com/gocart-dev/gocart/pkg/mailer"
)

type testServer struct {
	e   *echo.Echo
	app *app.Application
	db  *gorm.DB
	red *miniredis.Miniredis
	cfg *config.AppConfig
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.AppConfig{}
	*cfg = *config.DefaultAppConfig
	cfg.System.Debug = true

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	red := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: red.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mail, err := mailer.NewMailer(cfg.Smtp)
	if err != nil {
		t.Fatalf("mailer: %v", err)
	}
	t.Cleanup(mail.Release)

	a := app.NewApplication(cfg)
	a.OverrideDB(db)
	a.OverrideCache(cache.NewGateway(rdb, time.Hour))
	a.OverrideMailer(mail)

	ws := webserver.New(a)
	InitRouter(ws)

	return &testServer{e: ws.Echo(), app: a, db: db, red: red, cfg: cfg}
}

func (s *testServer) createUser(t *testing.T, email, role string) *domain.User {
	t.Helper()
	hashed, err := common.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{
		ID:       common.UUID(),
		Name:     "Test User",
		Email:    email,
		Password: hashed,
		Role:     role,
		Active:   true,
	}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (s *testServer) token(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := webserver.GenerateToken(s.cfg.Web, user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func (s *testServer) seedCategory(t *testing.T, name string) *domain.Category {
	t.Helper()
	category := &domain.Category{Name: name}
	if err := s.db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func (s *testServer) seedProduct(t *testing.T, name, brand string, price float64, mutate ...func(*domain.Product)) *domain.Product {
	t.Helper()
	product := &domain.Product{
		ID:           common.UUID(),
		Name:         name,
		Brand:        brand,
		Price:        decimal.NewFromFloat(price),
		Availability: true,
		Rating:       4,
	}
	for _, m := range mutate {
		m(product)
	}
	if err := s.db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// request performs an HTTP round-trip through the full router.
func (s *testServer) request(t *testing.T, method, target, body, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var parsed map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return rec, parsed
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("want status %d, got %d, body: %s", want, rec.Code, rec.Body.String())
	}
}

func dataField(t *testing.T, body map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	field, ok := data[key].(map[string]interface{})
	if !ok {
		t.Fatalf("data has no %q object: %v", key, data)
	}
	return field
}
