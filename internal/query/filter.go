// Package query compiles validated product list queries into gorm filters.
//
// The compiler is a pure mapping: every query field that is present yields
// exactly one predicate, an absent field yields no constraint at all. Sort
// fields are checked against a per-resource allow-list so an invalid field
// fails validation at the boundary instead of surfacing as a database error.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// productSortFields maps external sort field names to storage columns.
var productSortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"rating":    "rating",
	"discount":  "discount",
	"brand":     "brand",
}

// productSelectFields maps external projection names to storage columns.
var productSelectFields = map[string]string{
	"id":           "id",
	"product_id":   "id",
	"name":         "name",
	"description":  "description",
	"price":        "price",
	"unit":         "unit",
	"image":        "image",
	"discount":     "discount",
	"availability": "availability",
	"brand":        "brand",
	"rating":       "rating",
	"category_id":  "category_id",
	"createdAt":    "created_at",
	"created_at":   "created_at",
	"updatedAt":    "updated_at",
	"updated_at":   "updated_at",
}

// ProductQuery is the validated, request-scoped shape of a product list
// query. Nil pointer fields mean "no constraint".
type ProductQuery struct {
	Page  int
	Limit int

	Name       string
	Brand      string
	CategoryId *int64
	Available  *bool

	PriceGte    *float64
	PriceLte    *float64
	RatingGte   *float64
	RatingLte   *float64
	DiscountGte *float64
	DiscountLte *float64

	SortBy string // storage column, already allow-listed
	Order  string // "asc" | "desc"

	Fields []string // storage columns, empty means no projection
}

// ParseProductQuery builds a ProductQuery from the request query string.
// Any malformed or out-of-range parameter is a validation failure.
func ParseProductQuery(c echo.Context) (*ProductQuery, error) {
	q := &ProductQuery{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		SortBy: "created_at",
		Order:  OrderDesc,
	}

	var err error
	if q.Page, err = intParam(c, "page", DefaultPage); err != nil || q.Page < 1 {
		return nil, fmt.Errorf("page must be a positive integer")
	}
	if q.Limit, err = intParam(c, "limit", DefaultLimit); err != nil || q.Limit < 1 || q.Limit > MaxLimit {
		return nil, fmt.Errorf("limit must be an integer between 1 and %d", MaxLimit)
	}

	q.Name = strings.TrimSpace(c.QueryParam("name"))
	q.Brand = strings.TrimSpace(c.QueryParam("brand"))

	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("category_id must be an integer")
		}
		q.CategoryId = &id
	}
	if v := c.QueryParam("availability"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("availability must be a boolean")
		}
		q.Available = &b
	}

	ranges := []struct {
		param    string
		dst      **float64
		min, max float64
	}{
		{"price_gte", &q.PriceGte, 0, -1},
		{"price_lte", &q.PriceLte, 0, -1},
		{"rating_gte", &q.RatingGte, 0, 5},
		{"rating_lte", &q.RatingLte, 0, 5},
		{"discount_gte", &q.DiscountGte, 0, 100},
		{"discount_lte", &q.DiscountLte, 0, 100},
	}
	for _, r := range ranges {
		v := c.QueryParam(r.param)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < r.min || (r.max >= 0 && f > r.max) {
			return nil, fmt.Errorf("%s is out of range", r.param)
		}
		*r.dst = &f
	}

	if v := c.QueryParam("sortBy"); v != "" {
		col, ok := productSortFields[v]
		if !ok {
			return nil, fmt.Errorf("unsupported sort field: %s", v)
		}
		q.SortBy = col
	}
	if v := strings.ToLower(c.QueryParam("order")); v != "" {
		if v != OrderAsc && v != OrderDesc {
			return nil, fmt.Errorf("order must be 'asc' or 'desc'")
		}
		q.Order = v
	}

	if v := c.QueryParam("fields"); v != "" {
		for _, f := range strings.Split(v, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			col, ok := productSelectFields[f]
			if !ok {
				return nil, fmt.Errorf("unknown field: %s", f)
			}
			q.Fields = append(q.Fields, col)
		}
	}

	return q, nil
}

func intParam(c echo.Context, name string, defval int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return defval, nil
	}
	return strconv.Atoi(v)
}

// Scope applies the conjunctive predicate of all present filters. Intended
// for use with db.Scopes.
func (q *ProductQuery) Scope(db *gorm.DB) *gorm.DB {
	if q.Name != "" {
		db = containsFold(db, "name", q.Name)
	}
	if q.Brand != "" {
		db = containsFold(db, "brand", q.Brand)
	}
	if q.CategoryId != nil {
		db = db.Where("category_id = ?", *q.CategoryId)
	}
	if q.Available != nil {
		db = db.Where("availability = ?", *q.Available)
	}
	if q.PriceGte != nil {
		db = db.Where("price >= ?", *q.PriceGte)
	}
	if q.PriceLte != nil {
		db = db.Where("price <= ?", *q.PriceLte)
	}
	if q.RatingGte != nil {
		db = db.Where("rating >= ?", *q.RatingGte)
	}
	if q.RatingLte != nil {
		db = db.Where("rating <= ?", *q.RatingLte)
	}
	if q.DiscountGte != nil {
		db = db.Where("discount >= ?", *q.DiscountGte)
	}
	if q.DiscountLte != nil {
		db = db.Where("discount <= ?", *q.DiscountLte)
	}
	return db
}

// containsFold builds a case-insensitive substring match, using ILIKE on
// postgres and LOWER(...) LIKE elsewhere.
func containsFold(db *gorm.DB, column, value string) *gorm.DB {
	if strings.EqualFold(db.Dialector.Name(), "postgres") {
		return db.Where(column+" ILIKE ?", "%"+value+"%")
	}
	return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}

// OrderClause returns the single-key sort expression.
func (q *ProductQuery) OrderClause() string {
	dir := "DESC"
	if q.Order == OrderAsc {
		dir = "ASC"
	}
	return q.SortBy + " " + dir
}

func (q *ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// CacheKeyParams returns only the present query fields as a flat map; the
// cache gateway serializes it with sorted keys, so equivalent queries share
// one key regardless of parameter order.
func (q *ProductQuery) CacheKeyParams() map[string]interface{} {
	m := map[string]interface{}{
		"page":   q.Page,
		"limit":  q.Limit,
		"sortBy": q.SortBy,
		"order":  q.Order,
	}
	if q.Name != "" {
		m["name"] = q.Name
	}
	if q.Brand != "" {
		m["brand"] = q.Brand
	}
	if q.CategoryId != nil {
		m["category_id"] = *q.CategoryId
	}
	if q.Available != nil {
		m["availability"] = *q.Available
	}
	if q.PriceGte != nil {
		m["price_gte"] = *q.PriceGte
	}
	if q.PriceLte != nil {
		m["price_lte"] = *q.PriceLte
	}
	if q.RatingGte != nil {
		m["rating_gte"] = *q.RatingGte
	}
	if q.RatingLte != nil {
		m["rating_lte"] = *q.RatingLte
	}
	if q.DiscountGte != nil {
		m["discount_gte"] = *q.DiscountGte
	}
	if q.DiscountLte != nil {
		m["discount_lte"] = *q.DiscountLte
	}
	if len(q.Fields) > 0 {
		m["fields"] = strings.Join(q.Fields, ",")
	}
	return m
}

// Pagination is the list-response pagination block.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Paginate derives the pagination block for a total row count. An empty
// result set yields zero pages and no next/prev.
func (q *ProductQuery) Paginate(total int64) Pagination {
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    q.Page < totalPages,
		HasPrev:    q.Page > 1 && total > 0,
	}
}
