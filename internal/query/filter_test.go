package query

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func queryContext(rawQuery string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("GET", "/products?"+rawQuery, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParseProductQuery_Defaults(t *testing.T) {
	q, err := ParseProductQuery(queryContext(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != DefaultPage || q.Limit != DefaultLimit {
		t.Errorf("want page %d limit %d, got %d %d", DefaultPage, DefaultLimit, q.Page, q.Limit)
	}
	if q.SortBy != "created_at" || q.Order != OrderDesc {
		t.Errorf("want created_at desc default, got %s %s", q.SortBy, q.Order)
	}
	if q.CategoryId != nil || q.Available != nil || q.PriceGte != nil {
		t.Error("absent parameters must not produce constraints")
	}
}

func TestParseProductQuery_Values(t *testing.T) {
	q, err := ParseProductQuery(queryContext(
		"page=3&limit=25&name=lap&brand=acme&category_id=7&availability=false" +
			"&price_gte=10&price_lte=99.5&rating_gte=2&discount_lte=50" +
			"&sortBy=price&order=asc&fields=name,price"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != 3 || q.Limit != 25 {
		t.Errorf("pagination not parsed: %d %d", q.Page, q.Limit)
	}
	if q.Name != "lap" || q.Brand != "acme" {
		t.Errorf("text filters not parsed: %q %q", q.Name, q.Brand)
	}
	if q.CategoryId == nil || *q.CategoryId != 7 {
		t.Errorf("category_id not parsed: %v", q.CategoryId)
	}
	if q.Available == nil || *q.Available {
		t.Errorf("availability not parsed: %v", q.Available)
	}
	if q.PriceGte == nil || *q.PriceGte != 10 || q.PriceLte == nil || *q.PriceLte != 99.5 {
		t.Errorf("price range not parsed: %v %v", q.PriceGte, q.PriceLte)
	}
	if q.RatingLte != nil || q.DiscountGte != nil {
		t.Error("one-sided ranges must leave the other bound unset")
	}
	if q.SortBy != "price" || q.Order != OrderAsc {
		t.Errorf("sort not parsed: %s %s", q.SortBy, q.Order)
	}
	if len(q.Fields) != 2 || q.Fields[0] != "name" || q.Fields[1] != "price" {
		t.Errorf("fields not parsed: %v", q.Fields)
	}
}

func TestParseProductQuery_Rejects(t *testing.T) {
	bad := []string{
		"page=0",
		"page=-1",
		"page=1.5",
		"limit=0",
		"limit=101",
		"category_id=seven",
		"availability=perhaps",
		"price_gte=-1",
		"rating_lte=5.1",
		"discount_gte=101",
		"sortBy=id",
		"sortBy=password",
		"order=upward",
		"fields=name,nope",
	}
	for _, raw := range bad {
		if _, err := ParseProductQuery(queryContext(raw)); err == nil {
			t.Errorf("query %q must fail validation", raw)
		}
	}
}

func TestSortFieldMapping(t *testing.T) {
	q, err := ParseProductQuery(queryContext("sortBy=createdAt&order=asc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.OrderClause() != "created_at ASC" {
		t.Errorf("want created_at ASC, got %q", q.OrderClause())
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		page, limit, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{5, 25, 100},
	}
	for _, tt := range tests {
		q := &ProductQuery{Page: tt.page, Limit: tt.limit}
		if got := q.Offset(); got != tt.want {
			t.Errorf("page %d limit %d: want offset %d, got %d", tt.page, tt.limit, tt.want, got)
		}
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		total       int64
		totalPages  int
		hasNext     bool
		hasPrev     bool
	}{
		{"empty", 1, 10, 0, 0, false, false},
		{"partial page", 1, 10, 7, 1, false, false},
		{"exact fit", 1, 10, 10, 1, false, false},
		{"middle page", 2, 10, 25, 3, true, true},
		{"last page", 3, 10, 25, 3, false, true},
		{"past the end", 9, 10, 25, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &ProductQuery{Page: tt.page, Limit: tt.limit}
			p := q.Paginate(tt.total)
			if p.TotalPages != tt.totalPages {
				t.Errorf("want totalPages %d, got %d", tt.totalPages, p.TotalPages)
			}
			if p.HasNext != tt.hasNext || p.HasPrev != tt.hasPrev {
				t.Errorf("want next=%v prev=%v, got next=%v prev=%v",
					tt.hasNext, tt.hasPrev, p.HasNext, p.HasPrev)
			}
			if p.Total != tt.total {
				t.Errorf("want total %d, got %d", tt.total, p.Total)
			}
		})
	}
}

func TestCacheKeyParams_OnlyPresentFields(t *testing.T) {
	q, err := ParseProductQuery(queryContext("brand=acme&price_gte=5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := q.CacheKeyParams()

	for _, always := range []string{"page", "limit", "sortBy", "order"} {
		if _, ok := params[always]; !ok {
			t.Errorf("%s must always be part of the key", always)
		}
	}
	if params["brand"] != "acme" {
		t.Errorf("brand missing from key params: %v", params)
	}
	for _, absent := range []string{"name", "category_id", "availability", "price_lte", "fields"} {
		if _, ok := params[absent]; ok {
			t.Errorf("absent filter %s leaked into key params", absent)
		}
	}
}
