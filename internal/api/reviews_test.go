package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gocart-dev/gocart/internal/domain"
)

func TestCreateReview(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@example.com", domain.RoleUser)
	userToken := s.token(t, user)
	product := s.seedProduct(t, "Widget", "Acme", 10)

	reviewBody := fmt.Sprintf(`{"product_id":%q,"rating":4,"content":"Solid."}`, product.ID)

	rec, body := s.request(t, http.MethodPost, "/api/v1/reviews", reviewBody, userToken)
	wantStatus(t, rec, http.StatusCreated)
	review := dataField(t, body, "review")
	if review["rating"].(float64) != 4 {
		t.Errorf("unexpected review: %v", review)
	}

	t.Run("one review per user and product", func(t *testing.T) {
		rec, body := s.request(t, http.MethodPost, "/api/v1/reviews", reviewBody, userToken)
		wantStatus(t, rec, http.StatusBadRequest)
		if body["message"] != "You already reviewed this product" {
			t.Errorf("unexpected message: %v", body["message"])
		}
	})

	t.Run("another user may review the same product", func(t *testing.T) {
		other := s.createUser(t, "other@example.com", domain.RoleUser)
		rec, _ := s.request(t, http.MethodPost, "/api/v1/reviews", reviewBody, s.token(t, other))
		wantStatus(t, rec, http.StatusCreated)
	})

	t.Run("unknown product", func(t *testing.T) {
		rec, _ := s.request(t, http.MethodPost, "/api/v1/reviews",
			`{"product_id":"nope","rating":4}`, userToken)
		wantStatus(t, rec, http.StatusNotFound)
	})

	t.Run("rating bounds", func(t *testing.T) {
		for _, rating := range []string{"0", "6"} {
			rec, _ := s.request(t, http.MethodPost, "/api/v1/reviews",
				fmt.Sprintf(`{"product_id":%q,"rating":%s}`, product.ID, rating), userToken)
			wantStatus(t, rec, http.StatusBadRequest)
		}
	})
}

func TestListProductReviews(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@example.com", domain.RoleUser)
	userToken := s.token(t, user)
	product := s.seedProduct(t, "Widget", "Acme", 10)
	otherProduct := s.seedProduct(t, "Gadget", "Acme", 20)

	rec, _ := s.request(t, http.MethodPost, "/api/v1/reviews",
		fmt.Sprintf(`{"product_id":%q,"rating":5}`, product.ID), userToken)
	wantStatus(t, rec, http.StatusCreated)

	t.Run("requires product_id", func(t *testing.T) {
		rec, _ := s.request(t, http.MethodGet, "/api/v1/reviews", "", userToken)
		wantStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("scoped to one product", func(t *testing.T) {
		rec, body := s.request(t, http.MethodGet, "/api/v1/reviews?product_id="+product.ID, "", userToken)
		wantStatus(t, rec, http.StatusOK)
		if body["results"].(float64) != 1 {
			t.Errorf("want 1 review, got %v", body["results"])
		}
		reviews := body["data"].(map[string]interface{})["reviews"].([]interface{})
		reviewer := reviews[0].(map[string]interface{})["user"].(map[string]interface{})
		if reviewer["email"] != "user@example.com" {
			t.Errorf("reviewer not embedded: %v", reviewer)
		}

		rec, body = s.request(t, http.MethodGet, "/api/v1/reviews?product_id="+otherProduct.ID, "", userToken)
		wantStatus(t, rec, http.StatusOK)
		if body["results"].(float64) != 0 {
			t.Errorf("reviews leaked across products: %v", body["results"])
		}
	})

	t.Run("write sweeps the cached list", func(t *testing.T) {
		other := s.createUser(t, "other@example.com", domain.RoleUser)
		rec, _ := s.request(t, http.MethodPost, "/api/v1/reviews",
			fmt.Sprintf(`{"product_id":%q,"rating":3}`, product.ID), s.token(t, other))
		wantStatus(t, rec, http.StatusCreated)

		rec, body := s.request(t, http.MethodGet, "/api/v1/reviews?product_id="+product.ID, "", userToken)
		wantStatus(t, rec, http.StatusOK)
		if body["results"].(float64) != 2 {
			t.Errorf("cached list survived a write, got %v results", body["results"])
		}
	})
}

func TestUpdateAndDeleteReview(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner@example.com", domain.RoleUser)
	other := s.createUser(t, "other@example.com", domain.RoleUser)
	ownerToken := s.token(t, owner)
	product := s.seedProduct(t, "Widget", "Acme", 10)

	rec, body := s.request(t, http.MethodPost, "/api/v1/reviews",
		fmt.Sprintf(`{"product_id":%q,"rating":4,"content":"Fine."}`, product.ID), ownerToken)
	wantStatus(t, rec, http.StatusCreated)
	reviewId := dataField(t, body, "review")["id"].(string)

	// foreign reviews answer like missing ones
	rec, _ = s.request(t, http.MethodPatch, "/api/v1/reviews/"+reviewId,
		`{"rating":1}`, s.token(t, other))
	wantStatus(t, rec, http.StatusNotFound)

	rec, body = s.request(t, http.MethodPatch, "/api/v1/reviews/"+reviewId,
		`{"rating":2,"content":"Changed my mind."}`, ownerToken)
	wantStatus(t, rec, http.StatusOK)
	got := dataField(t, body, "review")
	if got["rating"].(float64) != 2 || got["content"] != "Changed my mind." {
		t.Errorf("update not applied: %v", got)
	}

	rec, _ = s.request(t, http.MethodDelete, "/api/v1/reviews/"+reviewId, "", s.token(t, other))
	wantStatus(t, rec, http.StatusNotFound)

	rec, _ = s.request(t, http.MethodDelete, "/api/v1/reviews/"+reviewId, "", ownerToken)
	wantStatus(t, rec, http.StatusNoContent)

	rec, _ = s.request(t, http.MethodDelete, "/api/v1/reviews/"+reviewId, "", ownerToken)
	wantStatus(t, rec, http.StatusNotFound)
}
