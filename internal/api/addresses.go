package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/pkg/common"
)

type addressPayload struct {
	Label      string `json:"label" validate:"max=64"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required,max=128"`
	State      string `json:"state" validate:"max=128"`
	PostalCode string `json:"postal_code" validate:"required,max=32"`
	Country    string `json:"country" validate:"required,max=128"`
	IsDefault  bool   `json:"is_default"`
}

type addressUpdatePayload struct {
	Label      *string `json:"label" validate:"omitempty,max=64"`
	Street     *string `json:"street"`
	City       *string `json:"city" validate:"omitempty,max=128"`
	State      *string `json:"state" validate:"omitempty,max=128"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=32"`
	Country    *string `json:"country" validate:"omitempty,max=128"`
	IsDefault  *bool   `json:"is_default"`
}

// ownAddress fetches an address owned by the requesting user. A foreign
// address answers exactly like a missing one so existence does not leak.
func ownAddress(c echo.Context, id string) (*domain.Address, bool) {
	var address domain.Address
	err := GetDB(c).Where("id = ?", id).First(&address).Error
	if err != nil || address.UserId != currentUser(c).ID {
		return nil, false
	}
	return &address, true
}

func listMyAddresses(c echo.Context) error {
	var addresses []domain.Address
	err := GetDB(c).Where("user_id = ?", currentUser(c).ID).Order("created_at DESC").Find(&addresses).Error
	if err != nil {
		return failStore(c, err, "Addresses not found")
	}
	return okList(c, len(addresses), map[string]interface{}{"addresses": addresses})
}

func getAddress(c echo.Context) error {
	address, found := ownAddress(c, c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "Address not found")
	}
	return ok(c, map[string]interface{}{"address": address})
}

func createAddress(c echo.Context) error {
	var payload addressPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse address payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid address payload")
	}

	address := domain.Address{
		ID:         common.UUID(),
		UserId:     currentUser(c).ID,
		Label:      payload.Label,
		Street:     payload.Street,
		City:       payload.City,
		State:      payload.State,
		PostalCode: payload.PostalCode,
		Country:    payload.Country,
		IsDefault:  payload.IsDefault,
	}
	if err := GetDB(c).Create(&address).Error; err != nil {
		return failStore(c, err, "Address not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResAddress)
	return created(c, map[string]interface{}{"address": address})
}

func updateAddress(c echo.Context) error {
	address, found := ownAddress(c, c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "Address not found")
	}

	var payload addressUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse address payload")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid address payload")
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Label != nil {
		updates["label"] = *payload.Label
	}
	if payload.Street != nil {
		updates["street"] = *payload.Street
	}
	if payload.City != nil {
		updates["city"] = *payload.City
	}
	if payload.State != nil {
		updates["state"] = *payload.State
	}
	if payload.PostalCode != nil {
		updates["postal_code"] = *payload.PostalCode
	}
	if payload.Country != nil {
		updates["country"] = *payload.Country
	}
	if payload.IsDefault != nil {
		updates["is_default"] = *payload.IsDefault
	}

	if err := GetDB(c).Model(address).Updates(updates).Error; err != nil {
		return failStore(c, err, "Address not found")
	}
	GetDB(c).Where("id = ?", address.ID).First(address)

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResAddress)
	return ok(c, map[string]interface{}{"address": address})
}

func deleteAddress(c echo.Context) error {
	address, found := ownAddress(c, c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "Address not found")
	}

	if err := GetDB(c).Delete(address).Error; err != nil {
		return failStore(c, err, "Address not found")
	}

	GetCache(c).InvalidateScope(c.Request().Context(), domain.ResAddress)
	return noContent(c)
}
