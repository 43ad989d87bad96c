package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/pkg/common"
)

const signupBody = `{
	"name": "New User",
	"email": "new@example.com",
	"password": "password123",
	"passwordConfirm": "password123"
}`

func TestSignup(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.request(t, http.MethodPost, "/api/v1/users/signup", signupBody, "")
	wantStatus(t, rec, http.StatusCreated)

	if body["token"] == nil || body["token"] == "" {
		t.Error("signup must issue a session token")
	}
	user := dataField(t, body, "user")
	if user["role"] != domain.RoleUser {
		t.Errorf("self-registered accounts must be USER, got %v", user["role"])
	}
	if _, exposed := user["password"]; exposed {
		t.Error("password hash leaked in response")
	}

	// duplicate email
	rec, body = s.request(t, http.MethodPost, "/api/v1/users/signup", signupBody, "")
	wantStatus(t, rec, http.StatusConflict)
	if body["message"] != "An account with this email already exists" {
		t.Errorf("unexpected message: %v", body["message"])
	}

	// mismatched confirmation
	rec, _ = s.request(t, http.MethodPost, "/api/v1/users/signup",
		`{"name":"X Y","email":"x@example.com","password":"password123","passwordConfirm":"different1"}`, "")
	wantStatus(t, rec, http.StatusBadRequest)

	// short password
	rec, _ = s.request(t, http.MethodPost, "/api/v1/users/signup",
		`{"name":"X Y","email":"x@example.com","password":"short","passwordConfirm":"short"}`, "")
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@example.com", domain.RoleUser)

	rec, body := s.request(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"user@example.com","password":"password123"}`, "")
	wantStatus(t, rec, http.StatusOK)
	if body["token"] == nil {
		t.Error("login must issue a session token")
	}

	// unknown email and wrong password answer identically
	rec, body = s.request(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"user@example.com","password":"wrongpassword"}`, "")
	wantStatus(t, rec, http.StatusUnauthorized)
	wrongPassMsg := body["message"]

	rec, body = s.request(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"ghost@example.com","password":"password123"}`, "")
	wantStatus(t, rec, http.StatusUnauthorized)
	if body["message"] != wrongPassMsg {
		t.Errorf("unknown email and bad password must answer identically: %v vs %v",
			body["message"], wrongPassMsg)
	}

	// deactivated account
	s.db.Model(user).Update("active", false)
	rec, _ = s.request(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"user@example.com","password":"password123"}`, "")
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestProtect(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@example.com", domain.RoleUser)
	userToken := s.token(t, user)

	t.Run("no token", func(t *testing.T) {
		rec, _ := s.request(t, http.MethodGet, "/api/v1/users/me", "", "")
		wantStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec, _ := s.request(t, http.MethodGet, "/api/v1/users/me", "", "not.a.jwt")
		wantStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("valid token", func(t *testing.T) {
		rec, body := s.request(t, http.MethodGet, "/api/v1/users/me", "", userToken)
		wantStatus(t, rec, http.StatusOK)
		if dataField(t, body, "user")["email"] != "user@example.com" {
			t.Errorf("unexpected user: %v", body)
		}
	})

	t.Run("token of deleted user", func(t *testing.T) {
		ghost := s.createUser(t, "ghost@example.com", domain.RoleUser)
		ghostToken := s.token(t, ghost)
		s.db.Delete(ghost)

		rec, _ := s.request(t, http.MethodGet, "/api/v1/users/me", "", ghostToken)
		wantStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("stale token after password change", func(t *testing.T) {
		// token minted before the recorded change time is rejected
		changed := time.Now().Add(2 * time.Second)
		s.db.Model(user).Update("password_changed_at", changed)

		rec, _ := s.request(t, http.MethodGet, "/api/v1/users/me", "", userToken)
		wantStatus(t, rec, http.StatusUnauthorized)
	})
}

func TestForgetAndResetPassword(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@example.com", domain.RoleUser)

	// unknown address answers exactly like a known one
	rec, unknown := s.request(t, http.MethodPost, "/api/v1/users/forgetPassword",
		`{"email":"ghost@example.com"}`, "")
	wantStatus(t, rec, http.StatusOK)

	rec, known := s.request(t, http.MethodPost, "/api/v1/users/forgetPassword",
		`{"email":"user@example.com"}`, "")
	wantStatus(t, rec, http.StatusOK)
	knownMsg := known["data"].(map[string]interface{})["message"]
	unknownMsg := unknown["data"].(map[string]interface{})["message"]
	if knownMsg != unknownMsg {
		t.Error("forgetPassword must not reveal whether the address exists")
	}

	var stored domain.User
	s.db.Where("id = ?", user.ID).First(&stored)
	if stored.PasswordResetToken == "" || stored.PasswordResetExpires == nil {
		t.Fatal("reset token not recorded")
	}

	// a wrong token cannot reset
	rec, _ = s.request(t, http.MethodPatch, "/api/v1/users/resetPassword/wrongtoken",
		`{"password":"brandnewpass","passwordConfirm":"brandnewpass"}`, "")
	wantStatus(t, rec, http.StatusBadRequest)

	// consume a known token seeded directly
	reset := common.NewPasswordResetToken()
	s.db.Model(user).Updates(map[string]interface{}{
		"password_reset_token":   reset.Hashed,
		"password_reset_expires": reset.ExpiresAt,
	})

	rec, body := s.request(t, http.MethodPatch, "/api/v1/users/resetPassword/"+reset.Plain,
		`{"password":"brandnewpass","passwordConfirm":"brandnewpass"}`, "")
	wantStatus(t, rec, http.StatusOK)
	if body["token"] == nil {
		t.Error("reset must issue a fresh session token")
	}

	// the token is single use
	rec, _ = s.request(t, http.MethodPatch, "/api/v1/users/resetPassword/"+reset.Plain,
		`{"password":"anothernewpass","passwordConfirm":"anothernewpass"}`, "")
	wantStatus(t, rec, http.StatusBadRequest)

	// old password dead, new one live
	rec, _ = s.request(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"user@example.com","password":"password123"}`, "")
	wantStatus(t, rec, http.StatusUnauthorized)
	rec, _ = s.request(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"user@example.com","password":"brandnewpass"}`, "")
	wantStatus(t, rec, http.StatusOK)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@example.com", domain.RoleUser)

	reset := common.NewPasswordResetToken()
	expired := time.Now().Add(-time.Minute)
	s.db.Model(user).Updates(map[string]interface{}{
		"password_reset_token":   reset.Hashed,
		"password_reset_expires": expired,
	})

	rec, body := s.request(t, http.MethodPatch, "/api/v1/users/resetPassword/"+reset.Plain,
		`{"password":"brandnewpass","passwordConfirm":"brandnewpass"}`, "")
	wantStatus(t, rec, http.StatusBadRequest)
	if body["message"] != "Token is invalid or has expired" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestUpdateMyPassword(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@example.com", domain.RoleUser)
	userToken := s.token(t, user)

	rec, _ := s.request(t, http.MethodPatch, "/api/v1/users/updateMyPassword",
		`{"passwordCurrent":"wrongpassword","password":"brandnewpass","passwordConfirm":"brandnewpass"}`,
		userToken)
	wantStatus(t, rec, http.StatusUnauthorized)

	rec, body := s.request(t, http.MethodPatch, "/api/v1/users/updateMyPassword",
		`{"passwordCurrent":"password123","password":"brandnewpass","passwordConfirm":"brandnewpass"}`,
		userToken)
	wantStatus(t, rec, http.StatusOK)
	if body["token"] == nil {
		t.Error("password change must issue a fresh session token")
	}

	rec, _ = s.request(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"user@example.com","password":"brandnewpass"}`, "")
	wantStatus(t, rec, http.StatusOK)
}
