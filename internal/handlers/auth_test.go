package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

func newAuthEnv() (*testEnv, *AuthHandler) {
	env := newTestEnv()
	return env, NewAuthHandler(env.users, nil)
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

func (env *testEnv) signup(t *testing.T, h *AuthHandler, fullname, email, password string) tokenResponse {
	t.Helper()
	body, _ := json.Marshal(models.SignupRequest{Fullname: fullname, Email: email, Password: password})
	c, rec := env.request(http.MethodPost, "/api/v1/auth/signup", string(body), "")
	if err := h.Signup(c); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestSignup(t *testing.T) {
	env, h := newAuthEnv()

	resp := env.signup(t, h, "Jo Doe", "jo@example.com", "secret123")

	if resp.User.UID == "" {
		t.Fatal("expected a minted uid")
	}
	if resp.User.Username != "jo" {
		t.Fatalf("expected username from the email's local part, got %q", resp.User.Username)
	}
	if resp.User.Password != "" {
		t.Fatal("the password hash must never be serialized")
	}

	claims := &models.JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("supersecretjwtkey"), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UID != resp.User.UID || claims.Email != "jo@example.com" {
		t.Fatalf("token claims do not match the user: %+v", claims)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env, h := newAuthEnv()
	env.signup(t, h, "Jo Doe", "jo@example.com", "secret123")

	body := `{"fullname":"Other","email":"jo@example.com","password":"different1"}`
	c, _ := env.request(http.MethodPost, "/api/v1/auth/signup", body, "")
	err := h.Signup(c)
	if status := httpStatus(t, err); status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
}

func TestSignup_UsernameCollision(t *testing.T) {
	env, h := newAuthEnv()
	env.signup(t, h, "Jo One", "jo@one.com", "secret123")
	resp := env.signup(t, h, "Jo Two", "jo@two.com", "secret123")

	if resp.User.Username == "jo" {
		t.Fatal("expected a suffixed username on collision")
	}
	if len(resp.User.Username) != len("jo-")+8 {
		t.Fatalf("expected an 8-char suffix, got %q", resp.User.Username)
	}
}

func TestSignIn(t *testing.T) {
	env, h := newAuthEnv()
	env.signup(t, h, "Jo Doe", "jo@example.com", "secret123")

	c, rec := env.request(http.MethodPost, "/api/v1/auth/signin", `{"email":"jo@example.com","password":"secret123"}`, "")
	if err := h.SignIn(c); err != nil {
		t.Fatalf("signin: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	env, h := newAuthEnv()
	env.signup(t, h, "Jo Doe", "jo@example.com", "secret123")

	c, _ := env.request(http.MethodPost, "/api/v1/auth/signin", `{"email":"jo@example.com","password":"nope-nope"}`, "")
	err := h.SignIn(c)
	if status := httpStatus(t, err); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestSignIn_UnknownEmail(t *testing.T) {
	env, h := newAuthEnv()

	c, _ := env.request(http.MethodPost, "/api/v1/auth/signin", `{"email":"ghost@example.com","password":"whatever1"}`, "")
	err := h.SignIn(c)
	if status := httpStatus(t, err); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestSignIn_GoogleAccount(t *testing.T) {
	env, h := newAuthEnv()
	err := env.users.CreateUser(&models.User{
		UID: "g-uid", Username: "guser", Email: "g@example.com", GoogleAuth: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c, _ := env.request(http.MethodPost, "/api/v1/auth/signin", `{"email":"g@example.com","password":"whatever1"}`, "")
	signInErr := h.SignIn(c)
	if status := httpStatus(t, signInErr); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
}
