package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateAndParseToken(t *testing.T) {
	SetSecret([]byte("test-secret"))

	username := "operator"
	token, err := CreateToken(username, time.Minute)
	if err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}

	if claims.Username != username {
		t.Errorf("Expected username %q, got %q", username, claims.Username)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	SetSecret([]byte("test-secret"))

	if _, err := ParseToken("not.a.real.token"); err == nil {
		t.Error("Expected error for invalid token, got none")
	}
}

func TestExtractBearerToken(t *testing.T) {
	if got := extractBearerToken("Bearer sometoken123"); got != "sometoken123" {
		t.Errorf("Expected 'sometoken123', got %q", got)
	}
	if got := extractBearerToken("Basic abc"); got != "" {
		t.Errorf("Expected '', got %q", got)
	}
}

func TestMiddleware_Success(t *testing.T) {
	SetSecret([]byte("test-secret"))
	token, _ := CreateToken("operator", time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/api/baselines", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	var gotUser string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := FromContext(r.Context()); ok {
			gotUser = claims.Username
		}
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if gotUser != "operator" {
		t.Errorf("Expected claims for 'operator', got %q", gotUser)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/baselines", nil)
	rr := httptest.NewRecorder()

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without auth header")
	}))
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rr.Code)
	}
}

func TestMiddleware_BadToken(t *testing.T) {
	SetSecret([]byte("test-secret"))

	req := httptest.NewRequest(http.MethodPost, "/api/baselines", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a bad token")
	}))
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rr.Code)
	}
}

func TestUsersManager(t *testing.T) {
	um := NewUsersManager()

	um.AddUser("alice")
	if !um.HasUser("alice") {
		t.Fatal("expected user to be registered")
	}

	if err := um.AddToken("alice", "tok123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := um.AddToken("bob", "tok456"); err == nil {
		t.Error("expected error for unknown user")
	}

	users := um.GetUsers()
	if len(users) != 1 || users[0].Name() != "alice" || users[0].Token() != "tok123" {
		t.Errorf("unexpected users list: %+v", users)
	}
}
