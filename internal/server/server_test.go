package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"backend-inkwell/internal/config"

	"github.com/gofiber/fiber/v2"
)

func newTestServer() *Server {
	return NewServer(config.Config{JWTSecret: "secret"}, nil, nil)
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer()

	resp, err := s.App.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer()

	resp, err := s.App.Test(httptest.NewRequest("GET", "/nope", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := newTestServer()

	targets := []struct {
		method string
		path   string
	}{
		{"POST", "/posts"},
		{"POST", "/follow/alice"},
		{"POST", "/posts/p1/like"},
		{"GET", "/feed/following"},
		{"PATCH", "/users/me"},
	}
	for _, tc := range targets {
		resp, err := s.App.Test(httptest.NewRequest(tc.method, tc.path, nil))
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}
