package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealthHandler(t *testing.T) {
	store := newTestStore(t)
	handler := NewHealthHandler(store)

	app := fiber.New()
	app.Get("/health", handler.Handle)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	result := decodeJSON(t, resp)
	if result["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", result["status"])
	}
	if result["data_dir"] != store.Dir() {
		t.Errorf("Expected data_dir %q, got %v", store.Dir(), result["data_dir"])
	}
	if result["timestamp"] == nil {
		t.Error("Expected 'timestamp' field in response")
	}
}
