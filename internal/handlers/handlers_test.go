package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"supertavern-core/internal/storage"

	"github.com/gofiber/fiber/v2"
)

func newTestStore(t *testing.T) *storage.Store {
	store, err := storage.New(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("Failed to create document store: %v", err)
	}
	return store
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	return result
}

func expectError(t *testing.T, resp *http.Response, status int, message string) {
	if resp.StatusCode != status {
		t.Errorf("Expected status %d, got %d", status, resp.StatusCode)
	}
	result := decodeJSON(t, resp)
	if result["error"] != message {
		t.Errorf("Expected error %q, got %v", message, result["error"])
	}
}
