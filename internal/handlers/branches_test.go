package handlers

import (
	"fmt"
	"testing"

	"supertavern-core/internal/services"

	"github.com/gofiber/fiber/v2"
)

func setupBranchApp(t *testing.T) *fiber.App {
	store, err := services.NewBranchStore(newTestStore(t))
	if err != nil {
		t.Fatalf("Failed to create branch store: %v", err)
	}
	handler := NewBranchHandler(store)

	app := fiber.New()
	app.Post("/api/branches/get", handler.Get)
	app.Post("/api/branches/create", handler.Create)
	app.Post("/api/branches/switch", handler.Switch)
	app.Post("/api/branches/update", handler.Update)
	app.Post("/api/branches/delete", handler.Delete)
	app.Post("/api/branches/tree", handler.Tree)
	return app
}

func createBranch(t *testing.T, app *fiber.App, body string) map[string]interface{} {
	resp := postJSON(t, app, "/api/branches/create", body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeJSON(t, resp)
	if result["success"] != true {
		t.Fatalf("Expected success true, got %v", result["success"])
	}
	branch, ok := result["branch"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected branch object, got %v", result["branch"])
	}
	return branch
}

func TestBranchCreateAndGet(t *testing.T) {
	app := setupBranchApp(t)

	branch := createBranch(t, app, `{"chat_id":"c1","message_id":5,"branch_name":"AltEnding"}`)
	if branch["name"] != "AltEnding" {
		t.Errorf("Expected name 'AltEnding', got %v", branch["name"])
	}
	if branch["parent_message_id"] != "5" {
		t.Errorf("Expected parent_message_id '5', got %v", branch["parent_message_id"])
	}
	if branch["message_count"] != float64(0) {
		t.Errorf("Expected message_count 0, got %v", branch["message_count"])
	}
	if branch["id"] == "" || branch["id"] == nil {
		t.Error("Expected a non-empty branch id")
	}

	resp := postJSON(t, app, "/api/branches/get", `{"chat_id":"c1"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeJSON(t, resp)

	branches, ok := result["branches"].([]interface{})
	if !ok || len(branches) != 1 {
		t.Fatalf("Expected 1 branch, got %v", result["branches"])
	}
	tree, ok := result["tree"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected tree object, got %v", result["tree"])
	}
	children, ok := tree["5"].([]interface{})
	if !ok || len(children) != 1 || children[0] != branch["id"] {
		t.Errorf("Expected tree['5'] to hold the new branch id, got %v", tree["5"])
	}
}

func TestBranchCreateDefaultsName(t *testing.T) {
	app := setupBranchApp(t)

	first := createBranch(t, app, `{"chat_id":"c1","message_id":"3"}`)
	if first["name"] != "Branch 1" {
		t.Errorf("Expected name 'Branch 1', got %v", first["name"])
	}

	second := createBranch(t, app, `{"chat_id":"c1","message_id":"3"}`)
	if second["name"] != "Branch 2" {
		t.Errorf("Expected name 'Branch 2', got %v", second["name"])
	}
}

func TestBranchGetEmptyChat(t *testing.T) {
	app := setupBranchApp(t)

	resp := postJSON(t, app, "/api/branches/get", `{"chat_id":"fresh"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeJSON(t, resp)

	branches, ok := result["branches"].([]interface{})
	if !ok || len(branches) != 0 {
		t.Errorf("Expected empty branches array, got %v", result["branches"])
	}
}

func TestBranchSwitch(t *testing.T) {
	app := setupBranchApp(t)

	branch := createBranch(t, app, `{"chat_id":"c1","message_id":7,"branch_name":"fork"}`)

	body := fmt.Sprintf(`{"chat_id":"c1","branch_id":"%s"}`, branch["id"])
	resp := postJSON(t, app, "/api/branches/switch", body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeJSON(t, resp)
	if result["success"] != true {
		t.Errorf("Expected success true, got %v", result["success"])
	}
	if result["parent_message_id"] != "7" {
		t.Errorf("Expected parent_message_id '7', got %v", result["parent_message_id"])
	}
}

func TestBranchSwitchNotFound(t *testing.T) {
	app := setupBranchApp(t)

	resp := postJSON(t, app, "/api/branches/switch", `{"chat_id":"absent","branch_id":"x"}`)
	expectError(t, resp, fiber.StatusNotFound, "No branches found")

	createBranch(t, app, `{"chat_id":"c1","message_id":1}`)
	resp = postJSON(t, app, "/api/branches/switch", `{"chat_id":"c1","branch_id":"x"}`)
	expectError(t, resp, fiber.StatusNotFound, "Branch not found")
}

func TestBranchUpdate(t *testing.T) {
	app := setupBranchApp(t)

	branch := createBranch(t, app, `{"chat_id":"c1","message_id":1,"branch_name":"old"}`)

	body := fmt.Sprintf(`{"chat_id":"c1","branch_id":"%s","name":"renamed"}`, branch["id"])
	resp := postJSON(t, app, "/api/branches/update", body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeJSON(t, resp)
	updated := result["branch"].(map[string]interface{})
	if updated["name"] != "renamed" {
		t.Errorf("Expected name 'renamed', got %v", updated["name"])
	}
}

func TestBranchDeleteKeepsEmptiedTreeEntry(t *testing.T) {
	app := setupBranchApp(t)

	branch := createBranch(t, app, `{"chat_id":"c1","message_id":5}`)

	body := fmt.Sprintf(`{"chat_id":"c1","branch_id":"%s"}`, branch["id"])
	resp := postJSON(t, app, "/api/branches/delete", body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/branches/get", `{"chat_id":"c1"}`)
	result := decodeJSON(t, resp)
	branches := result["branches"].([]interface{})
	if len(branches) != 0 {
		t.Errorf("Expected no branches after delete, got %v", branches)
	}
	tree := result["tree"].(map[string]interface{})
	children, ok := tree["5"].([]interface{})
	if !ok || len(children) != 0 {
		t.Errorf("Expected tree['5'] to survive as an empty list, got %v", tree["5"])
	}
}

func TestBranchTree(t *testing.T) {
	app := setupBranchApp(t)

	branch := createBranch(t, app, `{"chat_id":"c1","message_id":2,"branch_name":"fork"}`)

	resp := postJSON(t, app, "/api/branches/tree", `{"chat_id":"c1"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeJSON(t, resp)

	nodes := result["nodes"].([]interface{})
	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node, got %v", result["nodes"])
	}
	node := nodes[0].(map[string]interface{})
	if node["label"] != "fork" {
		t.Errorf("Expected node label 'fork', got %v", node["label"])
	}

	edges := result["edges"].([]interface{})
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, got %v", result["edges"])
	}
	edge := edges[0].(map[string]interface{})
	if edge["from"] != "2" || edge["to"] != branch["id"] {
		t.Errorf("Expected edge 2 -> %v, got %v", branch["id"], edge)
	}
}

func TestBranchValidation(t *testing.T) {
	app := setupBranchApp(t)

	tests := []struct {
		name    string
		path    string
		body    string
		message string
	}{
		{"get without chat id", "/api/branches/get", `{}`, "Chat ID is required"},
		{"create without message id", "/api/branches/create", `{"chat_id":"c1"}`, "Chat ID and message ID are required"},
		{"create without chat id", "/api/branches/create", `{"message_id":1}`, "Chat ID and message ID are required"},
		{"switch without branch id", "/api/branches/switch", `{"chat_id":"c1"}`, "Chat ID and branch ID are required"},
		{"update without branch id", "/api/branches/update", `{"chat_id":"c1"}`, "Chat ID and branch ID are required"},
		{"delete without branch id", "/api/branches/delete", `{"chat_id":"c1"}`, "Chat ID and branch ID are required"},
		{"tree without chat id", "/api/branches/tree", `{}`, "Chat ID is required"},
		{"malformed body", "/api/branches/get", `{not json`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, tt.path, tt.body)
			expectError(t, resp, fiber.StatusBadRequest, tt.message)
		})
	}
}
