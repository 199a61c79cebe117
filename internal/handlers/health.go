package handlers

import (
	"os"
	"time"

	"supertavern-core/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store *storage.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *storage.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Handle responds with server health status, including whether the data
// directory is still writable
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	tmp, err := os.CreateTemp(h.store.Dir(), ".health-*")
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "degraded",
			"error":     "data directory is not writable",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
	tmp.Close()
	os.Remove(tmp.Name())

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"data_dir":  h.store.Dir(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
