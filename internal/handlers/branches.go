package handlers

import (
	"log"

	"supertavern-core/internal/models"
	"supertavern-core/internal/services"

	"github.com/gofiber/fiber/v2"
)

// BranchHandler handles HTTP requests for conversation branch operations
type BranchHandler struct {
	store *services.BranchStore
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(store *services.BranchStore) *BranchHandler {
	return &BranchHandler{store: store}
}

// Get returns all branches for a chat
// POST /api/branches/get
func (h *BranchHandler) Get(c *fiber.Ctx) error {
	var req models.GetBranchesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ChatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID is required",
		})
	}

	doc, err := h.store.List(req.ChatID)
	if err != nil {
		return respondError(c, err, "Failed to get branches")
	}

	return c.JSON(doc)
}

// Create creates a new branch forked from a message
// POST /api/branches/create
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var req models.CreateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ChatID == "" || !req.MessageID.IsSet() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID and message ID are required",
		})
	}

	branch, err := h.store.Create(req.ChatID, req.MessageID.String(), req.BranchName, req.BranchDescription)
	if err != nil {
		return respondError(c, err, "Failed to create branch")
	}

	log.Printf("✅ Branch %s created for chat %s (parent message %s)", branch.ID, req.ChatID, branch.ParentMessageID)
	return c.JSON(fiber.Map{
		"success": true,
		"branch":  branch,
	})
}

// Switch resolves a branch for playback re-rooting
// POST /api/branches/switch
func (h *BranchHandler) Switch(c *fiber.Ctx) error {
	var req models.SwitchBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ChatID == "" || req.BranchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID and branch ID are required",
		})
	}

	branch, err := h.store.Switch(req.ChatID, req.BranchID)
	if err != nil {
		return respondError(c, err, "Failed to switch branch")
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"branch":            branch,
		"parent_message_id": branch.ParentMessageID,
	})
}

// Update updates branch metadata
// POST /api/branches/update
func (h *BranchHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ChatID == "" || req.BranchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID and branch ID are required",
		})
	}

	branch, err := h.store.Update(req.ChatID, req.BranchID, req.Name, req.Description)
	if err != nil {
		return respondError(c, err, "Failed to update branch")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"branch":  branch,
	})
}

// Delete removes a branch
// POST /api/branches/delete
func (h *BranchHandler) Delete(c *fiber.Ctx) error {
	var req models.DeleteBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ChatID == "" || req.BranchID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID and branch ID are required",
		})
	}

	if err := h.store.Delete(req.ChatID, req.BranchID); err != nil {
		return respondError(c, err, "Failed to delete branch")
	}

	log.Printf("🗑️  Branch %s deleted from chat %s", req.BranchID, req.ChatID)
	return c.JSON(fiber.Map{
		"success": true,
	})
}

// Tree returns the branch tree visualization data
// POST /api/branches/tree
func (h *BranchHandler) Tree(c *fiber.Ctx) error {
	var req models.GetBranchesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ChatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID is required",
		})
	}

	tree, err := h.store.Tree(req.ChatID)
	if err != nil {
		return respondError(c, err, "Failed to get branch tree")
	}

	return c.JSON(tree)
}
