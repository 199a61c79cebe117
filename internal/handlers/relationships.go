package handlers

import (
	"log"

	"supertavern-core/internal/models"
	"supertavern-core/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RelationshipHandler handles HTTP requests for character relationship
// operations
type RelationshipHandler struct {
	store    *services.RelationshipStore
	analyzer *services.Analyzer
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(store *services.RelationshipStore, analyzer *services.Analyzer) *RelationshipHandler {
	return &RelationshipHandler{store: store, analyzer: analyzer}
}

// Get returns all relationships for a character
// POST /api/relationships/get
func (h *RelationshipHandler) Get(c *fiber.Ctx) error {
	var req models.GetRelationshipsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CharacterID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Character ID is required",
		})
	}

	doc, err := h.store.Get(req.CharacterID)
	if err != nil {
		return respondError(c, err, "Failed to get relationships")
	}

	return c.JSON(doc)
}

// Update creates or updates a relationship
// POST /api/relationships/update
func (h *RelationshipHandler) Update(c *fiber.Ctx) error {
	var req models.UpsertRelationshipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CharacterID == "" || req.FromCharacter == "" || req.ToCharacter == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Character IDs are required",
		})
	}

	relationship, err := h.store.Upsert(req.CharacterID, &req)
	if err != nil {
		return respondError(c, err, "Failed to update relationship")
	}

	log.Printf("✅ Relationship %s→%s saved for %s (interactions: %d)",
		relationship.From, relationship.To, req.CharacterID, relationship.InteractionCount)
	return c.JSON(fiber.Map{
		"success":      true,
		"relationship": relationship,
	})
}

// Delete removes a relationship
// POST /api/relationships/delete
func (h *RelationshipHandler) Delete(c *fiber.Ctx) error {
	var req models.DeleteRelationshipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CharacterID == "" || req.RelationshipID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Character ID and relationship ID are required",
		})
	}

	if err := h.store.Delete(req.CharacterID, req.RelationshipID); err != nil {
		return respondError(c, err, "Failed to delete relationship")
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// Graph returns the clustered relationship graph for visualization
// POST /api/relationships/graph
func (h *RelationshipHandler) Graph(c *fiber.Ctx) error {
	var req models.GetGraphRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CharacterID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Character ID is required",
		})
	}

	graph, err := h.store.Graph(req.CharacterID, req.Depth)
	if err != nil {
		return respondError(c, err, "Failed to get relationship graph")
	}

	return c.JSON(graph)
}

// Analyze runs the interaction analyzer over a conversation window
// POST /api/relationships/analyze
func (h *RelationshipHandler) Analyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CharacterID == "" || req.Messages == nil || req.Characters == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Character ID, messages, and characters list are required",
		})
	}

	analysis := h.analyzer.Analyze(req.Messages, req.Characters)

	return c.JSON(fiber.Map{
		"success":            true,
		"suggested_updates":  analysis.Suggestions,
		"sentiment_scores":   analysis.Sentiments,
		"interaction_counts": analysis.Interactions,
	})
}
