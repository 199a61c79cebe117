package handlers

import (
	"log"

	"supertavern-core/internal/models"
	"supertavern-core/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CompressionHandler handles HTTP requests for context compression
type CompressionHandler struct {
	compressor *services.Compressor
	summaries  *services.SummaryStore
}

// NewCompressionHandler creates a new compression handler
func NewCompressionHandler(compressor *services.Compressor, summaries *services.SummaryStore) *CompressionHandler {
	return &CompressionHandler{compressor: compressor, summaries: summaries}
}

// Compress reduces a message list to its key points plus the preserved tail.
// When store_summary and chat_id are set, the summary (with the original
// messages, for later expansion) is appended to the chat's summary log.
// POST /api/context/compress
func (h *CompressionHandler) Compress(c *fiber.Ctx) error {
	var req models.CompressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Messages == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Messages array is required",
		})
	}

	result, err := h.compressor.Compress(req.Messages, req.CompressionLevel, req.PreserveRecent)
	if err != nil {
		return respondError(c, err, "Failed to compress context")
	}

	if req.StoreSummary && req.ChatID != "" && result.Compressed {
		if _, err := h.summaries.Append(req.ChatID, result.Summary, result.TokensSavedEstimate, req.Messages); err != nil {
			return respondError(c, err, "Failed to store compression summary")
		}
		log.Printf("📦 Compression summary stored for chat %s (%d → %d messages)",
			req.ChatID, result.OriginalCount, result.NewCount)
	}

	return c.JSON(result)
}

// Expand returns the pre-compression messages of a stored summary
// POST /api/context/expand
func (h *CompressionHandler) Expand(c *fiber.Ctx) error {
	var req models.ExpandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ChatID == "" || req.SummaryID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID and summary ID are required",
		})
	}

	messages, err := h.summaries.Expand(req.ChatID, req.SummaryID)
	if err != nil {
		return respondError(c, err, "Failed to expand summary")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"messages": messages,
	})
}

// Stats returns aggregate compression statistics for a chat
// POST /api/context/stats
func (h *CompressionHandler) Stats(c *fiber.Ctx) error {
	var req models.StatsRequest
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

	stats, err := h.summaries.Stats(req.ChatID)
	if err != nil {
		return respondError(c, err, "Failed to get compression stats")
	}

	return c.JSON(stats)
}

// AutoCompress echoes the automatic compression configuration for a chat.
// Wiring it into chat loading is the caller's concern.
// POST /api/context/auto-compress
func (h *CompressionHandler) AutoCompress(c *fiber.Ctx) error {
	var req models.AutoCompressRequest
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

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = 100
	}
	level := req.CompressionLevel
	if level == "" {
		level = models.CompressionMedium
	}

	return c.JSON(fiber.Map{
		"success":               true,
		"auto_compress_enabled": true,
		"threshold":             threshold,
		"compression_level":     level,
	})
}
