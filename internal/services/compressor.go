package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"supertavern-core/internal/apperrors"
	"supertavern-core/internal/models"
)

// Importance score weights. Fixed and deterministic: downstream tests assert
// exact scores, not just relative ranking.
const (
	questionBonus    = 100
	exclamationBonus = 50
	characterBonus   = 30 // speaker is not the user

	defaultPreserveRecent = 10
	tokensPerMessage      = 50
)

// compressionRatios maps a level to its retention ratio
var compressionRatios = map[string]float64{
	models.CompressionLow:    0.7,
	models.CompressionMedium: 0.5,
	models.CompressionHigh:   0.3,
}

// Compressor reduces an ordered message list to a bounded, importance-ranked
// subset plus a preserved tail. It is pure: no persistence, no background
// work, identical inputs produce identical outputs.
type Compressor struct {
	userSpeaker string
	now         func() string
}

// NewCompressor creates a compressor. userSpeaker is the name whose messages
// skip the non-user importance bonus; empty means "You".
func NewCompressor(userSpeaker string) *Compressor {
	if userSpeaker == "" {
		userSpeaker = "You"
	}
	return &Compressor{userSpeaker: userSpeaker, now: isoNow}
}

// Compress splits off the preserved tail, ranks the remaining prefix by
// importance and keeps the top share for the requested level. The selection
// is re-sorted into original order, so key points never appear out of
// sequence. Output shape: [synthetic summary message] + selection + tail.
func (c *Compressor) Compress(messages []models.Message, level string, preserveRecent int) (*models.CompressionResult, error) {
	if messages == nil {
		return nil, apperrors.InvalidArgument("Messages array is required")
	}

	preserve := preserveRecent
	if preserve <= 0 {
		preserve = defaultPreserveRecent
	}

	// Short histories are a valid no-op, not an error
	if len(messages) <= preserve {
		return &models.CompressionResult{
			Compressed: false,
			Messages:   messages,
		}, nil
	}

	prefix := messages[:len(messages)-preserve]
	tail := messages[len(messages)-preserve:]

	ratio, ok := compressionRatios[level]
	if !ok {
		ratio = compressionRatios[models.CompressionMedium]
	}
	target := int(math.Floor(float64(len(prefix)) * ratio))

	selected := c.selectKeyMessages(prefix, target)

	keyPoints := make([]models.KeyPoint, 0, len(selected))
	for _, msg := range selected {
		keyPoints = append(keyPoints, models.KeyPoint{
			Speaker:    msg.Speaker,
			Content:    msg.Text,
			Importance: msg.ImportanceScore,
		})
	}

	summary := &models.CompressionSummary{
		OriginalCount:    len(prefix),
		CompressedCount:  len(selected),
		CompressionRatio: ratio,
		Timestamp:        c.now(),
		KeyPoints:        keyPoints,
	}

	compressed := make([]models.Message, 0, 1+len(selected)+len(tail))
	compressed = append(compressed, models.Message{
		Speaker:  "System",
		Text:     fmt.Sprintf("[Context Summary: %d messages compressed. Key events preserved below.]", len(prefix)),
		IsSystem: true,
		SendDate: summary.Timestamp,
		Extra:    map[string]interface{}{"summary": summary},
	})
	compressed = append(compressed, selected...)
	compressed = append(compressed, tail...)

	recordCompression(ratio)

	return &models.CompressionResult{
		Compressed:          true,
		Messages:            compressed,
		Summary:             summary,
		OriginalCount:       len(messages),
		NewCount:            len(compressed),
		TokensSavedEstimate: (len(messages) - len(compressed)) * tokensPerMessage,
	}, nil
}

// selectKeyMessages scores every prefix message, keeps the top target by
// score (ties broken by original order) and returns the winners in original
// chronological order with their scores attached
func (c *Compressor) selectKeyMessages(prefix []models.Message, target int) []models.Message {
	type scored struct {
		index int
		score int
	}

	ranked := make([]scored, len(prefix))
	for i, msg := range prefix {
		ranked[i] = scored{index: i, score: c.scoreImportance(msg)}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if target > len(ranked) {
		target = len(ranked)
	}
	winners := ranked[:target]
	sort.Slice(winners, func(a, b int) bool {
		return winners[a].index < winners[b].index
	})

	selected := make([]models.Message, 0, len(winners))
	for _, w := range winners {
		msg := prefix[w.index]
		msg.ImportanceScore = w.score
		selected = append(selected, msg)
	}
	return selected
}

// scoreImportance computes the fixed importance heuristic for one message
func (c *Compressor) scoreImportance(msg models.Message) int {
	score := len(msg.Text)
	if strings.Contains(msg.Text, "?") {
		score += questionBonus
	}
	if strings.Contains(msg.Text, "!") {
		score += exclamationBonus
	}
	if msg.Speaker != c.userSpeaker {
		score += characterBonus
	}
	return score
}
