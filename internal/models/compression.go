package models

// Compression levels and their retention ratios
const (
	CompressionLow    = "low"    // keep 70% of the prefix
	CompressionMedium = "medium" // keep 50% of the prefix
	CompressionHigh   = "high"   // keep 30% of the prefix
)

// KeyPoint is one selected message reduced to its essentials.
// Importance is the exact heuristic score the selection used.
type KeyPoint struct {
	Speaker    string `json:"speaker"`
	Content    string `json:"content"`
	Importance int    `json:"importance"`
}

// CompressionSummary describes one compression event
type CompressionSummary struct {
	OriginalCount    int        `json:"original_count"` // size of the compressed prefix
	CompressedCount  int        `json:"compressed_count"`
	CompressionRatio float64    `json:"compression_ratio"`
	Timestamp        string     `json:"timestamp"`
	KeyPoints        []KeyPoint `json:"key_points"`
}

// CompressionResult is the full engine output for one invocation
type CompressionResult struct {
	Compressed          bool                `json:"compressed"`
	Messages            []Message           `json:"messages"`
	Summary             *CompressionSummary `json:"summary"`
	OriginalCount       int                 `json:"original_count,omitempty"` // whole input size
	NewCount            int                 `json:"new_count,omitempty"`
	TokensSavedEstimate int                 `json:"tokens_saved_estimate,omitempty"`
}

// StoredSummary is one entry of the per-chat summary log. OriginalMessages
// holds the pre-compression history so the event can later be expanded.
type StoredSummary struct {
	ID string `json:"id"`
	CompressionSummary
	TokensSaved      int       `json:"tokens_saved"`
	OriginalMessages []Message `json:"original_messages,omitempty"`
}

// CompressionHistoryEntry is one row of the stats history
type CompressionHistoryEntry struct {
	Timestamp       string  `json:"timestamp"`
	OriginalCount   int     `json:"original_count"`
	CompressedCount int     `json:"compressed_count"`
	Ratio           float64 `json:"ratio"`
}

// CompressionStats aggregates a chat's summary log
type CompressionStats struct {
	TotalCompressions       int                       `json:"total_compressions"`
	TotalMessagesCompressed int                       `json:"total_messages_compressed"`
	TotalTokensSaved        int                       `json:"total_tokens_saved"`
	CompressionHistory      []CompressionHistoryEntry `json:"compression_history"`
}

// CompressRequest runs the engine over a message list. When StoreSummary and
// ChatID are both set the summary is appended to the chat's summary log.
type CompressRequest struct {
	ChatID           string    `json:"chat_id"`
	Messages         []Message `json:"messages"`
	CompressionLevel string    `json:"compression_level"`
	PreserveRecent   int       `json:"preserve_recent"`
	StoreSummary     bool      `json:"store_summary"`
}

// ExpandRequest retrieves the pre-compression messages of a stored summary
type ExpandRequest struct {
	ChatID    string `json:"chat_id"`
	SummaryID string `json:"summary_id"`
}

// StatsRequest fetches aggregate compression statistics for a chat
type StatsRequest struct {
	ChatID string `json:"chat_id"`
}

// AutoCompressRequest configures automatic compression for a chat
type AutoCompressRequest struct {
	ChatID           string `json:"chat_id"`
	Threshold        int    `json:"threshold"`
	CompressionLevel string `json:"compression_level"`
}
