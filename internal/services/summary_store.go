package services

import (
	"supertavern-core/internal/apperrors"
	"supertavern-core/internal/models"
	"supertavern-core/internal/storage"

	"github.com/google/uuid"
)

const summaryComponent = "summaries"

// SummaryStore keeps the per-chat log of compression events. The engine
// itself is lossy and stateless; storing the pre-compression messages here
// is what makes later expansion possible.
type SummaryStore struct {
	docs *storage.Collection
}

// NewSummaryStore creates a summary store backed by the given document store
func NewSummaryStore(store *storage.Store) (*SummaryStore, error) {
	docs, err := store.Collection(summaryComponent)
	if err != nil {
		return nil, err
	}
	return &SummaryStore{docs: docs}, nil
}

// Append adds a compression event to a chat's log and returns the stored
// entry with its assigned id
func (s *SummaryStore) Append(chatID string, summary *models.CompressionSummary, tokensSaved int, originalMessages []models.Message) (models.StoredSummary, error) {
	if summary == nil {
		return models.StoredSummary{}, apperrors.InvalidArgument("Summary is required")
	}

	unlock := s.docs.Lock(chatID)
	defer unlock()

	log := []models.StoredSummary{}
	if _, err := s.docs.Load(chatID, &log); err != nil {
		recordOpError(summaryComponent, apperrors.KindOf(err).String())
		return models.StoredSummary{}, err
	}

	entry := models.StoredSummary{
		ID:                 uuid.New().String(),
		CompressionSummary: *summary,
		TokensSaved:        tokensSaved,
		OriginalMessages:   originalMessages,
	}
	log = append(log, entry)

	if err := s.docs.Save(chatID, log); err != nil {
		recordOpError(summaryComponent, apperrors.KindOf(err).String())
		return models.StoredSummary{}, err
	}
	recordDocSave(summaryComponent)
	return entry, nil
}

// Expand returns the pre-compression messages stored with a summary
func (s *SummaryStore) Expand(chatID, summaryID string) ([]models.Message, error) {
	log := []models.StoredSummary{}
	found, err := s.docs.Load(chatID, &log)
	if err != nil {
		recordOpError(summaryComponent, apperrors.KindOf(err).String())
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("No summaries found")
	}

	for _, entry := range log {
		if entry.ID == summaryID {
			if len(entry.OriginalMessages) == 0 {
				break
			}
			return entry.OriginalMessages, nil
		}
	}
	return nil, apperrors.NotFound("Summary not found or no original messages stored")
}

// Stats aggregates a chat's compression history. An absent log yields
// zeroed totals and an empty history, never an error.
func (s *SummaryStore) Stats(chatID string) (models.CompressionStats, error) {
	log := []models.StoredSummary{}
	if _, err := s.docs.Load(chatID, &log); err != nil {
		recordOpError(summaryComponent, apperrors.KindOf(err).String())
		return models.CompressionStats{}, err
	}
	recordDocLoad(summaryComponent)

	stats := models.CompressionStats{
		CompressionHistory: make([]models.CompressionHistoryEntry, 0, len(log)),
	}
	for _, entry := range log {
		stats.TotalCompressions++
		stats.TotalMessagesCompressed += entry.OriginalCount
		stats.TotalTokensSaved += entry.TokensSaved
		stats.CompressionHistory = append(stats.CompressionHistory, models.CompressionHistoryEntry{
			Timestamp:       entry.Timestamp,
			OriginalCount:   entry.OriginalCount,
			CompressedCount: entry.CompressedCount,
			Ratio:           entry.CompressionRatio,
		})
	}
	return stats, nil
}
