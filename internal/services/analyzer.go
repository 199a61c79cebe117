package services

import (
	"fmt"
	"strings"
	"sync/atomic"

	"supertavern-core/internal/models"
)

// Thresholds of the suggestion heuristic. These values are part of the
// external contract; downstream tests assert them exactly.
const (
	suggestionMinInteractions = 5 // pairs need count > 5
	friendSentimentThreshold  = 0.5
	rivalSentimentThreshold   = -0.5
)

func defaultLexicon() *models.Lexicon {
	return &models.Lexicon{
		Positive: []string{"love", "like", "happy", "great", "wonderful", "friend", "thank"},
		Negative: []string{"hate", "dislike", "angry", "terrible", "awful", "enemy", "fight"},
	}
}

// Analyzer proposes relationship updates from dialogue. It is advisory only:
// it never persists anything and never fails on malformed individual
// messages — it skips them and keeps scanning.
type Analyzer struct {
	lexicon atomic.Pointer[models.Lexicon]
}

// NewAnalyzer creates an analyzer with the built-in sentiment lexicon
func NewAnalyzer() *Analyzer {
	a := &Analyzer{}
	a.lexicon.Store(defaultLexicon())
	return a
}

// SetLexicon swaps the sentiment lexicon. A nil or empty lexicon restores
// the built-in word lists. Safe to call while analyses are running.
func (a *Analyzer) SetLexicon(lexicon *models.Lexicon) {
	if lexicon == nil || (len(lexicon.Positive) == 0 && len(lexicon.Negative) == 0) {
		a.lexicon.Store(defaultLexicon())
		return
	}
	a.lexicon.Store(lexicon)
}

// Analyze scans adjacent message pairs for speaker changes, counts
// interactions per ordered speaker pair and scores each pair's sentiment
// over the concatenated text. Pairs with more than five interactions get a
// relationship suggestion. The characters list is accepted for interface
// parity; scoring keys off the message speakers.
func (a *Analyzer) Analyze(messages []models.Message, characters []string) models.InteractionAnalysis {
	recordAnalyzerRun()

	interactions := map[string]int{}
	sentiments := map[string]float64{}
	pairOrder := []string{}
	pairNames := map[string][2]string{}

	for i := 0; i+1 < len(messages); i++ {
		current := messages[i]
		next := messages[i+1]

		// Malformed entries are skipped, not fatal: this is an advisory
		// feature, not a source of truth
		if current.Speaker == "" || next.Speaker == "" {
			continue
		}
		if current.Speaker == next.Speaker {
			continue
		}

		// Both directions of an exchange feed one counter, keyed by the
		// orientation in which the pair was first seen
		pair := current.Speaker + "-" + next.Speaker
		if _, seen := interactions[pair]; !seen {
			reversed := next.Speaker + "-" + current.Speaker
			if _, seenReversed := interactions[reversed]; seenReversed {
				pair = reversed
			} else {
				pairOrder = append(pairOrder, pair)
				pairNames[pair] = [2]string{current.Speaker, next.Speaker}
			}
		}
		interactions[pair]++

		// Last pair wins: the score reflects the most recent exchange
		sentiments[pair] = a.scoreSentiment(current.Text + " " + next.Text)
	}

	suggestions := []models.RelationshipSuggestion{}
	for _, pair := range pairOrder {
		count := interactions[pair]
		if count <= suggestionMinInteractions {
			continue
		}

		sentiment := sentiments[pair]
		names := pairNames[pair]

		relType := models.RelationshipNeutral
		if sentiment > friendSentimentThreshold {
			relType = models.RelationshipFriend
		} else if sentiment < rivalSentimentThreshold {
			relType = models.RelationshipRival
		}

		strength := count * 10
		if strength > 100 {
			strength = 100
		}

		tone := "neutral"
		if sentiment > 0 {
			tone = "positive"
		} else if sentiment < 0 {
			tone = "negative"
		}

		suggestions = append(suggestions, models.RelationshipSuggestion{
			From:     names[0],
			To:       names[1],
			Type:     relType,
			Strength: strength,
			Reason:   fmt.Sprintf("%d interactions detected with %s sentiment", count, tone),
		})
	}

	return models.InteractionAnalysis{
		Interactions: interactions,
		Sentiments:   sentiments,
		Suggestions:  suggestions,
	}
}

// scoreSentiment scores text by lexicon keyword presence: +0.1 per positive
// word found, -0.1 per negative word, clamped to [-1, 1]. Presence, not
// occurrence count — a word repeated ten times still contributes once.
func (a *Analyzer) scoreSentiment(text string) float64 {
	lexicon := a.lexicon.Load()
	lower := strings.ToLower(text)

	score := 0.0
	for _, word := range lexicon.Positive {
		if strings.Contains(lower, word) {
			score += 0.1
		}
	}
	for _, word := range lexicon.Negative {
		if strings.Contains(lower, word) {
			score -= 0.1
		}
	}

	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
