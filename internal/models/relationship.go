package models

// Relationship type values
const (
	RelationshipFriend   = "friend"
	RelationshipRival    = "rival"
	RelationshipRomantic = "romantic"
	RelationshipFamily   = "family"
	RelationshipNeutral  = "neutral"
	RelationshipEnemy    = "enemy"
)

// Relationship is a directed, typed, weighted edge between two named characters.
// The ordered (From, To) pair is its identity within a document: (A,B) and (B,A)
// are distinct edges representing potentially asymmetric perception.
type Relationship struct {
	ID               string   `json:"id"`
	From             string   `json:"from"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Strength         int      `json:"strength"` // 0-100
	Notes            string   `json:"notes"`
	Tags             []string `json:"tags"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
	InteractionCount int      `json:"interaction_count"`
}

// GraphNode is a character in the derived relationship graph
type GraphNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Connections int    `json:"connections"`
}

// GraphEdge is a styled relationship edge in the derived graph
type GraphEdge struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Type     string  `json:"type"`
	Strength int     `json:"strength"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
}

// Graph is the node/edge projection recomputed wholesale from the
// relationship list after every mutation
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// RelationshipDocument is the per-character persisted unit. Graph is a
// materialized view over Relationships.
type RelationshipDocument struct {
	Relationships []Relationship `json:"relationships"`
	Graph         Graph          `json:"graph"`
}

// NewRelationshipDocument returns the empty default document
func NewRelationshipDocument() RelationshipDocument {
	return RelationshipDocument{
		Relationships: []Relationship{},
		Graph: Graph{
			Nodes: []GraphNode{},
			Edges: []GraphEdge{},
		},
	}
}

// ClusterNode is a character in the clustered graph view
type ClusterNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Level int    `json:"level"`
	Group string `json:"group"`
}

// ClusterEdge is a relationship edge in the clustered graph view
type ClusterEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
	Color string `json:"color"`
	Value int    `json:"value"`
}

// Cluster groups the characters sharing a relationship cluster
type Cluster struct {
	ID    string   `json:"id"`
	Nodes []string `json:"nodes"`
}

// ClusteredGraph is the visualization view grouping characters by
// relationship type
type ClusteredGraph struct {
	Nodes    []ClusterNode `json:"nodes"`
	Edges    []ClusterEdge `json:"edges"`
	Clusters []Cluster     `json:"clusters"`
}

// RelationshipSuggestion is one proposed graph update from the analyzer
type RelationshipSuggestion struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Type     string `json:"type"`
	Strength int    `json:"strength"`
	Reason   string `json:"reason"`
}

// InteractionAnalysis is the full analyzer output. Maps are keyed by the
// ordered speaker pair as "from-to".
type InteractionAnalysis struct {
	Interactions map[string]int           `json:"interaction_counts"`
	Sentiments   map[string]float64       `json:"sentiment_scores"`
	Suggestions  []RelationshipSuggestion `json:"suggested_updates"`
}

// Lexicon is the fixed keyword list driving the analyzer sentiment heuristic
type Lexicon struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

// GetRelationshipsRequest fetches the relationship document for a character
type GetRelationshipsRequest struct {
	CharacterID string `json:"character_id"`
}

// UpsertRelationshipRequest creates or updates the edge identified by the
// ordered (from_character, to_character) pair. Nil optional fields default
// on creation and are left untouched on update.
type UpsertRelationshipRequest struct {
	CharacterID      string    `json:"character_id"`
	FromCharacter    string    `json:"from_character"`
	ToCharacter      string    `json:"to_character"`
	RelationshipType *string   `json:"relationship_type"`
	Strength         *int      `json:"strength"`
	Notes            *string   `json:"notes"`
	Tags             *[]string `json:"tags"`
}

// DeleteRelationshipRequest removes a relationship by id
type DeleteRelationshipRequest struct {
	CharacterID    string `json:"character_id"`
	RelationshipID string `json:"relationship_id"`
}

// GetGraphRequest fetches the clustered graph view
type GetGraphRequest struct {
	CharacterID string `json:"character_id"`
	Depth       int    `json:"depth"`
}

// AnalyzeRequest runs the interaction analyzer over a message window
type AnalyzeRequest struct {
	CharacterID string    `json:"character_id"`
	Messages    []Message `json:"messages"`
	Characters  []string  `json:"characters"`
}
