package services

import (
	"fmt"

	"supertavern-core/internal/apperrors"
	"supertavern-core/internal/models"
	"supertavern-core/internal/storage"
)

const relationshipComponent = "relationships"

// relationshipColors is the fixed per-type edge palette
var relationshipColors = map[string]string{
	models.RelationshipFriend:   "#4CAF50",
	models.RelationshipRomantic: "#E91E63",
	models.RelationshipFamily:   "#9C27B0",
	models.RelationshipRival:    "#FF9800",
	models.RelationshipEnemy:    "#F44336",
	models.RelationshipNeutral:  "#9E9E9E",
}

// relationshipClusters maps a relationship type to its display cluster
var relationshipClusters = map[string]string{
	models.RelationshipFriend:   "allies",
	models.RelationshipRomantic: "intimate",
	models.RelationshipFamily:   "family",
	models.RelationshipRival:    "conflict",
	models.RelationshipEnemy:    "conflict",
	models.RelationshipNeutral:  "neutral",
}

func relationshipColor(relType string) string {
	if color, ok := relationshipColors[relType]; ok {
		return color
	}
	return relationshipColors[models.RelationshipNeutral]
}

func relationshipCluster(relType string) string {
	if cluster, ok := relationshipClusters[relType]; ok {
		return cluster
	}
	return "neutral"
}

// RelationshipStore owns the per-character weighted relationship graph.
// The graph is a materialized view recomputed in full after every mutation;
// it is never hand-patched.
type RelationshipStore struct {
	docs *storage.Collection
}

// NewRelationshipStore creates a relationship store backed by the given
// document store
func NewRelationshipStore(store *storage.Store) (*RelationshipStore, error) {
	docs, err := store.Collection(relationshipComponent)
	if err != nil {
		return nil, err
	}
	return &RelationshipStore{docs: docs}, nil
}

// Get returns the relationship document for a character, or the empty
// default when none exists
func (s *RelationshipStore) Get(characterID string) (models.RelationshipDocument, error) {
	doc := models.NewRelationshipDocument()
	if _, err := s.docs.Load(characterID, &doc); err != nil {
		recordOpError(relationshipComponent, apperrors.KindOf(err).String())
		return doc, err
	}
	recordDocLoad(relationshipComponent)
	return doc, nil
}

// Upsert creates or updates the edge identified by the ordered
// (from, to) pair. Updates preserve id and created_at, increment
// interaction_count, and only overwrite the fields the request supplies;
// creation applies the documented defaults.
func (s *RelationshipStore) Upsert(characterID string, req *models.UpsertRelationshipRequest) (models.Relationship, error) {
	if req.FromCharacter == "" || req.ToCharacter == "" {
		return models.Relationship{}, apperrors.InvalidArgument("Character IDs are required")
	}

	unlock := s.docs.Lock(characterID)
	defer unlock()

	doc := models.NewRelationshipDocument()
	if _, err := s.docs.Load(characterID, &doc); err != nil {
		recordOpError(relationshipComponent, apperrors.KindOf(err).String())
		return models.Relationship{}, err
	}

	idx := -1
	for i, r := range doc.Relationships {
		if r.From == req.FromCharacter && r.To == req.ToCharacter {
			idx = i
			break
		}
	}

	now := isoNow()
	var rel models.Relationship
	if idx >= 0 {
		rel = doc.Relationships[idx]
		if req.RelationshipType != nil {
			rel.Type = *req.RelationshipType
		}
		if req.Strength != nil {
			rel.Strength = *req.Strength
		}
		if req.Notes != nil {
			rel.Notes = *req.Notes
		}
		if req.Tags != nil {
			rel.Tags = *req.Tags
		}
		rel.UpdatedAt = now
		rel.InteractionCount++
		doc.Relationships[idx] = rel
	} else {
		rel = models.Relationship{
			ID: newTimestampID(func(id string) bool {
				for _, r := range doc.Relationships {
					if r.ID == id {
						return true
					}
				}
				return false
			}),
			From:             req.FromCharacter,
			To:               req.ToCharacter,
			Type:             models.RelationshipNeutral,
			Strength:         50,
			Notes:            "",
			Tags:             []string{},
			CreatedAt:        now,
			UpdatedAt:        now,
			InteractionCount: 1,
		}
		if req.RelationshipType != nil {
			rel.Type = *req.RelationshipType
		}
		if req.Strength != nil {
			rel.Strength = *req.Strength
		}
		if req.Notes != nil {
			rel.Notes = *req.Notes
		}
		if req.Tags != nil {
			rel.Tags = *req.Tags
		}
		doc.Relationships = append(doc.Relationships, rel)
	}

	doc.Graph = buildGraph(doc.Relationships)

	if err := s.docs.Save(characterID, doc); err != nil {
		recordOpError(relationshipComponent, apperrors.KindOf(err).String())
		return models.Relationship{}, err
	}
	recordDocSave(relationshipComponent)
	return rel, nil
}

// Delete removes a relationship by id and recomputes the graph
func (s *RelationshipStore) Delete(characterID, relationshipID string) error {
	unlock := s.docs.Lock(characterID)
	defer unlock()

	doc := models.NewRelationshipDocument()
	found, err := s.docs.Load(characterID, &doc)
	if err != nil {
		recordOpError(relationshipComponent, apperrors.KindOf(err).String())
		return err
	}
	if !found {
		return apperrors.NotFound("No relationships found")
	}

	idx := -1
	for i, r := range doc.Relationships {
		if r.ID == relationshipID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperrors.NotFound("Relationship not found")
	}

	doc.Relationships = append(doc.Relationships[:idx], doc.Relationships[idx+1:]...)
	doc.Graph = buildGraph(doc.Relationships)

	if err := s.docs.Save(characterID, doc); err != nil {
		recordOpError(relationshipComponent, apperrors.KindOf(err).String())
		return err
	}
	recordDocSave(relationshipComponent)
	return nil
}

// Graph returns the clustered visualization view. The base graph is always
// edge-complete; depth only matters for multi-hop projections of large
// graphs and is currently accepted without limiting.
func (s *RelationshipStore) Graph(characterID string, depth int) (models.ClusteredGraph, error) {
	doc := models.NewRelationshipDocument()
	if _, err := s.docs.Load(characterID, &doc); err != nil {
		recordOpError(relationshipComponent, apperrors.KindOf(err).String())
		return models.ClusteredGraph{}, err
	}
	recordDocLoad(relationshipComponent)

	return buildClusteredGraph(doc.Relationships), nil
}

// buildGraph recomputes the derived graph from the relationship list. Each
// edge increments the connections counter of both its endpoints.
func buildGraph(relationships []models.Relationship) models.Graph {
	index := make(map[string]int)
	nodes := []models.GraphNode{}
	edges := make([]models.GraphEdge, 0, len(relationships))

	touch := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		index[name] = len(nodes)
		nodes = append(nodes, models.GraphNode{ID: name, Label: name})
		return len(nodes) - 1
	}

	for _, rel := range relationships {
		from := touch(rel.From)
		to := touch(rel.To)

		edges = append(edges, models.GraphEdge{
			From:     rel.From,
			To:       rel.To,
			Type:     rel.Type,
			Strength: rel.Strength,
			Label:    rel.Type,
			Color:    relationshipColor(rel.Type),
			Width:    edgeWidth(rel.Strength),
		})

		nodes[from].Connections++
		nodes[to].Connections++
	}

	return models.Graph{Nodes: nodes, Edges: edges}
}

// edgeWidth maps strength to a display width, never thinner than 1
func edgeWidth(strength int) float64 {
	width := float64(strength) / 20
	if width < 1 {
		return 1
	}
	return width
}

// buildClusteredGraph builds the grouped visualization view. A character's
// cluster comes from the type of the first edge that introduced it.
func buildClusteredGraph(relationships []models.Relationship) models.ClusteredGraph {
	index := make(map[string]int)
	nodes := []models.ClusterNode{}
	edges := make([]models.ClusterEdge, 0, len(relationships))

	touch := func(name, relType string, level int) {
		if _, ok := index[name]; ok {
			return
		}
		index[name] = len(nodes)
		nodes = append(nodes, models.ClusterNode{
			ID:    name,
			Label: name,
			Level: level,
			Group: relationshipCluster(relType),
		})
	}

	for _, rel := range relationships {
		touch(rel.From, rel.Type, 0)
		touch(rel.To, rel.Type, 1)

		edges = append(edges, models.ClusterEdge{
			From:  rel.From,
			To:    rel.To,
			Label: fmt.Sprintf("%s (%d)", rel.Type, rel.Strength),
			Color: relationshipColor(rel.Type),
			Value: rel.Strength,
		})
	}

	clusterIndex := make(map[string]int)
	clusters := []models.Cluster{}
	for _, node := range nodes {
		i, ok := clusterIndex[node.Group]
		if !ok {
			i = len(clusters)
			clusterIndex[node.Group] = i
			clusters = append(clusters, models.Cluster{ID: node.Group, Nodes: []string{}})
		}
		clusters[i].Nodes = append(clusters[i].Nodes, node.ID)
	}

	return models.ClusteredGraph{Nodes: nodes, Edges: edges, Clusters: clusters}
}
