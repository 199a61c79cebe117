package services

import (
	"fmt"
	"sort"

	"supertavern-core/internal/apperrors"
	"supertavern-core/internal/models"
	"supertavern-core/internal/storage"
)

const branchComponent = "branches"

// BranchStore owns the per-conversation tree of alternate branches.
// Documents are created lazily on first write and read as an empty default
// when absent.
type BranchStore struct {
	docs *storage.Collection
}

// NewBranchStore creates a branch store backed by the given document store
func NewBranchStore(store *storage.Store) (*BranchStore, error) {
	docs, err := store.Collection(branchComponent)
	if err != nil {
		return nil, err
	}
	return &BranchStore{docs: docs}, nil
}

// List returns the branch document for a chat, or the empty default when
// none exists. Never fails on missing data.
func (s *BranchStore) List(chatID string) (models.BranchDocument, error) {
	doc := models.NewBranchDocument()
	if _, err := s.docs.Load(chatID, &doc); err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return doc, err
	}
	recordDocLoad(branchComponent)
	return doc, nil
}

// Create forks a new branch from a message and persists the document.
// The tree index is rebuilt wholesale from the branch list.
func (s *BranchStore) Create(chatID, parentMessageID, name, description string) (models.Branch, error) {
	unlock := s.docs.Lock(chatID)
	defer unlock()

	doc := models.NewBranchDocument()
	if _, err := s.docs.Load(chatID, &doc); err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return models.Branch{}, err
	}

	if name == "" {
		name = fmt.Sprintf("Branch %d", len(doc.Branches)+1)
	}

	now := isoNow()
	branch := models.Branch{
		ID: newTimestampID(func(id string) bool {
			for _, b := range doc.Branches {
				if b.ID == id {
					return true
				}
			}
			return false
		}),
		Name:            name,
		Description:     description,
		ParentMessageID: parentMessageID,
		CreatedAt:       now,
		MessageCount:    0,
		LastModified:    now,
	}

	doc.Branches = append(doc.Branches, branch)
	doc.Tree = rebuildTree(doc.Branches, doc.Tree)

	if err := s.docs.Save(chatID, doc); err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return models.Branch{}, err
	}
	recordDocSave(branchComponent)
	return branch, nil
}

// Switch resolves a branch for playback re-rooting. Pure read: message counts
// and timestamps are untouched; counting played messages is the caller's job.
func (s *BranchStore) Switch(chatID, branchID string) (models.Branch, error) {
	doc := models.NewBranchDocument()
	found, err := s.docs.Load(chatID, &doc)
	if err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return models.Branch{}, err
	}
	if !found {
		return models.Branch{}, apperrors.NotFound("No branches found")
	}

	for _, b := range doc.Branches {
		if b.ID == branchID {
			return b, nil
		}
	}
	return models.Branch{}, apperrors.NotFound("Branch not found")
}

// Update partially updates branch metadata and refreshes last_modified
func (s *BranchStore) Update(chatID, branchID string, name, description *string) (models.Branch, error) {
	unlock := s.docs.Lock(chatID)
	defer unlock()

	doc := models.NewBranchDocument()
	found, err := s.docs.Load(chatID, &doc)
	if err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return models.Branch{}, err
	}
	if !found {
		return models.Branch{}, apperrors.NotFound("No branches found")
	}

	idx := -1
	for i, b := range doc.Branches {
		if b.ID == branchID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return models.Branch{}, apperrors.NotFound("Branch not found")
	}

	if name != nil {
		doc.Branches[idx].Name = *name
	}
	if description != nil {
		doc.Branches[idx].Description = *description
	}
	doc.Branches[idx].LastModified = isoNow()

	if err := s.docs.Save(chatID, doc); err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return models.Branch{}, err
	}
	recordDocSave(branchComponent)
	return doc.Branches[idx], nil
}

// Delete removes a branch from the branch list and from every tree entry
// referencing it
func (s *BranchStore) Delete(chatID, branchID string) error {
	unlock := s.docs.Lock(chatID)
	defer unlock()

	doc := models.NewBranchDocument()
	found, err := s.docs.Load(chatID, &doc)
	if err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return err
	}
	if !found {
		return apperrors.NotFound("No branches found")
	}

	idx := -1
	for i, b := range doc.Branches {
		if b.ID == branchID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperrors.NotFound("Branch not found")
	}

	doc.Branches = append(doc.Branches[:idx], doc.Branches[idx+1:]...)
	doc.Tree = rebuildTree(doc.Branches, doc.Tree)

	if err := s.docs.Save(chatID, doc); err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return err
	}
	recordDocSave(branchComponent)
	return nil
}

// Tree returns the read-only visualization projection: each branch becomes a
// node, each tree membership a message→branch edge
func (s *BranchStore) Tree(chatID string) (models.BranchTree, error) {
	doc := models.NewBranchDocument()
	if _, err := s.docs.Load(chatID, &doc); err != nil {
		recordOpError(branchComponent, apperrors.KindOf(err).String())
		return models.BranchTree{}, err
	}
	recordDocLoad(branchComponent)

	tree := models.BranchTree{
		Nodes: make([]models.BranchTreeNode, 0, len(doc.Branches)),
		Edges: []models.BranchTreeEdge{},
		Tree:  doc.Tree,
	}
	for _, b := range doc.Branches {
		tree.Nodes = append(tree.Nodes, models.BranchTreeNode{
			ID:           b.ID,
			Label:        b.Name,
			Description:  b.Description,
			MessageCount: b.MessageCount,
			CreatedAt:    b.CreatedAt,
		})
	}

	messageIDs := make([]string, 0, len(doc.Tree))
	for messageID := range doc.Tree {
		messageIDs = append(messageIDs, messageID)
	}
	sort.Strings(messageIDs)
	for _, messageID := range messageIDs {
		for _, branchID := range doc.Tree[messageID] {
			tree.Edges = append(tree.Edges, models.BranchTreeEdge{
				From: messageID,
				To:   branchID,
			})
		}
	}

	return tree, nil
}

// rebuildTree recomputes the message→branches index from the branch list.
// Keys already present survive with empty entries so callers can tell a
// message that lost its branches from one that never had any.
func rebuildTree(branches []models.Branch, previous map[string][]string) map[string][]string {
	tree := make(map[string][]string, len(previous))
	for messageID := range previous {
		tree[messageID] = []string{}
	}
	for _, b := range branches {
		tree[b.ParentMessageID] = append(tree[b.ParentMessageID], b.ID)
	}
	return tree
}
