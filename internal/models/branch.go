package models

// Branch is one alternate continuation path forked from a specific message
type Branch struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ParentMessageID string `json:"parent_message_id"`
	CreatedAt       string `json:"created_at"`
	MessageCount    int    `json:"message_count"`
	LastModified    string `json:"last_modified"`
}

// BranchDocument is the per-conversation persisted unit. Tree maps a message id
// to the branch ids forked from it and is a materialized index over Branches.
type BranchDocument struct {
	Branches []Branch            `json:"branches"`
	Tree     map[string][]string `json:"tree"`
}

// NewBranchDocument returns the empty default document
func NewBranchDocument() BranchDocument {
	return BranchDocument{
		Branches: []Branch{},
		Tree:     map[string][]string{},
	}
}

// BranchTreeNode is one branch in the tree visualization projection
type BranchTreeNode struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Description  string `json:"description"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at"`
}

// BranchTreeEdge links a message to a branch forked from it
type BranchTreeEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BranchTree is the visualization projection of a branch document
type BranchTree struct {
	Nodes []BranchTreeNode    `json:"nodes"`
	Edges []BranchTreeEdge    `json:"edges"`
	Tree  map[string][]string `json:"tree"`
}

// GetBranchesRequest fetches the branch document for a chat
type GetBranchesRequest struct {
	ChatID string `json:"chat_id"`
}

// CreateBranchRequest creates a branch forked from a message
type CreateBranchRequest struct {
	ChatID            string    `json:"chat_id"`
	MessageID         MessageID `json:"message_id"`
	BranchName        string    `json:"branch_name"`
	BranchDescription string    `json:"branch_description"`
}

// SwitchBranchRequest resolves a branch for playback re-rooting
type SwitchBranchRequest struct {
	ChatID   string `json:"chat_id"`
	BranchID string `json:"branch_id"`
}

// UpdateBranchRequest partially updates branch metadata.
// Nil fields are left untouched.
type UpdateBranchRequest struct {
	ChatID      string  `json:"chat_id"`
	BranchID    string  `json:"branch_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// DeleteBranchRequest removes a branch and repairs the tree index
type DeleteBranchRequest struct {
	ChatID   string `json:"chat_id"`
	BranchID string `json:"branch_id"`
}
