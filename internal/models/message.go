package models

import (
	"bytes"
	"encoding/json"
)

// Message is one entry of an ordered chat history
type Message struct {
	Speaker  string `json:"speaker"`
	Text     string `json:"text"`
	IsSystem bool   `json:"is_system,omitempty"`
	SendDate string `json:"send_date,omitempty"`

	// Set on messages selected by the compression engine
	ImportanceScore int `json:"importance_score,omitempty"`

	Extra map[string]interface{} `json:"extra,omitempty"`
}

// MessageID accepts either a JSON string or a JSON number. Branch tree keys
// are the string form, so "5" and 5 address the same message.
type MessageID struct {
	value string
	set   bool
}

// NewMessageID builds a set MessageID from its string form
func NewMessageID(value string) MessageID {
	return MessageID{value: value, set: true}
}

// String returns the canonical string form of the id
func (m MessageID) String() string {
	return m.value
}

// IsSet reports whether the field was present in the request body
func (m MessageID) IsSet() bool {
	return m.set
}

func (m *MessageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		// Present but null counts as supplied, mirroring the original's
		// undefined-only check
		m.set = true
		m.value = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		m.set = true
		m.value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	m.set = true
	m.value = n.String()
	return nil
}

func (m MessageID) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.value)
}
