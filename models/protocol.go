package models

import (
	"bytes"
	"encoding/json"
)

// Request field names
const (
	FieldAction   = "ACTION"
	FieldClientID = "UUID"
	FieldGetID    = "ID"
)

// UnknownClientID labels requests that carry no UUID
const UnknownClientID = "UNKNOWN_UUID"

// EventUpdate is the only push event type
const EventUpdate = "update"

// Request is a decoded client request. The client id is an untrusted audit label.
type Request map[string]any

// Action returns the requested action, or "" when absent or not a string
func (r Request) Action() string {
	action, _ := r[FieldAction].(string)
	return action
}

// ClientID returns the client-declared UUID
func (r Request) ClientID() string {
	switch id := r[FieldClientID].(type) {
	case string:
		if id != "" {
			return id
		}
	case json.Number:
		return id.String()
	}
	return UnknownClientID
}

// GetID returns the id requested by a get action
func (r Request) GetID() (string, bool) {
	switch id := r[FieldGetID].(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	}
	return "", false
}

// HasItemID reports whether the request body carries an item id key
func (r Request) HasItemID() bool {
	_, ok := r[ItemIDField]
	return ok
}

// Item returns the request body as an item, without the envelope fields
func (r Request) Item() Item {
	item := make(Item, len(r))
	for k, v := range r {
		if k == FieldAction || k == FieldClientID {
			continue
		}
		item[k] = v
	}
	return item
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusResponse acknowledges a subscription
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Notification is pushed to every subscriber after a successful set
type Notification struct {
	Event string `json:"EVENT"`
	Data  Item   `json:"DATA"`
}

// EncodeWire renders v the way it is sent on a connection: 4-space indent,
// unescaped HTML characters, exact decimals, trailing newline.
func EncodeWire(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
