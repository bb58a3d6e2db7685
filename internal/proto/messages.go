package proto

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"google.golang.org/protobuf/types/known/structpb"
)

// Credentials is the Register and Login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the Register and Login reply.
type Session struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type PingReply struct {
	Status string `json:"status"`
}

// SelectRequest and the Count request carry a store.Query. The server
// replaces any user_id predicate with the caller's own.
type SelectRequest struct {
	Query store.Query `json:"query"`
}

type SelectReply struct {
	Entries []models.Entry `json:"entries"`
}

type CountReply struct {
	Count int `json:"count"`
}

// InsertRequest creates an entry for the caller.
type InsertRequest struct {
	Input models.EntryInput `json:"input"`
}

type UpdateRequest struct {
	ID    string            `json:"id"`
	Patch models.EntryPatch `json:"patch"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}

// EntryReply is returned by Insert, Update and Delete.
type EntryReply struct {
	Entry models.Entry `json:"entry"`
}

// Watch takes an empty request and streams models.ChangeEvent values.

// Encode converts v to a Struct through its JSON form. v must encode as a
// JSON object.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return structpb.NewStruct(payload)
}

// Decode fills v from s. A nil Struct leaves v untouched.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}
