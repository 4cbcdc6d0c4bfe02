package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/campusroutine/internal/models"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// CheckRequest asks whether anything newer than Since exists for Department.
type CheckRequest struct {
	Department string `json:"department"`
	Since      int64  `json:"since"`
}

// PublishRequest replaces a department schedule on the backend.
type PublishRequest struct {
	Schedule   *models.Schedule `json:"schedule"`
	UpdateType string           `json:"update_type,omitempty"`
}

// Encode converts v into a protobuf Struct using its JSON field names.
// Versions are millisecond timestamps and stay exact as Struct numbers.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return out, nil
}

// Decode fills v from a Struct produced by Encode.
func Decode(in *structpb.Struct, v any) error {
	if in == nil || len(in.GetFields()) == 0 {
		return errors.New("decode payload: empty")
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
