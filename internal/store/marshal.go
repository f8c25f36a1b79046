package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/semmeta/internal/ir"
)

// marshalRecord converts a record to canonical JSON TEXT for storage.
// A nil record is stored as NULL.
func marshalRecord(md *ir.Metadata) (sql.NullString, error) {
	if md == nil {
		return sql.NullString{}, nil
	}
	data, err := ir.MarshalCanonical(*md)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal record: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalRecord parses a stored record. NULL yields nil.
func unmarshalRecord(data sql.NullString) (*ir.Metadata, error) {
	if !data.Valid {
		return nil, nil
	}
	var md ir.Metadata
	if err := json.Unmarshal([]byte(data.String), &md); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if md.Configuration == nil {
		md.Configuration = map[string]string{}
	}
	return &md, nil
}
