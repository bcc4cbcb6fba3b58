package sqlite

import (
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// timeFormat is used for every stored timestamp.
const timeFormat = time.RFC3339Nano

// parseTime parses a stored timestamp, naming the field on failure.
func parseTime(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(timeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// encodeVector serializes an embedding in the pgvector binary format.
func encodeVector(v []float32) ([]byte, error) {
	return pgvector.NewVector(v).EncodeBinary(nil)
}

// decodeVector reverses encodeVector.
func decodeVector(b []byte) ([]float32, error) {
	var v pgvector.Vector
	if err := v.DecodeBinary(b); err != nil {
		return nil, fmt.Errorf("failed to decode embedding: %w", err)
	}
	return v.Slice(), nil
}
