package mapping

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// getString reads a required string column from rec, failing with
// ErrDeserialization if it is absent or of the wrong type.
func getString(rec *neo4j.Record, key string) (string, error) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing column %s", ErrDeserialization, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: column %s is not a string", ErrDeserialization, key)
	}
	return s, nil
}

// getOptionalString reads an optional string column, returning "" when the
// column is absent or null.
func getOptionalString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// getOptionalVersion reads a nullable version column, returning "", false for
// the current (unretired) state.
func getOptionalVersion(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// getFloat64Slice reads an optional list-of-float column (an embedding),
// returning nil when absent.
func getFloat64Slice(rec *neo4j.Record, key string) ([]float64, error) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: column %s is not a list", ErrDeserialization, key)
	}
	out := make([]float64, len(raw))
	for i, item := range raw {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: column %s contains a non-numeric element", ErrDeserialization, key)
		}
		out[i] = f
	}
	return out, nil
}

// float64SliceToParam converts a Go []float64 embedding into the []any shape
// the Neo4j driver expects for a list parameter, returning nil for an empty
// or absent embedding so the attribute node gets no embedding property at all.
func float64SliceToParam(fs []float64) any {
	if len(fs) == 0 {
		return nil
	}
	out := make([]any, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

// attributeNodeFromRecord decodes the id/value/value_type/format/unit/language/
// embedding columns of rec into an AttributeNode.
func attributeNodeFromRecord(rec *neo4j.Record) (AttributeNode, error) {
	id, err := getString(rec, "id")
	if err != nil {
		return AttributeNode{}, err
	}
	value, err := getString(rec, "value")
	if err != nil {
		return AttributeNode{}, err
	}
	valueType, err := getString(rec, "value_type")
	if err != nil {
		return AttributeNode{}, err
	}
	embedding, err := getFloat64Slice(rec, "embedding")
	if err != nil {
		return AttributeNode{}, err
	}

	return AttributeNode{
		ID: id,
		Value: Value{
			Value:     value,
			ValueType: ValueType(valueType),
			Options: Options{
				Format:   getOptionalString(rec, "format"),
				Unit:     getOptionalString(rec, "unit"),
				Language: getOptionalString(rec, "language"),
			},
		},
		Embedding: embedding,
	}, nil
}
