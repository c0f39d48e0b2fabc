package mapping

import (
	"context"
	"time"

	"github.com/evalgo-org/kgraph/graphdb"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Triple is the atomic (entity, attribute, value) fact, scoped to a space and
// a version visibility interval.
type Triple struct {
	EntityID    string
	AttributeID string
	Value       Value
	SpaceID     string
	MinVersion  string
	MaxVersion  string // "" means current (unretired)
}

// InsertTripleParams names the inputs to a single-attribute insert.
type InsertTripleParams struct {
	EntityID     string
	AttributeID  string
	Value        Value
	SpaceID      string
	SpaceVersion string
	Now          time.Time
	Block        string
}

// InsertTriple writes a single attribute: the one-attribute case of
// InsertAttributes.
func InsertTriple(ctx context.Context, driver *graphdb.Driver, p InsertTripleParams) error {
	return InsertAttributes(ctx, driver, InsertAttributesParams{
		EntityID:     p.EntityID,
		SpaceID:      p.SpaceID,
		SpaceVersion: p.SpaceVersion,
		Attributes:   NewAttributes().Attribute(AttributeNode{ID: p.AttributeID, Value: p.Value}),
		Now:          p.Now,
		Block:        p.Block,
	})
}

// DeleteTripleParams names the inputs to a triple retirement.
type DeleteTripleParams struct {
	EntityID    string
	AttributeID string
	SpaceID     string
	Version     string // the retiring version, written as the edge's max_version
}

// DeleteTriple sets max_version = Version on the current ATTRIBUTE edge for
// (entity, attribute, space), leaving every earlier edge untouched so
// point-in-time reads at earlier versions are unaffected.
func DeleteTriple(ctx context.Context, driver *graphdb.Driver, p DeleteTripleParams) error {
	_, err := driver.WriteTx(ctx, compileDeleteTriple(p))
	return storageErr("mapping: delete triple", err)
}

func compileDeleteTriple(p DeleteTripleParams) graphdb.Statement {
	const cypher = `MATCH (:Entity {id: $entity_id}) -[r:ATTRIBUTE {space_id: $space_id}]-> (:Attribute {id: $attribute_id})
WHERE r.max_version IS NULL
SET r.max_version = $version
`
	return graphdb.Statement{
		Cypher: cypher,
		Params: map[string]any{
			"entity_id":    p.EntityID,
			"space_id":     p.SpaceID,
			"attribute_id": p.AttributeID,
			"version":      p.Version,
		},
	}
}

// FindOneTripleParams names the inputs to a single-triple read.
type FindOneTripleParams struct {
	EntityID    string
	AttributeID string
	SpaceID     string
	Version     VersionFilter
}

// FindOneTriple reads a single attribute's value, returning (nil, nil) when no
// matching edge exists in that space/version.
func FindOneTriple(ctx context.Context, driver *graphdb.Driver, p FindOneTripleParams) (*Triple, error) {
	records, err := driver.ReadTx(ctx, compileFindOneTriple(p))
	if err != nil {
		return nil, storageErr("mapping: find triple", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	t, err := tripleFromRecord(records[0])
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func compileFindOneTriple(p FindOneTripleParams) graphdb.Statement {
	counter := &paramCounter{}
	qp := MatchQuery("(e:Entity {id: $entity_id}) -[r:ATTRIBUTE {space_id: $space_id}]-> (a:Attribute {id: $attribute_id})").
		Param("entity_id", p.EntityID).
		Param("space_id", p.SpaceID).
		Param("attribute_id", p.AttributeID).
		Return("e.id AS entity_id").
		Return("a.id AS attribute_id").
		Return("a.value AS value").
		Return("a.value_type AS value_type").
		Return("a.format AS format").
		Return("a.unit AS unit").
		Return("a.language AS language").
		Return("r.space_id AS space_id").
		Return("r.min_version AS min_version").
		Return("r.max_version AS max_version").
		Limit(1)
	qp = qp.Merge(p.Version.Render(counter, "r"))
	return qp.Compile()
}

// TripleFilter composes the PropFilters needed for a find-many
// triple query: attribute_id, value, value_type, entity_id, space_id, and a
// version filter, plus skip/limit.
type TripleFilter struct {
	AttributeID PropFilter[string]
	Value       PropFilter[string]
	ValueType   PropFilter[string]
	EntityID    PropFilter[string]
	SpaceID     PropFilter[string]
	Version     VersionFilter
	Skip        *int
	Limit       *int
}

// TripleStream is a lazy cursor over FindManyTriples results, holding one
// pooled connection until drained or closed.
type TripleStream struct {
	inner *graphdb.ResultStream
}

// FindManyTriples issues a single streaming query over the ATTRIBUTE edges
// matching f.
func FindManyTriples(ctx context.Context, driver *graphdb.Driver, f TripleFilter) (*TripleStream, error) {
	stream, err := driver.Stream(ctx, compileFindManyTriples(f))
	if err != nil {
		return nil, storageErr("mapping: find many triples", err)
	}
	return &TripleStream{inner: stream}, nil
}

func compileFindManyTriples(f TripleFilter) graphdb.Statement {
	counter := &paramCounter{}
	qp := MatchQuery("(e:Entity) -[r:ATTRIBUTE]-> (a:Attribute)").
		Return("e.id AS entity_id").
		Return("a.id AS attribute_id").
		Return("a.value AS value").
		Return("a.value_type AS value_type").
		Return("a.format AS format").
		Return("a.unit AS unit").
		Return("a.language AS language").
		Return("r.space_id AS space_id").
		Return("r.min_version AS min_version").
		Return("r.max_version AS max_version").
		OrderBy("e.id")

	qp = qp.Merge(f.AttributeID.Render(counter, "a", "id"))
	qp = qp.Merge(f.Value.Render(counter, "a", "value"))
	qp = qp.Merge(f.ValueType.Render(counter, "a", "value_type"))
	qp = qp.Merge(f.EntityID.Render(counter, "e", "id"))
	qp = qp.Merge(f.SpaceID.Render(counter, "r", "space_id"))
	qp = qp.Merge(f.Version.Render(counter, "r"))

	if f.Skip != nil {
		qp = qp.Skip(*f.Skip)
	}
	if f.Limit != nil {
		qp = qp.Limit(*f.Limit)
	}
	return qp.Compile()
}

// Next advances the cursor.
func (s *TripleStream) Next(ctx context.Context) bool { return s.inner.Next(ctx) }

// Triple decodes the current row. Only valid after Next returns true.
func (s *TripleStream) Triple() (Triple, error) { return tripleFromRecord(s.inner.Record()) }

// Err returns the error, if any, that ended the stream.
func (s *TripleStream) Err() error { return s.inner.Err() }

// Close releases the stream's pooled connection. Safe to call multiple times.
func (s *TripleStream) Close(ctx context.Context) error { return s.inner.Close(ctx) }

func tripleFromRecord(rec *neo4j.Record) (Triple, error) {
	entityID, err := getString(rec, "entity_id")
	if err != nil {
		return Triple{}, err
	}
	attributeID, err := getString(rec, "attribute_id")
	if err != nil {
		return Triple{}, err
	}
	value, err := getString(rec, "value")
	if err != nil {
		return Triple{}, err
	}
	valueType, err := getString(rec, "value_type")
	if err != nil {
		return Triple{}, err
	}
	spaceID, err := getString(rec, "space_id")
	if err != nil {
		return Triple{}, err
	}
	minVersion, err := getString(rec, "min_version")
	if err != nil {
		return Triple{}, err
	}
	maxVersion, _ := getOptionalVersion(rec, "max_version")

	return Triple{
		EntityID:    entityID,
		AttributeID: attributeID,
		SpaceID:     spaceID,
		MinVersion:  minVersion,
		MaxVersion:  maxVersion,
		Value: Value{
			Value:     value,
			ValueType: ValueType(valueType),
			Options: Options{
				Format:   getOptionalString(rec, "format"),
				Unit:     getOptionalString(rec, "unit"),
				Language: getOptionalString(rec, "language"),
			},
		},
	}, nil
}
