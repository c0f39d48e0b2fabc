package mapping

import (
	"context"
	"time"

	"github.com/evalgo-org/kgraph/graphdb"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// RelationEdge is the edge-form representation of a relation: a single
// directed RELATION edge between two entities, cheap to traverse in bulk.
type RelationEdge struct {
	ID           string
	From         string
	To           string
	RelationType string
	Index        string
	SpaceID      string
	MinVersion   string
	MaxVersion   string // "" means current
}

// InsertRelationEdgeParams names the inputs to an edge-form relation insert.
// Both endpoints must already exist as Entity nodes.
type InsertRelationEdgeParams struct {
	ID           string
	From         string
	To           string
	RelationType string
	Index        string
	SpaceID      string
	SpaceVersion string
	Now          time.Time
	Block        string
}

// InsertRelationEdge creates the directed RELATION edge, requiring both
// endpoints to already exist.
func InsertRelationEdge(ctx context.Context, driver *graphdb.Driver, p InsertRelationEdgeParams) error {
	_, err := driver.WriteTx(ctx, compileInsertRelationEdge(p))
	return storageErr("mapping: insert relation edge", err)
}

func compileInsertRelationEdge(p InsertRelationEdgeParams) graphdb.Statement {
	const cypher = `MATCH (f:Entity {id: $from}), (t:Entity {id: $to})
MERGE (f) -[r:RELATION {id: $id, space_id: $space_id}]-> (t)
ON CREATE SET r.created_at = $now, r.created_at_block = $block
SET r.relation_type = $relation_type,
    r.index = $index,
    r.min_version = $space_version,
    r.max_version = null,
    r.updated_at = $now,
    r.updated_at_block = $block
`
	return graphdb.Statement{
		Cypher: cypher,
		Params: map[string]any{
			"id":            p.ID,
			"from":          p.From,
			"to":            p.To,
			"relation_type": p.RelationType,
			"index":         p.Index,
			"space_id":      p.SpaceID,
			"space_version": p.SpaceVersion,
			"now":           p.Now.UTC().Format(time.RFC3339),
			"block":         p.Block,
		},
	}
}

// DeleteRelationEdgeParams names the inputs to an edge-form relation
// retirement.
type DeleteRelationEdgeParams struct {
	ID      string
	SpaceID string
	Version string
}

// DeleteRelationEdge retires the current RELATION edge by setting
// max_version = Version.
func DeleteRelationEdge(ctx context.Context, driver *graphdb.Driver, p DeleteRelationEdgeParams) error {
	_, err := driver.WriteTx(ctx, compileDeleteRelationEdge(p))
	return storageErr("mapping: delete relation edge", err)
}

func compileDeleteRelationEdge(p DeleteRelationEdgeParams) graphdb.Statement {
	const cypher = `MATCH ()-[r:RELATION {id: $id, space_id: $space_id}]->()
WHERE r.max_version IS NULL
SET r.max_version = $version
`
	return graphdb.Statement{
		Cypher: cypher,
		Params: map[string]any{
			"id":       p.ID,
			"space_id": p.SpaceID,
			"version":  p.Version,
		},
	}
}

// FindOneRelationEdgeParams names the inputs to a single edge-form relation
// read by id.
type FindOneRelationEdgeParams struct {
	ID      string
	SpaceID string
	Version VersionFilter
}

// FindOneRelationEdge reads the edge-form relation with the given id in the
// given space/version, returning (nil, nil) when no matching edge exists.
func FindOneRelationEdge(ctx context.Context, driver *graphdb.Driver, p FindOneRelationEdgeParams) (*RelationEdge, error) {
	records, err := driver.ReadTx(ctx, compileFindOneRelationEdge(p))
	if err != nil {
		return nil, storageErr("mapping: find relation edge", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	r, err := relationEdgeFromRecord(records[0])
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func compileFindOneRelationEdge(p FindOneRelationEdgeParams) graphdb.Statement {
	counter := &paramCounter{}
	qp := MatchQuery("(from_entity:Entity) -[r:RELATION {id: $id, space_id: $space_id}]-> (to_entity:Entity)").
		Param("id", p.ID).
		Param("space_id", p.SpaceID).
		Return("r.id AS id").
		Return("from_entity.id AS from_id").
		Return("to_entity.id AS to_id").
		Return("r.relation_type AS relation_type").
		Return("r.index AS index").
		Return("r.space_id AS space_id").
		Return("r.min_version AS min_version").
		Return("r.max_version AS max_version").
		Limit(1)
	qp = qp.Merge(p.Version.Render(counter, "r"))
	return qp.Compile()
}

// RelationEdgeFilter composes the structural constraints a relation find
// for a relation find: id, from, to, relation_type, space_id, version, plus
// skip/limit. SelectTo requests the `to` endpoint entity id projected instead
// of the relation itself.
type RelationEdgeFilter struct {
	ID           PropFilter[string]
	From         PropFilter[string]
	To           PropFilter[string]
	RelationType PropFilter[string]
	SpaceID      PropFilter[string]
	Version      VersionFilter
	Skip         *int
	Limit        *int
	SelectTo     bool
}

// RelationEdgeStream is a lazy cursor over FindManyRelationEdges results.
type RelationEdgeStream struct {
	inner    *graphdb.ResultStream
	selectTo bool
}

// FindManyRelationEdges issues a single streaming query over RELATION edges
// matching f, ordered by index ascending with string tie-break.
func FindManyRelationEdges(ctx context.Context, driver *graphdb.Driver, f RelationEdgeFilter) (*RelationEdgeStream, error) {
	stream, err := driver.Stream(ctx, compileFindManyRelationEdges(f))
	if err != nil {
		return nil, storageErr("mapping: find many relation edges", err)
	}
	return &RelationEdgeStream{inner: stream, selectTo: f.SelectTo}, nil
}

func compileFindManyRelationEdges(f RelationEdgeFilter) graphdb.Statement {
	counter := &paramCounter{}
	qp := MatchQuery("(from_entity:Entity) -[r:RELATION]-> (to_entity:Entity)")

	if f.SelectTo {
		qp = qp.Return("to_entity.id AS to_id")
	} else {
		qp = qp.
			Return("r.id AS id").
			Return("from_entity.id AS from_id").
			Return("to_entity.id AS to_id").
			Return("r.relation_type AS relation_type").
			Return("r.index AS index").
			Return("r.space_id AS space_id").
			Return("r.min_version AS min_version").
			Return("r.max_version AS max_version")
	}

	qp = qp.Merge(f.ID.Render(counter, "r", "id"))
	qp = qp.Merge(f.From.Render(counter, "from_entity", "id"))
	qp = qp.Merge(f.To.Render(counter, "to_entity", "id"))
	qp = qp.Merge(f.RelationType.Render(counter, "r", "relation_type"))
	qp = qp.Merge(f.SpaceID.Render(counter, "r", "space_id"))
	qp = qp.Merge(f.Version.Render(counter, "r"))

	qp = qp.OrderBy("r.index")
	if f.Skip != nil {
		qp = qp.Skip(*f.Skip)
	}
	if f.Limit != nil {
		qp = qp.Limit(*f.Limit)
	}
	return qp.Compile()
}

// Next advances the cursor.
func (s *RelationEdgeStream) Next(ctx context.Context) bool { return s.inner.Next(ctx) }

// RelationEdge decodes the current row as a full relation. Invalid when the
// stream was built with SelectTo; use ToEntityID instead.
func (s *RelationEdgeStream) RelationEdge() (RelationEdge, error) {
	return relationEdgeFromRecord(s.inner.Record())
}

// ToEntityID decodes the current row's projected `to` endpoint id. Only valid
// when the stream was built with SelectTo.
func (s *RelationEdgeStream) ToEntityID() (string, error) {
	return getString(s.inner.Record(), "to_id")
}

// Err returns the error, if any, that ended the stream.
func (s *RelationEdgeStream) Err() error { return s.inner.Err() }

// Close releases the stream's pooled connection. Safe to call multiple times.
func (s *RelationEdgeStream) Close(ctx context.Context) error { return s.inner.Close(ctx) }

func relationEdgeFromRecord(rec *neo4j.Record) (RelationEdge, error) {
	id, err := getString(rec, "id")
	if err != nil {
		return RelationEdge{}, err
	}
	fromID, err := getString(rec, "from_id")
	if err != nil {
		return RelationEdge{}, err
	}
	toID, err := getString(rec, "to_id")
	if err != nil {
		return RelationEdge{}, err
	}
	relationType, err := getString(rec, "relation_type")
	if err != nil {
		return RelationEdge{}, err
	}
	index, err := getString(rec, "index")
	if err != nil {
		return RelationEdge{}, err
	}
	spaceID, err := getString(rec, "space_id")
	if err != nil {
		return RelationEdge{}, err
	}
	minVersion, err := getString(rec, "min_version")
	if err != nil {
		return RelationEdge{}, err
	}
	maxVersion, _ := getOptionalVersion(rec, "max_version")

	return RelationEdge{
		ID:           id,
		From:         fromID,
		To:           toID,
		RelationType: relationType,
		Index:        index,
		SpaceID:      spaceID,
		MinVersion:   minVersion,
		MaxVersion:   maxVersion,
	}, nil
}
