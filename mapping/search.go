package mapping

import (
	"context"
	"fmt"

	"github.com/evalgo-org/kgraph/graphdb"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DefaultEffectiveSearchRatio multiplies the caller's limit before the vector
// index is asked for candidates, so re-ranking has room to drop weaker
// matches.
const DefaultEffectiveSearchRatio = 10

// VectorIndexName is the reserved name of the cosine-similarity index over
// Indexed attribute nodes' embeddings.
const VectorIndexName = "vector_index"

// SemanticSearchQuery names a vector similarity search.
type SemanticSearchQuery struct {
	Vector []float64
	Limit  int
	Skip   int
	// Ratio overrides DefaultEffectiveSearchRatio when positive.
	Ratio int
}

func (q SemanticSearchQuery) effectiveLimit() int {
	ratio := q.Ratio
	if ratio <= 0 {
		ratio = DefaultEffectiveSearchRatio
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}
	return limit * ratio
}

// SemanticSearchResult is one ranked hit: the matched triple, its similarity
// score, and the provenance edge's space/version.
type SemanticSearchResult struct {
	Triple       Triple
	Score        float64
	SpaceID      string
	SpaceVersion string
}

// SemanticSearchStream is a lazy cursor over semantic search results, ordered
// descending by score.
type SemanticSearchStream struct {
	inner *graphdb.ResultStream
}

// SemanticSearch queries vector_index for the nearest Indexed attribute nodes
// to q.Vector, then for each resolves the ATTRIBUTE edge that attached it to
// its owning entity. When an attribute node carries more than one provenance
// edge, the smallest space_id (lexicographically) is kept, a deterministic
// tie-break for an otherwise unspecified choice.
func SemanticSearch(ctx context.Context, driver *graphdb.Driver, q SemanticSearchQuery) (*SemanticSearchStream, error) {
	stream, err := driver.Stream(ctx, compileSemanticSearch(q))
	if err != nil {
		return nil, storageErr("mapping: semantic search", err)
	}
	return &SemanticSearchStream{inner: stream}, nil
}

func compileSemanticSearch(q SemanticSearchQuery) graphdb.Statement {
	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}

	cypher := `CALL db.index.vector.queryNodes($index_name, $effective_limit, $vector) YIELD node, score
WITH node, score
ORDER BY score DESC
WITH node, score, [ (e)-[r:ATTRIBUTE]->(node) WHERE r.max_version IS NULL | {entity_id: e.id, r: r} ] AS edges
UNWIND edges AS edge
WITH node, score, edge
ORDER BY score DESC, edge.r.space_id ASC
WITH node, score, collect(edge)[0] AS edge
RETURN edge.entity_id AS entity_id,
       node.id AS attribute_id,
       node.value AS value,
       node.value_type AS value_type,
       node.format AS format,
       node.unit AS unit,
       node.language AS language,
       edge.r.space_id AS space_id,
       edge.r.min_version AS min_version,
       edge.r.max_version AS max_version,
       score AS score
ORDER BY score DESC
SKIP $skip
LIMIT $limit
`
	return graphdb.Statement{
		Cypher: cypher,
		Params: map[string]any{
			"index_name":      VectorIndexName,
			"vector":          q.Vector,
			"effective_limit": q.effectiveLimit(),
			"skip":            q.Skip,
			"limit":           limit,
		},
	}
}

// Next advances the cursor.
func (s *SemanticSearchStream) Next(ctx context.Context) bool { return s.inner.Next(ctx) }

// Result decodes the current row. Only valid after Next returns true.
func (s *SemanticSearchStream) Result() (SemanticSearchResult, error) {
	return semanticSearchResultFromRecord(s.inner.Record())
}

// Err returns the error, if any, that ended the stream.
func (s *SemanticSearchStream) Err() error { return s.inner.Err() }

// Close releases the stream's pooled connection. Safe to call multiple times.
func (s *SemanticSearchStream) Close(ctx context.Context) error { return s.inner.Close(ctx) }

func semanticSearchResultFromRecord(rec *neo4j.Record) (SemanticSearchResult, error) {
	t, err := tripleFromRecord(rec)
	if err != nil {
		return SemanticSearchResult{}, err
	}

	scoreRaw, ok := rec.Get("score")
	if !ok {
		return SemanticSearchResult{}, fmt.Errorf("%w: missing column score", ErrDeserialization)
	}
	score, ok := scoreRaw.(float64)
	if !ok {
		return SemanticSearchResult{}, fmt.Errorf("%w: column score is not a float64", ErrDeserialization)
	}

	return SemanticSearchResult{
		Triple:       t,
		Score:        score,
		SpaceID:      t.SpaceID,
		SpaceVersion: t.MinVersion,
	}, nil
}
