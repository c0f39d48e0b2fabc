package mapping

import (
	"context"
	"fmt"

	"github.com/evalgo-org/kgraph/graphdb"
	"github.com/sirupsen/logrus"
)

// Direction names the walk a Pluralism.Direction resolution takes through the
// space hierarchy.
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	// DirectionBidirectional is reserved. The source leaves this direction
	// unimplemented; the resolver logs a warning and falls back to None
	// rather than guessing a policy.
	DirectionBidirectional
)

// HierarchyEntry is one preordered candidate space in a caller-supplied
// Pluralism.Hierarchy list.
type HierarchyEntry struct {
	SpaceID string
	Depth   int
}

// pluralismKind discriminates the Pluralism option in effect.
type pluralismKind int

const (
	pluralismNone pluralismKind = iota
	pluralismDirection
	pluralismHierarchy
)

// Pluralism selects how a triple read aggregates across the space hierarchy.
// Build one with NoPluralism, DirectionalPluralism, or HierarchyPluralism.
type Pluralism struct {
	kind      pluralismKind
	direction Direction
	hierarchy []HierarchyEntry
}

// NoPluralism reads exactly from the named space (the default).
func NoPluralism() Pluralism { return Pluralism{kind: pluralismNone} }

// DirectionalPluralism walks the space tree in d starting at (and including)
// the named space.
func DirectionalPluralism(d Direction) Pluralism {
	return Pluralism{kind: pluralismDirection, direction: d}
}

// HierarchyPluralism resolves against a caller-supplied preordered list of
// candidate spaces and their depths.
func HierarchyPluralism(entries []HierarchyEntry) Pluralism {
	return Pluralism{kind: pluralismHierarchy, hierarchy: entries}
}

// ResolveTripleParams names the inputs to a space-hierarchy-aware triple
// read.
type ResolveTripleParams struct {
	EntityID    string
	AttributeID string
	SpaceID     string
	Pluralism   Pluralism
	Version     VersionFilter
	// Logger receives the DirectionBidirectional downgrade warning at Warn
	// level. A nil Logger silently downgrades.
	Logger *logrus.Logger
}

// ResolveTriple reads a triple aggregated across the space hierarchy per
// p.Pluralism, returning (nil, nil) when no candidate space defines it.
func ResolveTriple(ctx context.Context, driver *graphdb.Driver, p ResolveTripleParams) (*Triple, error) {
	switch p.Pluralism.kind {
	case pluralismDirection:
		if p.Pluralism.direction == DirectionBidirectional {
			if p.Logger != nil {
				p.Logger.WithField("space_id", p.SpaceID).
					Warn("space-hierarchy pluralism: bidirectional aggregation is unimplemented, downgrading to none")
			}
			return FindOneTriple(ctx, driver, FindOneTripleParams{
				EntityID:    p.EntityID,
				AttributeID: p.AttributeID,
				SpaceID:     p.SpaceID,
				Version:     p.Version,
			})
		}
		return resolveByDirection(ctx, driver, p)
	case pluralismHierarchy:
		return resolveByHierarchy(ctx, driver, p)
	default:
		return FindOneTriple(ctx, driver, FindOneTripleParams{
			EntityID:    p.EntityID,
			AttributeID: p.AttributeID,
			SpaceID:     p.SpaceID,
			Version:     p.Version,
		})
	}
}

func resolveByDirection(ctx context.Context, driver *graphdb.Driver, p ResolveTripleParams) (*Triple, error) {
	records, err := driver.ReadTx(ctx, compileResolveByDirection(p))
	if err != nil {
		return nil, storageErr("mapping: resolve triple by direction", err)
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

// compileResolveByDirection walks the PARENT_SPACE chain stored in
// IndexerSpaceID (up toward ancestors, or down toward descendants) starting
// at the named space, matching the requested triple against every candidate
// and keeping the nearest one by path length.
func compileResolveByDirection(p ResolveTripleParams) graphdb.Statement {
	counter := &paramCounter{}

	pattern := "(origin:Entity {id: $space_id}) -[:RELATION* 0.. {relation_type: $parent_kind, space_id: $indexer_space}]-> (candidate:Entity)"
	if p.Pluralism.direction == DirectionDown {
		pattern = "(origin:Entity {id: $space_id}) <-[:RELATION* 0.. {relation_type: $parent_kind, space_id: $indexer_space}]- (candidate:Entity)"
	}

	qp := MatchQuery(fmt.Sprintf("path = %s", pattern)).
		Param("space_id", p.SpaceID).
		Param("parent_kind", ParentSpaceRelationKind).
		Param("indexer_space", IndexerSpaceID).
		Match("(e:Entity {id: $entity_id}) -[r:ATTRIBUTE {space_id: candidate.id}]-> (a:Attribute {id: $attribute_id})").
		Param("entity_id", p.EntityID).
		Param("attribute_id", p.AttributeID).
		Return("candidate.id AS space_id").
		Return("length(path) AS depth").
		Return("e.id AS entity_id").
		Return("a.id AS attribute_id").
		Return("a.value AS value").
		Return("a.value_type AS value_type").
		Return("a.format AS format").
		Return("a.unit AS unit").
		Return("a.language AS language").
		Return("r.min_version AS min_version").
		Return("r.max_version AS max_version").
		OrderBy("length(path)").
		Limit(1)
	qp = qp.Merge(p.Version.Render(counter, "r"))

	return qp.Compile()
}

func resolveByHierarchy(ctx context.Context, driver *graphdb.Driver, p ResolveTripleParams) (*Triple, error) {
	records, err := driver.ReadTx(ctx, compileResolveByHierarchy(p))
	if err != nil {
		return nil, storageErr("mapping: resolve triple by hierarchy", err)
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

// compileResolveByHierarchy matches the requested triple against each
// caller-supplied candidate space in turn, keeping the shallowest.
func compileResolveByHierarchy(p ResolveTripleParams) graphdb.Statement {
	counter := &paramCounter{}

	entries := make([]map[string]any, len(p.Pluralism.hierarchy))
	for i, h := range p.Pluralism.hierarchy {
		entries[i] = map[string]any{"space_id": h.SpaceID, "depth": h.Depth}
	}

	qp := NewQueryPart().
		Unwind("$hierarchy AS candidate").
		Param("hierarchy", entries).
		Match("(e:Entity {id: $entity_id}) -[r:ATTRIBUTE {space_id: candidate.space_id}]-> (a:Attribute {id: $attribute_id})").
		Param("entity_id", p.EntityID).
		Param("attribute_id", p.AttributeID).
		Return("candidate.space_id AS space_id").
		Return("candidate.depth AS depth").
		Return("e.id AS entity_id").
		Return("a.id AS attribute_id").
		Return("a.value AS value").
		Return("a.value_type AS value_type").
		Return("a.format AS format").
		Return("a.unit AS unit").
		Return("a.language AS language").
		Return("r.min_version AS min_version").
		Return("r.max_version AS max_version").
		OrderBy("candidate.depth").
		Limit(1)
	qp = qp.Merge(p.Version.Render(counter, "r"))

	return qp.Compile()
}
