package mapping

import "fmt"

// RelationFilter aggregates the structural constraints on a RELATION edge: its
// own id, EntityFilters against its from/to endpoints, an EntityFilter against
// its relation-type endpoint, and an optional space_id applied to the edge.
// It matches the edge form only; node-form role-edges are not matched.
type RelationFilter struct {
	id           PropFilter[string]
	from         *EntityFilter
	to           *EntityFilter
	relationType *EntityFilter
	spaceID      PropFilter[string]
}

// NewRelationFilter builds an unconstrained RelationFilter.
func NewRelationFilter() RelationFilter { return RelationFilter{} }

// ID constrains the relation edge's id property.
func (f RelationFilter) ID(pf PropFilter[string]) RelationFilter { f.id = pf; return f }

// From constrains the relation's from endpoint.
func (f RelationFilter) From(ef EntityFilter) RelationFilter { f.from = &ef; return f }

// To constrains the relation's to endpoint.
func (f RelationFilter) To(ef EntityFilter) RelationFilter { f.to = &ef; return f }

// RelationType constrains the relation's relation-type endpoint.
func (f RelationFilter) RelationType(ef EntityFilter) RelationFilter { f.relationType = &ef; return f }

// SpaceID sets the space_id applied to the relation edge. An enclosing
// EntityFilter's SpaceID fills it in when unset; it is not passed on to the
// from/to/relation-type EntityFilters.
func (f RelationFilter) SpaceID(spaceID string) RelationFilter {
	f.spaceID = Value(spaceID)
	return f
}

// Build renders the relation edge match `(<fromVar>) -[<edgeVar>:RELATION]->
// (<toVar>)` plus id/space_id/from/to/relation_type constraints.
func (f RelationFilter) Build(counter *paramCounter, edgeVar, fromVar, toVar string) QueryPart {
	qp := MatchQuery(fmt.Sprintf("(%s) -[%s:RELATION]-> (%s)", fromVar, edgeVar, toVar))
	qp = qp.Merge(f.id.Render(counter, edgeVar, "id"))
	qp = qp.Merge(f.spaceID.Render(counter, edgeVar, "space_id"))

	if f.from != nil {
		qp = qp.Merge(f.from.Build(counter, fromVar))
	}
	if f.to != nil {
		qp = qp.Merge(f.to.Build(counter, toVar))
	}
	if f.relationType != nil {
		typeVar := counter.next("rel_type")
		qp = qp.Match(fmt.Sprintf("(%s:Entity)", typeVar)).
			Where(fmt.Sprintf("%s.id = %s.relation_type", typeVar, edgeVar)).
			Merge(f.relationType.Build(counter, typeVar))
	}
	return qp
}
