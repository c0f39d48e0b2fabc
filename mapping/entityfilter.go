package mapping

// EntityFilter aggregates the structural constraints on an entity variable:
// an id filter, a list of attribute filters (AND-combined), an optional
// outbound relation filter, and a global space_id distributed to every
// sub-filter that doesn't already carry its own.
type EntityFilter struct {
	id         PropFilter[string]
	attributes []AttributeFilter
	relation   *RelationFilter
	spaceID    PropFilter[string]
}

// NewEntityFilter builds an unconstrained EntityFilter.
func NewEntityFilter() EntityFilter { return EntityFilter{} }

// ID constrains the entity's id property.
func (f EntityFilter) ID(pf PropFilter[string]) EntityFilter { f.id = pf; return f }

// Attribute AND-combines another attribute filter onto f.
func (f EntityFilter) Attribute(af AttributeFilter) EntityFilter {
	f.attributes = append(append([]AttributeFilter{}, f.attributes...), af)
	return f
}

// Relation constrains the entity to have an outbound relation matching rf.
func (f EntityFilter) Relation(rf RelationFilter) EntityFilter { f.relation = &rf; return f }

// SpaceID sets the global space_id distributed to sub-filters on Build.
func (f EntityFilter) SpaceID(spaceID string) EntityFilter {
	f.spaceID = Value(spaceID)
	return f
}

// distributeSpaceID pushes f's global space_id down to every attribute filter
// and the relation filter that doesn't already carry its own.
func (f EntityFilter) distributeSpaceID() EntityFilter {
	if !f.spaceID.IsSet() {
		return f
	}

	attrs := make([]AttributeFilter, len(f.attributes))
	for i, af := range f.attributes {
		if !af.spaceID.IsSet() {
			af.spaceID = f.spaceID
		}
		attrs[i] = af
	}
	f.attributes = attrs

	if f.relation != nil && !f.relation.spaceID.IsSet() {
		rf := *f.relation
		rf.spaceID = f.spaceID
		f.relation = &rf
	}
	return f
}

// Build renders every constraint against an already-bound entityVar. Callers
// MATCH the entity node themselves (e.g. "(e:Entity)") before merging this
// QueryPart in.
func (f EntityFilter) Build(counter *paramCounter, entityVar string) QueryPart {
	f = f.distributeSpaceID()

	qp := NewQueryPart()
	qp = qp.Merge(f.id.Render(counter, entityVar, "id"))
	for _, af := range f.attributes {
		qp = qp.Merge(af.Render(counter, entityVar))
	}
	if f.relation != nil {
		fromVar := entityVar
		edgeVar := counter.next("r_rel")
		toVar := counter.next("related")
		qp = qp.Merge(f.relation.Build(counter, edgeVar, fromVar, toVar))
	}
	return qp
}
