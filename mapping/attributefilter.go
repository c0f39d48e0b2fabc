package mapping

import "fmt"

// AttributeFilter matches an entity carrying an ATTRIBUTE edge to a
// particular attribute id, optionally constrained by PropFilters on the
// attribute's value, value_type, and the edge's space_id.
type AttributeFilter struct {
	attributeID string
	value       PropFilter[string]
	valueType   PropFilter[string]
	spaceID     PropFilter[string]
}

// NewAttributeFilter builds an AttributeFilter matching attributeID with no
// further constraints.
func NewAttributeFilter(attributeID string) AttributeFilter {
	return AttributeFilter{attributeID: attributeID}
}

// Value constrains the attribute node's value property.
func (f AttributeFilter) Value(pf PropFilter[string]) AttributeFilter { f.value = pf; return f }

// ValueType constrains the attribute node's value_type property.
func (f AttributeFilter) ValueType(pf PropFilter[string]) AttributeFilter { f.valueType = pf; return f }

// SpaceID constrains the ATTRIBUTE edge's space_id property.
func (f AttributeFilter) SpaceID(pf PropFilter[string]) AttributeFilter { f.spaceID = pf; return f }

// Render builds the sub-match `(<entityVar>) -[r_attr:ATTRIBUTE]-> (:Attribute
// {id: $attr_id})` plus any value/value_type/space_id constraints, allocating
// fresh variable and parameter names from counter so repeated attribute
// filters in one EntityFilter never collide.
func (f AttributeFilter) Render(counter *paramCounter, entityVar string) QueryPart {
	attrVar := counter.next("attr_node")
	edgeVar := counter.next("r_attr")
	idParam := counter.next("attr_id")

	qp := MatchQuery(fmt.Sprintf("(%s) -[%s:ATTRIBUTE]-> (%s:Attribute {id: $%s})", entityVar, edgeVar, attrVar, idParam)).
		Param(idParam, f.attributeID)

	qp = qp.Merge(f.value.Render(counter, attrVar, "value"))
	qp = qp.Merge(f.valueType.Render(counter, attrVar, "value_type"))
	qp = qp.Merge(f.spaceID.Render(counter, edgeVar, "space_id"))
	return qp
}
