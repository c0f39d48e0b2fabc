package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func paramValues(qp QueryPart) []any {
	out := make([]any, 0, len(qp.Params()))
	for _, v := range qp.Params() {
		out = append(out, v)
	}
	return out
}

func TestAttributeFilterRender(t *testing.T) {
	counter := &paramCounter{}
	af := NewAttributeFilter(NamePropertyID).Value(Value("alice"))

	qp := af.Render(counter, "e")

	assert.Contains(t, qp.Query(), "-[r_attr2:ATTRIBUTE]->")
	assert.Contains(t, qp.Query(), "attr_node1:Attribute {id: $attr_id3}")
	assert.Contains(t, qp.Query(), "attr_node1.value = $value4")
	assert.Contains(t, paramValues(qp), NamePropertyID)
	assert.Contains(t, paramValues(qp), "alice")
}

func TestEntityFilterDistributesSpaceID(t *testing.T) {
	ef := NewEntityFilter().
		Attribute(NewAttributeFilter(NamePropertyID)).
		SpaceID("space-a")

	counter := &paramCounter{}
	qp := ef.Build(counter, "e")

	assert.Contains(t, paramValues(qp), "space-a")
}

func TestEntityFilterAttributeKeepsOwnSpaceID(t *testing.T) {
	ef := NewEntityFilter().
		Attribute(NewAttributeFilter(NamePropertyID).SpaceID(Value("space-b"))).
		SpaceID("space-a")

	counter := &paramCounter{}
	qp := ef.Build(counter, "e")

	assert.Contains(t, paramValues(qp), "space-b")
	assert.NotContains(t, paramValues(qp), "space-a")
}

func TestRelationFilterRender(t *testing.T) {
	rf := NewRelationFilter().
		ID(Value("rel-1")).
		From(NewEntityFilter().ID(Value("from-1"))).
		To(NewEntityFilter().ID(Value("to-1")))

	counter := &paramCounter{}
	qp := rf.Build(counter, "r", "f", "t")

	assert.Contains(t, qp.Query(), "(f) -[r:RELATION]-> (t)")
	assert.Contains(t, paramValues(qp), "rel-1")
	assert.Contains(t, paramValues(qp), "from-1")
	assert.Contains(t, paramValues(qp), "to-1")
}

func TestEntityFilterOutboundRelation(t *testing.T) {
	ef := NewEntityFilter().
		Relation(NewRelationFilter().ID(Value("rel-1")))

	counter := &paramCounter{}
	qp := ef.Build(counter, "e")

	assert.Contains(t, qp.Query(), "(e) -[r_rel1:RELATION]-> (related2)")
}
