package mapping

import (
	"fmt"
	"strings"

	"github.com/evalgo-org/kgraph/graphdb"
)

// QueryPart is an ordered, composable fragment of a Cypher statement: every
// filter and CRUD primitive in this package builds one, and QueryPart.Merge
// combines them so an arbitrary composition of filters still costs a single
// round trip to the database.
type QueryPart struct {
	unwindClauses        []string
	matchClauses         []string
	optionalMatchClauses []string
	whereClauses         []string
	withClause           *withClause
	returnClauses        []string
	orderByClauses       []string
	skip                 *int
	limit                *int
	params               map[string]any
}

type withClause struct {
	prefix string
	next   *QueryPart
}

// NewQueryPart returns an empty QueryPart.
func NewQueryPart() QueryPart {
	return QueryPart{params: map[string]any{}}
}

// MatchQuery builds a QueryPart consisting of a single MATCH clause.
func MatchQuery(clause string) QueryPart {
	qp := NewQueryPart()
	qp.matchClauses = append(qp.matchClauses, clause)
	return qp
}

// OptionalMatchQuery builds a QueryPart consisting of a single OPTIONAL MATCH
// clause.
func OptionalMatchQuery(clause string) QueryPart {
	qp := NewQueryPart()
	qp.optionalMatchClauses = append(qp.optionalMatchClauses, clause)
	return qp
}

// WhereQuery builds a QueryPart consisting of a single WHERE fragment (joined
// with AND against any other where fragments it is merged with).
func WhereQuery(clause string) QueryPart {
	qp := NewQueryPart()
	qp.whereClauses = append(qp.whereClauses, clause)
	return qp
}

// ReturnQuery builds a QueryPart consisting of a single RETURN projection.
func ReturnQuery(clause string) QueryPart {
	qp := NewQueryPart()
	qp.returnClauses = append(qp.returnClauses, clause)
	return qp
}

func (qp QueryPart) ensureParams() map[string]any {
	if qp.params == nil {
		qp.params = map[string]any{}
	}
	return qp.params
}

// Unwind appends an UNWIND clause.
func (qp QueryPart) Unwind(clause string) QueryPart {
	qp.unwindClauses = append(qp.unwindClauses, clause)
	return qp
}

// Match appends a MATCH clause.
func (qp QueryPart) Match(clause string) QueryPart {
	qp.matchClauses = append(qp.matchClauses, clause)
	return qp
}

// OptionalMatch appends an OPTIONAL MATCH clause.
func (qp QueryPart) OptionalMatch(clause string) QueryPart {
	qp.optionalMatchClauses = append(qp.optionalMatchClauses, clause)
	return qp
}

// Where appends a WHERE fragment.
func (qp QueryPart) Where(clause string) QueryPart {
	qp.whereClauses = append(qp.whereClauses, clause)
	return qp
}

// Return appends a RETURN projection, deduplicated preserving first-occurrence
// order.
func (qp QueryPart) Return(clause string) QueryPart {
	for _, existing := range qp.returnClauses {
		if existing == clause {
			return qp
		}
	}
	qp.returnClauses = append(qp.returnClauses, clause)
	return qp
}

// OrderBy appends an ORDER BY term, deduplicated preserving first-occurrence
// order.
func (qp QueryPart) OrderBy(clause string) QueryPart {
	for _, existing := range qp.orderByClauses {
		if existing == clause {
			return qp
		}
	}
	qp.orderByClauses = append(qp.orderByClauses, clause)
	return qp
}

// With attaches a WITH clause followed by the rest of the query expressed as a
// nested QueryPart, evaluated after the WITH projects its named variables.
func (qp QueryPart) With(prefix string, next QueryPart) QueryPart {
	params := qp.ensureParams()
	for k, v := range next.params {
		params[k] = v
	}
	qp.params = params
	qp.withClause = &withClause{prefix: prefix, next: &next}
	return qp
}

// Param binds a single parameter.
func (qp QueryPart) Param(key string, value any) QueryPart {
	params := qp.ensureParams()
	params[key] = value
	qp.params = params
	return qp
}

// Limit sets the LIMIT clause.
func (qp QueryPart) Limit(n int) QueryPart {
	qp.limit = &n
	return qp
}

// Skip sets the SKIP clause.
func (qp QueryPart) Skip(n int) QueryPart {
	qp.skip = &n
	return qp
}

// IsEmpty reports whether the part has neither a match, where, return, with,
// nor order-by clause.
func (qp QueryPart) IsEmpty() bool {
	return len(qp.matchClauses) == 0 &&
		len(qp.whereClauses) == 0 &&
		len(qp.returnClauses) == 0 &&
		qp.withClause == nil &&
		len(qp.orderByClauses) == 0
}

// Merge concatenates qp and other: match/optional-match/where/return/order-by
// lists are extended (where-clauses AND-combined at render time, return/order-by
// deduplicated), and parameter maps are merged. The first non-nil with-clause
// wins.
func (qp QueryPart) Merge(other QueryPart) QueryPart {
	out := qp
	out.unwindClauses = append(append([]string{}, qp.unwindClauses...), other.unwindClauses...)
	out.matchClauses = append(append([]string{}, qp.matchClauses...), other.matchClauses...)
	out.optionalMatchClauses = append(append([]string{}, qp.optionalMatchClauses...), other.optionalMatchClauses...)
	out.whereClauses = append(append([]string{}, qp.whereClauses...), other.whereClauses...)

	out.returnClauses = append([]string{}, qp.returnClauses...)
	for _, clause := range other.returnClauses {
		out = out.appendReturn(clause)
	}

	out.orderByClauses = append([]string{}, qp.orderByClauses...)
	for _, clause := range other.orderByClauses {
		out = out.appendOrderBy(clause)
	}

	if out.withClause == nil {
		out.withClause = other.withClause
	}

	merged := map[string]any{}
	for k, v := range qp.params {
		merged[k] = v
	}
	for k, v := range other.params {
		merged[k] = v
	}
	out.params = merged

	return out
}

func (qp QueryPart) appendReturn(clause string) QueryPart {
	for _, existing := range qp.returnClauses {
		if existing == clause {
			return qp
		}
	}
	qp.returnClauses = append(qp.returnClauses, clause)
	return qp
}

func (qp QueryPart) appendOrderBy(clause string) QueryPart {
	for _, existing := range qp.orderByClauses {
		if existing == clause {
			return qp
		}
	}
	qp.orderByClauses = append(qp.orderByClauses, clause)
	return qp
}

// CombineQueryParts folds a list of QueryParts into one via repeated Merge.
func CombineQueryParts(parts ...QueryPart) QueryPart {
	out := NewQueryPart()
	for _, part := range parts {
		out = out.Merge(part)
	}
	return out
}

// Query renders the compiled Cypher text for this QueryPart, recursing into
// any with-clause cascade. ORDER BY, SKIP and LIMIT follow the projection
// that closes this part: the WITH line when a with-clause is present,
// otherwise the RETURN clause.
func (qp QueryPart) Query() string {
	var b strings.Builder

	writeOrderSkipLimit := func() {
		if len(qp.orderByClauses) > 0 {
			b.WriteString("ORDER BY ")
			b.WriteString(strings.Join(qp.orderByClauses, ", "))
			b.WriteString("\n")
		}
		if qp.skip != nil {
			fmt.Fprintf(&b, "SKIP %d\n", *qp.skip)
		}
		if qp.limit != nil {
			fmt.Fprintf(&b, "LIMIT %d\n", *qp.limit)
		}
	}

	for _, clause := range qp.unwindClauses {
		fmt.Fprintf(&b, "UNWIND %s\n", clause)
	}
	for _, clause := range qp.matchClauses {
		fmt.Fprintf(&b, "MATCH %s\n", clause)
	}
	for _, clause := range qp.optionalMatchClauses {
		fmt.Fprintf(&b, "OPTIONAL MATCH %s\n", clause)
	}
	if len(qp.whereClauses) > 0 {
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(qp.whereClauses, "\nAND "))
		b.WriteString("\n")
	}
	if qp.withClause != nil {
		fmt.Fprintf(&b, "WITH %s\n", qp.withClause.prefix)
		writeOrderSkipLimit()
		b.WriteString(qp.withClause.next.Query())
		b.WriteString("\n")
	}
	if len(qp.returnClauses) > 0 {
		b.WriteString("RETURN ")
		b.WriteString(strings.Join(qp.returnClauses, ", "))
		b.WriteString("\n")
	}
	if qp.withClause == nil {
		writeOrderSkipLimit()
	}

	return b.String()
}

// Params flattens this QueryPart's own parameters together with any nested
// with-clause's parameters.
func (qp QueryPart) Params() map[string]any {
	out := map[string]any{}
	for k, v := range qp.params {
		out[k] = v
	}
	if qp.withClause != nil {
		for k, v := range qp.withClause.next.Params() {
			out[k] = v
		}
	}
	return out
}

// Compile renders the final graphdb.Statement: the Cypher string plus its
// parameter bindings, the single round-trip unit every mapping operation
// dispatches.
func (qp QueryPart) Compile() graphdb.Statement {
	return graphdb.Statement{Cypher: qp.Query(), Params: qp.Params()}
}

func (qp QueryPart) String() string {
	return fmt.Sprintf("%s\n%v", qp.Query(), qp.Params())
}
