package mapping

import "fmt"

// VersionFilter selects which edges/nodes are visible for a read, expressed
// against a graph variable's min_version/max_version properties. The zero
// value means "current" (no max_version): the common case of reading the
// live graph at its latest version.
type VersionFilter struct {
	version string
	isSet   bool
}

// CurrentVersion builds a VersionFilter that matches only rows with no
// max_version set, i.e. the current, unretired state.
func CurrentVersion() VersionFilter { return VersionFilter{} }

// AtVersion builds a VersionFilter that matches rows visible at the given
// version: min_version <= v and (max_version is null or max_version > v).
func AtVersion(version string) VersionFilter {
	return VersionFilter{version: version, isSet: true}
}

// Render emits the WHERE fragment constraining variable's visibility interval.
func (f VersionFilter) Render(counter *paramCounter, variable string) QueryPart {
	if !f.isSet {
		return WhereQuery(fmt.Sprintf("%s.max_version IS NULL", variable))
	}

	p := counter.next("version")
	clause := fmt.Sprintf(
		"%s.min_version <= $%s AND (%s.max_version IS NULL OR %s.max_version > $%s)",
		variable, p, variable, variable, p,
	)
	return WhereQuery(clause).Param(p, f.version)
}
