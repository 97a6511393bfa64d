// Package sqlxrepos provides PostgreSQL-backed repository implementations
// for the core domain packages, built on sqlx.
package sqlxrepos

import (
	"strconv"
	"strings"

	"github.com/bunkmate-io/bunkmate/core"
)

func itoa(n int) string { return strconv.Itoa(n) }

// argBuilder collects positional query arguments and hands out their placeholders.
type argBuilder struct {
	args []interface{}
}

func (b *argBuilder) add(val interface{}) string {
	b.args = append(b.args, val)
	return "$" + itoa(len(b.args))
}

// orderByClause renders orderings into an ORDER BY clause, keeping only
// whitelisted fields. Field names come straight from query params so anything
// not whitelisted is dropped rather than interpolated.
func orderByClause(orderings []core.DBOrdering, allowed map[string]string, fallback string) string {
	var cols []string
	for _, ord := range orderings {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		dir := " DESC"
		if ord.Ascending {
			dir = " ASC"
		}
		cols = append(cols, col+dir)
	}
	if len(cols) == 0 {
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(cols, ", ")
}
