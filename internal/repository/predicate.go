package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/xenking/storefront/internal/domain/catalog"
)

// whereBuilder accumulates AND-ed SQL conditions with positional
// arguments. An empty builder renders no WHERE clause at all, so a filter
// with every field unset matches everything.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends one condition. format must contain a single %d verb for the
// argument's placeholder number.
func (b *whereBuilder) add(format string, value any) {
	b.args = append(b.args, value)
	b.conds = append(b.conds, fmt.Sprintf(format, len(b.args)))
}

// clause renders the WHERE clause, or an empty string when no conditions
// were added.
func (b *whereBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// next returns the placeholder number for the next appended argument,
// letting callers continue numbering for LIMIT/OFFSET.
func (b *whereBuilder) next() int {
	return len(b.args) + 1
}

// itemFilterWhere compiles a catalog filter into a WHERE clause over the
// items table. prefix qualifies column names in join queries (e.g. "i.").
func itemFilterWhere(f catalog.Filter, now time.Time, prefix string) (*whereBuilder, error) {
	b := &whereBuilder{}

	after, ok, err := f.RegisteredAfter(now)
	if err != nil {
		return nil, err
	}
	if ok {
		b.add(prefix+"created_at >= $%d", after)
	}

	status, ok, err := f.StatusEquals()
	if err != nil {
		return nil, err
	}
	if ok {
		b.add(prefix+"sell_status = $%d", string(status))
	}

	if field, query, ok := f.SearchClause(); ok {
		col := prefix + "item_name"
		if field == catalog.SearchByCreator {
			col = prefix + "created_by"
		}
		b.add(col+" LIKE $%d", "%"+escapeLike(query)+"%")
	}

	return b, nil
}

// escapeLike neutralizes LIKE metacharacters so the search query matches
// literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
