package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taskdesk/apiserver/types"
)

const taskColumns = `id, user_id, title, description, status, priority, created_at, updated_at`

// sortColumns whitelists the fields a types.SortKey may name.
var sortColumns = map[string]string{
	types.FieldPriority:  "priority",
	types.FieldCreatedAt: "created_at",
}

type queryBuilder struct {
	args []any
}

func (b *queryBuilder) bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// buildTaskListQuery renders q as a postgres SELECT with positional arguments.
func buildTaskListQuery(q types.TaskQuery) (string, []any, error) {
	var b queryBuilder

	where := []string{"user_id = " + b.bind(q.OwnerID)}
	if q.Status != "" {
		where = append(where, "status = "+b.bind(q.Status))
	}
	if q.Priority != "" {
		where = append(where, "priority = "+b.bind(q.Priority))
	}
	if q.Search != "" {
		pattern := b.bind("%" + escapeLike(q.Search) + "%")
		where = append(where, fmt.Sprintf(`(title ILIKE %[1]s ESCAPE '\' OR description ILIKE %[1]s ESCAPE '\')`, pattern))
	}

	order, err := orderByClause(&b, q.OrderBy())
	if err != nil {
		return "", nil, err
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE " + strings.Join(where, " AND ") + " ORDER BY " + order
	return query, b.args, nil
}

func orderByClause(b *queryBuilder, keys []types.SortKey) (string, error) {
	terms := make([]string, 0, len(keys))
	for _, key := range keys {
		column, ok := sortColumns[key.Field]
		if !ok {
			return "", fmt.Errorf("unsupported sort field %q", key.Field)
		}

		term := column
		if key.Ranks != nil {
			term = rankExpression(b, column, key.Ranks)
		}
		if key.Desc {
			term += " DESC"
		} else {
			term += " ASC"
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, ", "), nil
}

func rankExpression(b *queryBuilder, column string, ranks []string) string {
	var sb strings.Builder
	sb.WriteString("CASE " + column)
	for i, value := range ranks {
		fmt.Fprintf(&sb, " WHEN %s THEN %d", b.bind(value), i+1)
	}
	fmt.Fprintf(&sb, " ELSE %d END", len(ranks)+1)
	return sb.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
