package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/apiserver/types"
)

func TestBuildTaskListQuery(t *testing.T) {
	owner := uuid.MustParse("7f1d7c3c-5a86-4c1e-9a52-1f0f5e6f2f10")

	tests := []struct {
		name     string
		query    types.TaskQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "owner only, newest first",
			query:    types.TaskQuery{OwnerID: owner},
			wantSQL:  "SELECT " + taskColumns + " FROM tasks WHERE user_id = $1 ORDER BY created_at DESC",
			wantArgs: []any{owner},
		},
		{
			name:  "filters and search",
			query: types.TaskQuery{OwnerID: owner, Status: "pending", Priority: "high", Search: "foo"},
			wantSQL: "SELECT " + taskColumns + " FROM tasks WHERE user_id = $1 AND status = $2 AND priority = $3" +
				` AND (title ILIKE $4 ESCAPE '\' OR description ILIKE $4 ESCAPE '\') ORDER BY created_at DESC`,
			wantArgs: []any{owner, "pending", "high", "%foo%"},
		},
		{
			name:  "priority sort",
			query: types.TaskQuery{OwnerID: owner, SortBy: types.SortByPriority},
			wantSQL: "SELECT " + taskColumns + " FROM tasks WHERE user_id = $1" +
				" ORDER BY CASE priority WHEN $2 THEN 1 WHEN $3 THEN 2 WHEN $4 THEN 3 ELSE 4 END ASC, created_at DESC",
			wantArgs: []any{owner, "high", "medium", "low"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildTaskListQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestOrderByRejectsUnknownField(t *testing.T) {
	var b queryBuilder
	_, err := orderByClause(&b, []types.SortKey{{Field: "title"}})
	assert.Error(t, err)
}
