package types

import (
	"strings"

	"github.com/google/uuid"
)

// TaskSort selects the ordering of a task listing.
type TaskSort string

const (
	SortByCreatedAt TaskSort = "createdAt"
	SortByPriority  TaskSort = "priority"
)

// Sortable task fields.
const (
	FieldPriority  = "priority"
	FieldCreatedAt = "created_at"
)

// PriorityRanks lists priorities from first to last in a priority sort.
// Values not listed rank after all of them.
var PriorityRanks = []string{PriorityHigh, PriorityMedium, PriorityLow}

// ParseTaskSort maps the sortBy query value to a TaskSort. Anything other than
// "priority" falls back to newest first.
func ParseTaskSort(raw string) TaskSort {
	if strings.TrimSpace(raw) == string(SortByPriority) {
		return SortByPriority
	}
	return SortByCreatedAt
}

// SortKey is one ordering term. When Ranks is set the field is ordered by the
// position of its value in Ranks (1-based, unknown values last) instead of
// its natural order.
type SortKey struct {
	Field string
	Ranks []string
	Desc  bool
}

// Rank returns the 1-based rank of value in k.Ranks, or len(k.Ranks)+1.
func (k SortKey) Rank(value string) int {
	for i, r := range k.Ranks {
		if r == value {
			return i + 1
		}
	}
	return len(k.Ranks) + 1
}

// PriorityRank returns 1 for high, 2 for medium, 3 for low and 4 otherwise.
func PriorityRank(priority string) int {
	return SortKey{Field: FieldPriority, Ranks: PriorityRanks}.Rank(priority)
}

// TaskQuery holds the filters and sort order used when listing a user's tasks.
// Every non-empty filter is ANDed with the owner constraint; Search matches
// title OR description, case-insensitively.
type TaskQuery struct {
	OwnerID  uuid.UUID
	Status   string
	Priority string
	Search   string
	SortBy   TaskSort
}

// OrderBy returns the ordering terms for the query.
func (q TaskQuery) OrderBy() []SortKey {
	newestFirst := SortKey{Field: FieldCreatedAt, Desc: true}
	if q.SortBy == SortByPriority {
		return []SortKey{
			{Field: FieldPriority, Ranks: PriorityRanks},
			newestFirst,
		}
	}
	return []SortKey{newestFirst}
}

// SearchPattern returns the lower-cased search term, or "" when unset.
func (q TaskQuery) SearchPattern() string {
	return strings.ToLower(q.Search)
}

// Matches reports whether t satisfies the query's filters.
func (q TaskQuery) Matches(t Task) bool {
	if t.UserID != q.OwnerID {
		return false
	}
	if q.Status != "" && t.Status != q.Status {
		return false
	}
	if q.Priority != "" && t.Priority != q.Priority {
		return false
	}
	if q.Search != "" {
		needle := q.SearchPattern()
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// Less reports whether a sorts before b under the query's ordering.
func (q TaskQuery) Less(a, b Task) bool {
	for _, key := range q.OrderBy() {
		c := compareField(key, a, b)
		if c == 0 {
			continue
		}
		if key.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

func compareField(key SortKey, a, b Task) int {
	switch key.Field {
	case FieldPriority:
		if key.Ranks != nil {
			return key.Rank(a.Priority) - key.Rank(b.Priority)
		}
		return strings.Compare(a.Priority, b.Priority)
	case FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return 0
	}
}
