package store

import (
	"fmt"
	"strings"
)

// Filter holds the optional predicates of a product search. Nil fields are not applied.
type Filter struct {
	Name     *string
	MinPrice *float64
	MaxPrice *float64
}

// where composes the WHERE clause for the active predicates in the fixed order
// name, min price, max price. Placeholders are numbered from $1.
// An empty filter yields an empty clause.
func (f Filter) where() (string, []any) {
	var conditions []string
	var args []any
	argPos := 1

	if f.Name != nil {
		conditions = append(conditions, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, argPos))
		args = append(args, containsPattern(*f.Name))
		argPos++
	}

	if f.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argPos))
		args = append(args, *f.MinPrice)
		argPos++
	}

	if f.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argPos))
		args = append(args, *f.MaxPrice)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into a LIKE pattern matching any value containing s literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
