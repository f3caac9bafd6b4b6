package pg

import (
	"fmt"
	"strings"

	"github.com/postboard-dev/postboard/backend/internal/query"
	sharedpg "github.com/postboard-dev/postboard/shared/storage/pg"
)

const postColumns = `id, title, content, author_id, category_id, tags, view_count, featured_image, created_at, updated_at`

const postOrder = ` ORDER BY created_at DESC, id DESC`

// whereClause translates a filter into a WHERE clause with $n placeholders
// starting at 1. The search term is matched literally.
func whereClause(f query.Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, sharedpg.ContainsPattern(f.Search))
		n := len(args)
		cond := fmt.Sprintf(`title ILIKE $%d ESCAPE '\' OR content ILIKE $%d ESCAPE '\'`, n, n)
		if f.IncludeTags {
			cond += fmt.Sprintf(` OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $%d ESCAPE '\')`, n)
		}
		conds = append(conds, "("+cond+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// listQuery returns the count query and the page query with their args.
func listQuery(f query.Filter, page query.Page) (count string, countArgs []any, items string, itemArgs []any) {
	where, args := whereClause(f)
	n := len(args)
	count = "SELECT COUNT(*) FROM posts" + where
	items = fmt.Sprintf("SELECT %s FROM posts%s%s LIMIT $%d OFFSET $%d", postColumns, where, postOrder, n+1, n+2)
	itemArgs = append(append([]any(nil), args...), page.Limit, page.Skip())
	return count, args, items, itemArgs
}

func searchQuery(f query.Filter, limit int) (string, []any) {
	where, args := whereClause(f)
	return fmt.Sprintf("SELECT %s FROM posts%s%s LIMIT $%d", postColumns, where, postOrder, len(args)+1), append(args, limit)
}
