package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Jomoregie1/greetingapi/internal/models"
)

const greetingColumns = "greeting_id, message, type, created_at, message_hash"

// dialect renders greetings queries for one SQL engine.
type dialect struct {
	placeholder  func(n int) string
	textMatch    func(ph string) string
	textArg      func(q string) string
	currentMonth string
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	textMatch: func(ph string) string {
		// Must match the expression of idx_greetings_message_fts.
		return "to_tsvector('english', coalesce(message, '')) @@ plainto_tsquery('english', " + ph + ")"
	},
	textArg: func(q string) string { return q },
	currentMonth: "EXTRACT(MONTH FROM created_at) = EXTRACT(MONTH FROM CURRENT_DATE)" +
		" AND EXTRACT(YEAR FROM created_at) = EXTRACT(YEAR FROM CURRENT_DATE)",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	textMatch: func(ph string) string {
		return `message LIKE '%' || ` + ph + ` || '%' ESCAPE '\'`
	},
	textArg:      likeEscaper.Replace,
	currentMonth: "strftime('%Y-%m', created_at) = strftime('%Y-%m', 'now')",
}

// where builds the WHERE clause for f. It returns "" when f has no predicates.
func (d dialect) where(f models.GreetingFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, "type = "+d.placeholder(len(args)))
	}
	if f.Query != "" {
		args = append(args, d.textArg(f.Query))
		conds = append(conds, d.textMatch(d.placeholder(len(args))))
	}
	if f.CurrentMonth {
		conds = append(conds, d.currentMonth)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (d dialect) countQuery(f models.GreetingFilter) (string, []any) {
	where, args := d.where(f)
	return "SELECT COUNT(*) FROM greetings" + where, args
}

func (d dialect) listQuery(f models.GreetingFilter, limit, offset int) (string, []any) {
	where, args := d.where(f)
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM greetings%s ORDER BY greeting_id LIMIT %s OFFSET %s",
		greetingColumns, where, d.placeholder(len(args)-1), d.placeholder(len(args)),
	)
	return query, args
}

func (d dialect) messagesQuery() string {
	return "SELECT message FROM greetings WHERE type = " + d.placeholder(1) + " AND message IS NOT NULL ORDER BY greeting_id"
}

const distinctTypesQuery = "SELECT DISTINCT type FROM greetings WHERE type IS NOT NULL"
