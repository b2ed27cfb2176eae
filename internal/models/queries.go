package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qaforum/internal/naming"
)

var (
	usersTable     = naming.TableName("User")
	questionsTable = naming.TableName("Question")
	repliesTable   = naming.TableName("Reply")
	followsTable   = naming.TableName("QuestionFollow")
)

// ErrDetached is returned by navigation methods on an entity that was not
// loaded through a Store.
var ErrDetached = errors.New("models: entity is not bound to a store")

// MappingError reports an expected column missing from a result set.
type MappingError struct {
	Table  string
	Column string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("models: %s result has no %q column", e.Table, e.Column)
}

type field struct {
	column string
	dest   any
}

// mapper turns rows of one table into *T by column name.
type mapper[T any] struct {
	table  string
	fields func(v *T) []field
}

// check fails with a *MappingError when cols lacks an expected column.
func (m mapper[T]) check(cols []string) error {
	present := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		present[c] = struct{}{}
	}
	for _, f := range m.fields(new(T)) {
		if _, ok := present[f.column]; !ok {
			return &MappingError{Table: m.table, Column: f.column}
		}
	}
	return nil
}

func (m mapper[T]) scan(rows *sql.Rows, cols []string) (*T, error) {
	v := new(T)
	byColumn := make(map[string]any)
	for _, f := range m.fields(v) {
		byColumn[f.column] = f.dest
	}

	dest := make([]any, len(cols))
	for i, c := range cols {
		if d, ok := byColumn[c]; ok {
			dest[i] = d
			continue
		}
		dest[i] = new(any)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return v, nil
}

// orZero scans a nullable column, storing the zero value for NULL. Schemas
// not created by the embedded migrations may leave these columns nullable.
type orZero[T any] struct{ dst *T }

func (z orZero[T]) Scan(src any) error {
	var n sql.Null[T]
	if err := n.Scan(src); err != nil {
		return err
	}
	*z.dst = n.V
	return nil
}

func nullable[T any](dst *T) orZero[T] { return orZero[T]{dst} }

var (
	userMapper = mapper[User]{
		table: usersTable,
		fields: func(u *User) []field {
			return []field{{"id", &u.ID}, {"fname", nullable(&u.FName)}, {"lname", nullable(&u.LName)}}
		},
	}
	questionMapper = mapper[Question]{
		table: questionsTable,
		fields: func(q *Question) []field {
			return []field{
				{"id", &q.ID},
				{"title", nullable(&q.Title)},
				{"body", nullable(&q.Body)},
				{"author_id", nullable(&q.AuthorID)},
			}
		},
	}
	replyMapper = mapper[Reply]{
		table: repliesTable,
		fields: func(r *Reply) []field {
			return []field{
				{"id", &r.ID},
				{"question_id", nullable(&r.QuestionID)},
				{"parent_id", &r.ParentID},
				{"user_id", nullable(&r.UserID)},
				{"body", nullable(&r.Body)},
			}
		},
	}
	followMapper = mapper[QuestionFollow]{
		table: followsTable,
		fields: func(f *QuestionFollow) []field {
			return []field{{"id", &f.ID}, {"question_id", nullable(&f.QuestionID)}, {"user_id", nullable(&f.UserID)}}
		},
	}
)

// queryAll returns every mapped row, or nil when none match.
func queryAll[T any](ctx context.Context, db Querier, m mapper[T], query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if err := m.check(cols); err != nil {
		return nil, err
	}

	var out []*T
	for rows.Next() {
		v, err := m.scan(rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryOne returns the first mapped row, or nil when none match.
func queryOne[T any](ctx context.Context, db Querier, m mapper[T], query string, args ...any) (*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if err := m.check(cols); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, rows.Err()
	}
	return m.scan(rows, cols)
}

// queryIDs reads a single integer column.
func queryIDs(ctx context.Context, db Querier, query string, args ...any) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
