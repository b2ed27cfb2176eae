// Package models maps the forum tables to entities and provides read-only
// repositories over them.
//
// Single-row finders return (nil, nil) when nothing matches. Collection
// finders return a nil slice when nothing matches; absent and empty are the
// same result. Errors are reserved for failed queries and unmappable rows.
package models

import (
	"context"
	"database/sql"
)

// Querier is the part of db.Handle the repositories need.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store groups the repositories sharing one Querier.
type Store struct {
	Questions *QuestionRepo
	Replies   *ReplyRepo
	Users     *UserRepo
	Follows   *QuestionFollowRepo
}

func NewStore(db Querier) *Store {
	s := &Store{}
	s.Questions = &QuestionRepo{db: db, store: s}
	s.Replies = &ReplyRepo{db: db, store: s}
	s.Users = &UserRepo{db: db, store: s}
	s.Follows = &QuestionFollowRepo{db: db, store: s}
	return s
}
