package models

import (
	"context"
	"fmt"
)

type QuestionRepo struct {
	db    Querier
	store *Store
}

func (r *QuestionRepo) bind(qs ...*Question) {
	for _, q := range qs {
		if q != nil {
			q.store = r.store
		}
	}
}

func (r *QuestionRepo) findOne(ctx context.Context, column string, value any) (*Question, error) {
	q, err := queryOne(ctx, r.db, questionMapper,
		`SELECT * FROM `+questionsTable+` WHERE `+column+` = ?`, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find question by %s: %w", column, err)
	}
	r.bind(q)
	return q, nil
}

func (r *QuestionRepo) FindByID(ctx context.Context, id int64) (*Question, error) {
	return r.findOne(ctx, "id", id)
}

// FindByTitle returns the first question with exactly this title.
func (r *QuestionRepo) FindByTitle(ctx context.Context, title string) (*Question, error) {
	return r.findOne(ctx, "title", title)
}

// FindByBody returns the first question with exactly this body.
func (r *QuestionRepo) FindByBody(ctx context.Context, body string) (*Question, error) {
	return r.findOne(ctx, "body", body)
}

func (r *QuestionRepo) FindByAuthorID(ctx context.Context, authorID int64) ([]*Question, error) {
	qs, err := queryAll(ctx, r.db, questionMapper,
		`SELECT * FROM `+questionsTable+` WHERE author_id = ?`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find questions by author_id: %w", err)
	}
	r.bind(qs...)
	return qs, nil
}

// Author returns the user who asked q, or nil if author_id dangles.
func (q *Question) Author(ctx context.Context) (*User, error) {
	if q.store == nil {
		return nil, ErrDetached
	}
	return q.store.Users.FindByID(ctx, q.AuthorID)
}

func (q *Question) Replies(ctx context.Context) ([]*Reply, error) {
	if q.store == nil {
		return nil, ErrDetached
	}
	return q.store.Replies.FindByQuestionID(ctx, q.ID)
}

func (q *Question) Followers(ctx context.Context) ([]*User, error) {
	if q.store == nil {
		return nil, ErrDetached
	}
	return q.store.Follows.FollowersForQuestionID(ctx, q.ID)
}
