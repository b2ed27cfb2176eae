package models

import (
	"context"
	"fmt"
)

type UserRepo struct {
	db    Querier
	store *Store
}

func (r *UserRepo) bind(u *User) {
	if u != nil {
		u.store = r.store
	}
}

// FindByName matches both names exactly and returns the first user found.
func (r *UserRepo) FindByName(ctx context.Context, fname, lname string) (*User, error) {
	u, err := queryOne(ctx, r.db, userMapper,
		`SELECT * FROM `+usersTable+` WHERE fname = ? AND lname = ?`, fname, lname)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}
	r.bind(u)
	return u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	u, err := queryOne(ctx, r.db, userMapper,
		`SELECT * FROM `+usersTable+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	r.bind(u)
	return u, nil
}

func (u *User) AuthoredQuestions(ctx context.Context) ([]*Question, error) {
	if u.store == nil {
		return nil, ErrDetached
	}
	return u.store.Questions.FindByAuthorID(ctx, u.ID)
}

func (u *User) AuthoredReplies(ctx context.Context) ([]*Reply, error) {
	if u.store == nil {
		return nil, ErrDetached
	}
	return u.store.Replies.FindByUserID(ctx, u.ID)
}

func (u *User) FollowedQuestions(ctx context.Context) ([]*Question, error) {
	if u.store == nil {
		return nil, ErrDetached
	}
	return u.store.Follows.FollowedQuestionsForUserID(ctx, u.ID)
}
