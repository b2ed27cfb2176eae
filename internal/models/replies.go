package models

import (
	"context"
	"fmt"
)

type ReplyRepo struct {
	db    Querier
	store *Store
}

func (r *ReplyRepo) bind(rs ...*Reply) {
	for _, reply := range rs {
		if reply != nil {
			reply.store = r.store
		}
	}
}

func (r *ReplyRepo) findAll(ctx context.Context, where string, args ...any) ([]*Reply, error) {
	query := `SELECT * FROM ` + repliesTable
	if where != "" {
		query += ` WHERE ` + where
	}
	rs, err := queryAll(ctx, r.db, replyMapper, query, args...)
	if err != nil {
		return nil, err
	}
	r.bind(rs...)
	return rs, nil
}

func (r *ReplyRepo) FindAll(ctx context.Context) ([]*Reply, error) {
	rs, err := r.findAll(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return rs, nil
}

func (r *ReplyRepo) FindByID(ctx context.Context, id int64) (*Reply, error) {
	reply, err := queryOne(ctx, r.db, replyMapper,
		`SELECT * FROM `+repliesTable+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find reply by id: %w", err)
	}
	r.bind(reply)
	return reply, nil
}

func (r *ReplyRepo) FindByUserID(ctx context.Context, userID int64) ([]*Reply, error) {
	rs, err := r.findAll(ctx, "user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find replies by user_id: %w", err)
	}
	return rs, nil
}

func (r *ReplyRepo) FindByQuestionID(ctx context.Context, questionID int64) ([]*Reply, error) {
	rs, err := r.findAll(ctx, "question_id = ?", questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find replies by question_id: %w", err)
	}
	return rs, nil
}

func (reply *Reply) Author(ctx context.Context) (*User, error) {
	if reply.store == nil {
		return nil, ErrDetached
	}
	return reply.store.Users.FindByID(ctx, reply.UserID)
}

func (reply *Reply) Question(ctx context.Context) (*Question, error) {
	if reply.store == nil {
		return nil, ErrDetached
	}
	return reply.store.Questions.FindByID(ctx, reply.QuestionID)
}

// ParentReply returns nil for a top-level reply without querying.
func (reply *Reply) ParentReply(ctx context.Context) (*Reply, error) {
	if reply.store == nil {
		return nil, ErrDetached
	}
	if reply.ParentID == nil {
		return nil, nil
	}
	return reply.store.Replies.FindByID(ctx, *reply.ParentID)
}

// ChildReplies scans every reply and keeps those whose parent is reply.
// The cost grows with the whole replies table, not with the answer.
// TODO: replace the scan with a parent_id query once replies.parent_id is indexed.
func (reply *Reply) ChildReplies(ctx context.Context) ([]*Reply, error) {
	if reply.store == nil {
		return nil, ErrDetached
	}
	all, err := reply.store.Replies.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var children []*Reply
	for _, r := range all {
		if r.ParentID != nil && *r.ParentID == reply.ID {
			children = append(children, r)
		}
	}
	return children, nil
}
