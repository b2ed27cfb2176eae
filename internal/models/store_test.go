package models

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"qaforum/internal/config"
	"qaforum/internal/db"
)

// Fixture summary:
//
//	users      1 Ned Ryerson, 2 Jan Itor, 3 Kush Patel, 4 Quiet Lurker
//	questions  1,2 by Ned; 3,7 by Jan; 5 by Kush; 6 by missing user 99
//	follows    q1: 1,2,3   q3: 3,3 (+ missing user 99)   q5: 1,2
//	replies    q1: 10 <- 11 <- 13, 10 <- 12   q3: 14   q5: 15 (parent 99 missing)
var fixtures = []string{
	`INSERT INTO users (id, fname, lname) VALUES
		(1, 'Ned', 'Ryerson'),
		(2, 'Jan', 'Itor'),
		(3, 'Kush', 'Patel'),
		(4, 'Quiet', 'Lurker')`,
	`INSERT INTO questions (id, title, body, author_id) VALUES
		(1, 'Ned Question', 'NED NED NED', 1),
		(2, 'Ned Second Question', 'MORE NED', 1),
		(3, 'Jan Question', 'JAN JAN JAN', 2),
		(5, 'Kush Question', 'KUSH KUSH', 3),
		(6, 'Orphan Question', 'who wrote this', 99),
		(7, 'Ned Question', 'same title, different body', 2)`,
	`INSERT INTO question_follows (id, question_id, user_id) VALUES
		(1, 5, 1),
		(2, 5, 2),
		(3, 1, 1),
		(4, 1, 2),
		(5, 1, 3),
		(6, 3, 3),
		(7, 3, 99),
		(8, 3, 3)`,
	`INSERT INTO replies (id, question_id, parent_id, user_id, body) VALUES
		(10, 1, NULL, 2, 'top level'),
		(11, 1, 10, 3, 'child of 10'),
		(12, 1, 10, 1, 'another child of 10'),
		(13, 1, 11, 2, 'grandchild'),
		(14, 3, NULL, 1, 'answer to jan'),
		(15, 5, 99, 1, 'parent went missing')`,
}

func openTestHandle(t *testing.T) *db.Handle {
	t.Helper()
	h, err := db.Open(context.Background(), config.DatabaseConfig{
		Driver:  "sqlite3",
		DSN:     filepath.Join(t.TempDir(), "test.db"),
		Migrate: true,
	})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	h := openTestHandle(t)
	for _, stmt := range fixtures {
		if _, err := h.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return NewStore(h)
}

func collectIDs[T any](items []*T, id func(*T) int64) []int64 {
	var out []int64
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func questionIDs(qs []*Question) []int64 { return collectIDs(qs, func(q *Question) int64 { return q.ID }) }
func replyIDs(rs []*Reply) []int64       { return collectIDs(rs, func(r *Reply) int64 { return r.ID }) }
func userIDs(us []*User) []int64         { return collectIDs(us, func(u *User) int64 { return u.ID }) }

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// failingQuerier lets the first n queries through and fails the rest.
type failingQuerier struct {
	Querier
	n     int
	calls int
}

var errInjected = errors.New("injected query failure")

func (f *failingQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	f.calls++
	if f.calls > f.n {
		return nil, errInjected
	}
	return f.Querier.QueryContext(ctx, query, args...)
}

func TestNewStore_WiresRepositories(t *testing.T) {
	s := NewStore(nil)
	if s.Questions == nil || s.Replies == nil || s.Users == nil || s.Follows == nil {
		t.Fatal("expected every repository to be set")
	}
	if s.Questions.store != s || s.Follows.store != s {
		t.Error("repositories should point back to their store")
	}
}

func TestFinders_AbsentIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{0, 4, 999, -1} {
		q, err := s.Questions.FindByID(ctx, id)
		if err != nil || q != nil {
			t.Errorf("Questions.FindByID(%d) = %v, %v; want nil, nil", id, q, err)
		}
	}
	for _, id := range []int64{0, 5, 999} {
		u, err := s.Users.FindByID(ctx, id)
		if err != nil || u != nil {
			t.Errorf("Users.FindByID(%d) = %v, %v; want nil, nil", id, u, err)
		}
	}
	for _, id := range []int64{0, 1, 999} {
		r, err := s.Replies.FindByID(ctx, id)
		if err != nil || r != nil {
			t.Errorf("Replies.FindByID(%d) = %v, %v; want nil, nil", id, r, err)
		}
	}
	for _, id := range []int64{0, 9} {
		f, err := s.Follows.FindByID(ctx, id)
		if err != nil || f != nil {
			t.Errorf("Follows.FindByID(%d) = %v, %v; want nil, nil", id, f, err)
		}
	}
}

func TestFinders_QueryFailurePropagates(t *testing.T) {
	h := openTestHandle(t)
	s := NewStore(h)
	h.Close()

	if _, err := s.Questions.FindByID(context.Background(), 1); err == nil {
		t.Error("expected error from a closed handle")
	}
	if _, err := s.Replies.FindAll(context.Background()); err == nil {
		t.Error("expected error from a closed handle")
	}
}

func TestNavigation_Detached(t *testing.T) {
	ctx := context.Background()

	checks := []struct {
		name string
		call func() error
	}{
		{"Question.Author", func() error { _, err := (&Question{}).Author(ctx); return err }},
		{"Question.Replies", func() error { _, err := (&Question{}).Replies(ctx); return err }},
		{"Question.Followers", func() error { _, err := (&Question{}).Followers(ctx); return err }},
		{"Reply.Author", func() error { _, err := (&Reply{}).Author(ctx); return err }},
		{"Reply.Question", func() error { _, err := (&Reply{}).Question(ctx); return err }},
		{"Reply.ParentReply", func() error { _, err := (&Reply{}).ParentReply(ctx); return err }},
		{"Reply.ChildReplies", func() error { _, err := (&Reply{}).ChildReplies(ctx); return err }},
		{"User.AuthoredQuestions", func() error { _, err := (&User{}).AuthoredQuestions(ctx); return err }},
		{"User.AuthoredReplies", func() error { _, err := (&User{}).AuthoredReplies(ctx); return err }},
		{"User.FollowedQuestions", func() error { _, err := (&User{}).FollowedQuestions(ctx); return err }},
	}

	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if err := c.call(); !errors.Is(err, ErrDetached) {
				t.Errorf("err = %v, want ErrDetached", err)
			}
		})
	}
}
