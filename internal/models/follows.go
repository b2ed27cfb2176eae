package models

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

type QuestionFollowRepo struct {
	db    Querier
	store *Store
}

func (r *QuestionFollowRepo) FindByID(ctx context.Context, id int64) (*QuestionFollow, error) {
	f, err := queryOne(ctx, r.db, followMapper,
		`SELECT * FROM `+followsTable+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find question follow by id: %w", err)
	}
	return f, nil
}

// FollowersForQuestionID returns one user per follow row of the question,
// in follow order.
func (r *QuestionFollowRepo) FollowersForQuestionID(ctx context.Context, questionID int64) ([]*User, error) {
	ids, err := queryIDs(ctx, r.db,
		`SELECT qf.user_id
		 FROM `+usersTable+` AS u
		 JOIN `+followsTable+` AS qf ON u.id = qf.user_id
		 WHERE qf.question_id = ?
		 ORDER BY qf.id`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find followers for question %d: %w", questionID, err)
	}

	var users []*User
	for _, id := range ids {
		u, err := r.store.Users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			users = append(users, u)
		}
	}
	return users, nil
}

// FollowedQuestionsForUserID returns one question per follow row of the user,
// in follow order.
func (r *QuestionFollowRepo) FollowedQuestionsForUserID(ctx context.Context, userID int64) ([]*Question, error) {
	ids, err := queryIDs(ctx, r.db,
		`SELECT qf.question_id
		 FROM `+questionsTable+` AS q
		 JOIN `+followsTable+` AS qf ON q.id = qf.question_id
		 WHERE qf.user_id = ?
		 ORDER BY qf.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find followed questions for user %d: %w", userID, err)
	}

	var questions []*Question
	for _, id := range ids {
		q, err := r.store.Questions.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if q != nil {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// RankedQuestions counts the followers of every question and returns the n
// most followed, highest count first. Equal counts are ordered by ascending
// question id. n <= 0 yields nil; n beyond the question count yields all.
func (r *QuestionFollowRepo) RankedQuestions(ctx context.Context, n int) ([]RankedQuestion, error) {
	if n <= 0 {
		return nil, nil
	}

	ids, err := queryIDs(ctx, r.db, `SELECT id FROM `+questionsTable+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list question ids: %w", err)
	}

	type count struct {
		id        int64
		followers int
	}
	counts := make([]count, 0, len(ids))
	for _, id := range ids {
		followers, err := r.FollowersForQuestionID(ctx, id)
		if err != nil {
			return nil, err
		}
		counts = append(counts, count{id: id, followers: len(followers)})
	}

	slices.SortStableFunc(counts, func(a, b count) int {
		if c := cmp.Compare(b.followers, a.followers); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	if n < len(counts) {
		counts = counts[:n]
	}

	var ranked []RankedQuestion
	for _, c := range counts {
		q, err := r.store.Questions.FindByID(ctx, c.id)
		if err != nil {
			return nil, err
		}
		if q != nil {
			ranked = append(ranked, RankedQuestion{Question: q, Followers: c.followers})
		}
	}
	return ranked, nil
}

// MostFollowedQuestions is RankedQuestions without the counts.
func (r *QuestionFollowRepo) MostFollowedQuestions(ctx context.Context, n int) ([]*Question, error) {
	ranked, err := r.RankedQuestions(ctx, n)
	if err != nil {
		return nil, err
	}

	var questions []*Question
	for _, rq := range ranked {
		questions = append(questions, rq.Question)
	}
	return questions, nil
}
