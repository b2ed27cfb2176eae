package models

// Entities are snapshots of one row at query time. The unexported store is
// set by the finder that loaded the entity and backs its navigation methods.

type User struct {
	ID    int64  `json:"id"`
	FName string `json:"fname"`
	LName string `json:"lname"`

	store *Store
}

type Question struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	AuthorID int64  `json:"author_id"`

	store *Store
}

// Reply belongs to a question; ParentID is nil for a top-level reply.
type Reply struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	ParentID   *int64 `json:"parent_id"`
	UserID     int64  `json:"user_id"`
	Body       string `json:"body"`

	store *Store
}

// QuestionFollow is one user following one question.
type QuestionFollow struct {
	ID         int64 `json:"id"`
	QuestionID int64 `json:"question_id"`
	UserID     int64 `json:"user_id"`
}

// RankedQuestion pairs a question with its follower count.
type RankedQuestion struct {
	Question  *Question `json:"question"`
	Followers int       `json:"followers"`
}
