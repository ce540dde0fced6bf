package domain

import "time"

type Story struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author"`
	Title     string    `json:"title"`
	Text      string    `json:"text,omitempty"`
	Images    []string  `json:"images,omitempty"`
	Private   bool      `json:"private"`
	Status    Lifecycle `json:"-"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (s Story) OwnerID() string { return s.AuthorID }

func (s Story) IsPrivate() bool { return s.Private }

type Comment struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"story"`
	AuthorID  string    `json:"author"`
	Body      string    `json:"comment"`
	Rating    int       `json:"rating"`
	Status    Lifecycle `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (c Comment) OwnerID() string { return c.AuthorID }

// CommentView is a comment joined with its author's public summary, the shape
// returned by story comment listings.
type CommentView struct {
	Comment
	Author UserSummary `json:"authorInfo"`
}

// StoryView is a story with its comments populated. The association is
// derived at read time, never stored on the story itself.
type StoryView struct {
	Story
	Comments []CommentView `json:"comments"`
}
