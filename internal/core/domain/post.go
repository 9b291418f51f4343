package domain

import (
	"errors"
	"time"
)

// PostStatus represents the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

var ErrPostNotFound = errors.New("post not found")
var ErrForbidden = errors.New("access forbidden")

// Post is the core content aggregate.
type Post struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Title     string     `json:"title" bson:"title"`
	Slug      string     `json:"slug" bson:"slug"`
	Body      string     `json:"body" bson:"body"`
	Tags      []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	Status    PostStatus `json:"status" bson:"status"`
	AuthorID  string     `json:"author_id" bson:"author_id"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// VisibleTo reports whether the post may be read by the given viewer.
// Published posts are public; drafts are visible only to their author
// and to admins. viewer may be nil (anonymous).
func (p *Post) VisibleTo(viewer *User) bool {
	if p.Status == StatusPublished {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.ID == p.AuthorID || viewer.IsAdmin()
}

// EditableBy reports whether the given user may modify or delete the post.
func (p *Post) EditableBy(u *User) bool {
	if u == nil {
		return false
	}
	return u.ID == p.AuthorID || u.IsAdmin()
}
