package ports

import (
	"context"

	"github.com/inkpress/blog-api/internal/core/domain"
)

// CreatePostInput carries the fields a caller may set when creating a post.
type CreatePostInput struct {
	Title  string
	Body   string
	Tags   []string
	Status string
}

// UpdatePostInput carries the mutable fields of a post. Nil pointers mean
// "leave unchanged".
type UpdatePostInput struct {
	Title  *string
	Body   *string
	Tags   []string
	Status *string
}

// PostFilter narrows a post listing. DraftsFor restricts draft visibility to
// the given author id; IncludeAllDrafts overrides it for admin viewers.
type PostFilter struct {
	Query            string
	Tag              string
	DraftsFor        string
	IncludeAllDrafts bool
	Page             int
	Limit            int
}

// PostRepository defines the persistence interface for posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PostFilter) ([]*domain.Post, int64, error)
}

// PostService exposes the content operations, with visibility and ownership
// rules applied relative to the (possibly nil) viewer.
type PostService interface {
	Create(ctx context.Context, in CreatePostInput, author *domain.User) (*domain.Post, error)
	Get(ctx context.Context, id string, viewer *domain.User) (*domain.Post, error)
	List(ctx context.Context, page, limit int, query, tag string, viewer *domain.User) ([]*domain.Post, int64, error)
	Update(ctx context.Context, id string, in UpdatePostInput, actor *domain.User) (*domain.Post, error)
	Delete(ctx context.Context, id string, actor *domain.User) error
}
