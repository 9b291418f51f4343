package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

// PostService implements the content operations with visibility and
// ownership rules applied relative to the caller.
type PostService struct {
	repo   ports.PostRepository
	logger zerolog.Logger
}

func NewPostService(repo ports.PostRepository, logger zerolog.Logger) *PostService {
	return &PostService{repo: repo, logger: logger}
}

// Create stores a new post authored by the given user.
func (s *PostService) Create(ctx context.Context, in ports.CreatePostInput, author *domain.User) (*domain.Post, error) {
	if author == nil {
		return nil, domain.ErrForbidden
	}

	status := domain.PostStatus(in.Status)
	if status == "" {
		status = domain.StatusDraft
	}

	now := time.Now().UTC()
	post := &domain.Post{
		Title:     strings.TrimSpace(in.Title),
		Slug:      slugify(in.Title),
		Body:      in.Body,
		Tags:      in.Tags,
		Status:    status,
		AuthorID:  author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create post")
		return nil, err
	}

	s.logger.Info().Str("post_id", created.ID).Str("author_id", author.ID).Msg("post created")
	return created, nil
}

// Get returns a post by id. Drafts that the viewer may not see are reported
// as not found rather than forbidden, so their existence does not leak.
func (s *PostService) Get(ctx context.Context, id string, viewer *domain.User) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewer) {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

// List returns a page of posts visible to the viewer, optionally filtered by
// a title search and a tag. Paging values are taken as given; the HTTP layer
// clamps them, so the limit echoed back to the client is the one applied.
func (s *PostService) List(ctx context.Context, page, limit int, query, tag string, viewer *domain.User) ([]*domain.Post, int64, error) {
	filter := ports.PostFilter{
		Query: query,
		Tag:   tag,
		Page:  page,
		Limit: limit,
	}
	if viewer != nil {
		if viewer.IsAdmin() {
			filter.IncludeAllDrafts = true
		} else {
			filter.DraftsFor = viewer.ID
		}
	}

	return s.repo.List(ctx, filter)
}

// Update applies the given changes if the actor owns the post or is an admin.
func (s *PostService) Update(ctx context.Context, id string, in ports.UpdatePostInput, actor *domain.User) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.EditableBy(actor) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Body != nil {
		post.Body = *in.Body
	}
	if in.Tags != nil {
		post.Tags = in.Tags
	}
	if in.Status != nil {
		post.Status = domain.PostStatus(*in.Status)
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, post); err != nil {
		s.logger.Error().Err(err).Str("post_id", id).Msg("failed to update post")
		return nil, err
	}
	return post, nil
}

// Delete removes a post if the actor owns it or is an admin.
func (s *PostService) Delete(ctx context.Context, id string, actor *domain.User) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !post.EditableBy(actor) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("post_id", id).Msg("post deleted")
	return nil
}

// slugify derives a URL-safe slug from a title, with a short random suffix
// to keep slugs unique without a store round-trip.
func slugify(title string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%s-%06x", slug, time.Now().UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("%s-%06x", slug, suffix)
}
