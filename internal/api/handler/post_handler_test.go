package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/api/middleware"
	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

type stubPostService struct {
	createFn func(ctx context.Context, in ports.CreatePostInput, author *domain.User) (*domain.Post, error)
	getFn    func(ctx context.Context, id string, viewer *domain.User) (*domain.Post, error)
	listFn   func(ctx context.Context, page, limit int, query, tag string, viewer *domain.User) ([]*domain.Post, int64, error)
	updateFn func(ctx context.Context, id string, in ports.UpdatePostInput, actor *domain.User) (*domain.Post, error)
	deleteFn func(ctx context.Context, id string, actor *domain.User) error
}

func (s *stubPostService) Create(ctx context.Context, in ports.CreatePostInput, author *domain.User) (*domain.Post, error) {
	return s.createFn(ctx, in, author)
}

func (s *stubPostService) Get(ctx context.Context, id string, viewer *domain.User) (*domain.Post, error) {
	return s.getFn(ctx, id, viewer)
}

func (s *stubPostService) List(ctx context.Context, page, limit int, query, tag string, viewer *domain.User) ([]*domain.Post, int64, error) {
	return s.listFn(ctx, page, limit, query, tag, viewer)
}

func (s *stubPostService) Update(ctx context.Context, id string, in ports.UpdatePostInput, actor *domain.User) (*domain.Post, error) {
	return s.updateFn(ctx, id, in, actor)
}

func (s *stubPostService) Delete(ctx context.Context, id string, actor *domain.User) error {
	return s.deleteFn(ctx, id, actor)
}

func TestPostHandler_List_Anonymous(t *testing.T) {
	stub := &stubPostService{
		listFn: func(ctx context.Context, page, limit int, query, tag string, viewer *domain.User) ([]*domain.Post, int64, error) {
			if viewer != nil {
				t.Fatalf("expected anonymous viewer")
			}
			if page != 2 || limit != 5 || query != "go" || tag != "news" {
				t.Fatalf("unexpected args: %d %d %q %q", page, limit, query, tag)
			}
			return []*domain.Post{{ID: "p1", Title: "Hello", Status: domain.StatusPublished}}, 1, nil
		},
	}
	h := NewPostHandler(stub)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodGet, "/v1/posts?page=2&limit=5&q=go&tag=news", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != float64(1) || resp["page"] != float64(2) {
		t.Fatalf("unexpected paging: %+v", resp)
	}
}

func TestPostHandler_List_ClampsOversizedLimit(t *testing.T) {
	stub := &stubPostService{
		listFn: func(ctx context.Context, page, limit int, query, tag string, viewer *domain.User) ([]*domain.Post, int64, error) {
			if limit != 10 {
				t.Fatalf("expected clamped limit 10, got %d", limit)
			}
			return nil, 0, nil
		},
	}
	h := NewPostHandler(stub)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodGet, "/v1/posts?limit=500", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	// The echoed limit must be the one actually applied, never the raw input.
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["limit"] != float64(10) {
		t.Fatalf("response limit %v does not match applied limit", resp["limit"])
	}
}

func TestPostHandler_Create_Success(t *testing.T) {
	ann := &domain.User{ID: "u1", Role: domain.RoleUser}
	stub := &stubPostService{
		createFn: func(ctx context.Context, in ports.CreatePostInput, author *domain.User) (*domain.Post, error) {
			if author != ann {
				t.Fatalf("expected author from context")
			}
			if in.Title != "Hello" || in.Status != "published" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Post{ID: "p1", Title: in.Title, Status: domain.StatusPublished, AuthorID: author.ID}, nil
		},
	}
	h := NewPostHandler(stub)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/posts", strings.NewReader(`{"title":"Hello","body":"b","status":"published"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetUser(c, ann)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestPostHandler_Create_NoIdentity(t *testing.T) {
	h := NewPostHandler(&stubPostService{})

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/posts", strings.NewReader(`{"title":"Hello","body":"b"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestPostHandler_Create_InvalidStatus(t *testing.T) {
	h := NewPostHandler(&stubPostService{
		createFn: func(ctx context.Context, in ports.CreatePostInput, author *domain.User) (*domain.Post, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	})

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/posts", strings.NewReader(`{"title":"Hello","body":"b","status":"archived"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetUser(c, &domain.User{ID: "u1"})

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestPostHandler_Update_Forbidden(t *testing.T) {
	stub := &stubPostService{
		updateFn: func(ctx context.Context, id string, in ports.UpdatePostInput, actor *domain.User) (*domain.Post, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewPostHandler(stub)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPut, "/v1/posts/p1", strings.NewReader(`{"title":"Stolen"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("p1")
	middleware.SetUser(c, &domain.User{ID: "u2"})

	if err := h.Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPostHandler_Delete_Success(t *testing.T) {
	stub := &stubPostService{
		deleteFn: func(ctx context.Context, id string, actor *domain.User) error {
			if id != "p1" || actor.ID != "u1" {
				t.Fatalf("unexpected args: %s %s", id, actor.ID)
			}
			return nil
		},
	}
	h := NewPostHandler(stub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/posts/p1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("p1")
	middleware.SetUser(c, &domain.User{ID: "u1"})

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestPostHandler_Get_NotFound(t *testing.T) {
	stub := &stubPostService{
		getFn: func(ctx context.Context, id string, viewer *domain.User) (*domain.Post, error) {
			return nil, domain.ErrPostNotFound
		},
	}
	h := NewPostHandler(stub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/posts/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Get(c); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
