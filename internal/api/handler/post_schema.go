package handler

import "github.com/inkpress/blog-api/internal/core/domain"

type createPostRequest struct {
	Title  string   `json:"title"  validate:"required,max=200"`
	Body   string   `json:"body"   validate:"required"`
	Tags   []string `json:"tags"   validate:"omitempty,dive,max=40"`
	Status string   `json:"status" validate:"omitempty,oneof=draft published"`
}

type updatePostRequest struct {
	Title  *string  `json:"title"  validate:"omitempty,max=200"`
	Body   *string  `json:"body"`
	Tags   []string `json:"tags"   validate:"omitempty,dive,max=40"`
	Status *string  `json:"status" validate:"omitempty,oneof=draft published"`
}

type postListResponse struct {
	Posts []*domain.Post `json:"posts"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type userListResponse struct {
	Users []*domain.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
