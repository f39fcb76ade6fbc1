package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/review-manage/",
		Summary:     "List reviews",
		Description: "Returns the reviews attached to a book in the order they were added",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID:   "attachBookReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/review-manage/",
		Summary:       "Add review",
		Description:   "Any authenticated user may review any book",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   huma.Middlewares{s.requireAuth},
	}, s.handleAttachReview)
}

// CreateReviewRequest is the request body for a new review.
type CreateReviewRequest struct {
	_       struct{} `json:"-" additionalProperties:"true"`
	Title   string   `json:"title" minLength:"1" maxLength:"255" doc:"Review title"`
	Content string   `json:"content" minLength:"1" doc:"Review text"`
	Rating  int      `json:"rating" doc:"Rating"`
}

// CreateReviewInput wraps the review request for Huma.
type CreateReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body CreateReviewRequest
}

// ReviewOutput wraps one review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// ListReviewsOutput wraps a review list for Huma.
type ListReviewsOutput struct {
	Body []ReviewResponse
}

func (s *Server) handleListReviews(ctx context.Context, input *BookIDInput) (*ListReviewsOutput, error) {
	actor := currentActor(ctx)

	reviews, err := s.services.Book.ListReviews(ctx, actor, input.ID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		resp[i] = toReviewResponse(r)
	}
	return &ListReviewsOutput{Body: resp}, nil
}

func (s *Server) handleAttachReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	actor := currentActor(ctx)

	review, err := s.services.Book.AttachReview(ctx, actor, input.ID, service.CreateReviewRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
		Rating:  input.Body.Rating,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &ReviewOutput{Body: toReviewResponse(review)}, nil
}
