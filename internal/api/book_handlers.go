package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/",
		Summary:     "List books",
		Description: "Returns every book, newest first, with publishers and reviews",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/",
		Summary:       "Create book",
		Description:   "Creates a book owned by the caller. Nested publishers are matched against the caller's own publishers or created.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   huma.Middlewares{s.requireAuth},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/",
		Summary:     "Get book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "patchBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}/",
		Summary:     "Update book",
		Description: "Owner only. Changes the fields present in the body; a publishers key replaces the whole publisher set.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth, s.requireBookOwner},
	}, s.handlePatchBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/",
		Summary:     "Replace book",
		Description: "Owner only. Title, publication date and ISBN are required; publishers are replaced only when present.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth, s.requireBookOwner},
	}, s.handlePutBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}/",
		Summary:       "Delete book",
		Description:   "Owner only. Publishers and reviews are kept.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   huma.Middlewares{s.requireAuth},
	}, s.handleDeleteBook)
}

// === DTOs ===

// PublisherInput is a nested publisher in a book payload.
type PublisherInput struct {
	_       struct{} `json:"-" additionalProperties:"true"`
	Name    string   `json:"name" minLength:"1" maxLength:"255" doc:"Publisher name"`
	Website string   `json:"website" format:"uri" maxLength:"255" doc:"Publisher website"`
	Email   string   `json:"email" format:"email" maxLength:"255" doc:"Publisher contact email"`
}

// CreateBookRequest is the request body for creating a book. Owner keys in
// the payload are accepted and ignored.
type CreateBookRequest struct {
	_               struct{}         `json:"-" additionalProperties:"true"`
	Title           string           `json:"title" minLength:"1" maxLength:"255" doc:"Book title"`
	PublicationDate string           `json:"publication_date" format:"date" doc:"Publication date (YYYY-MM-DD)"`
	ISBN            string           `json:"isbn" minLength:"1" maxLength:"255" doc:"ISBN"`
	Publishers      []PublisherInput `json:"publishers,omitempty" doc:"Publishers to attach"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body    CreateBookRequest
	RawBody []byte
}

// PatchBookRequest is the request body for partial updates.
type PatchBookRequest struct {
	_               struct{}          `json:"-" additionalProperties:"true"`
	Title           *string           `json:"title,omitempty" minLength:"1" maxLength:"255" doc:"Book title"`
	PublicationDate *string           `json:"publication_date,omitempty" format:"date" doc:"Publication date (YYYY-MM-DD)"`
	ISBN            *string           `json:"isbn,omitempty" minLength:"1" maxLength:"255" doc:"ISBN"`
	Publishers      *[]PublisherInput `json:"publishers,omitempty" doc:"Replacement publisher set; [] detaches all"`
}

// PatchBookInput wraps the partial update for Huma.
type PatchBookInput struct {
	ID      string `path:"id" doc:"Book ID"`
	Body    PatchBookRequest
	RawBody []byte
}

// PutBookRequest is the request body for full updates.
type PutBookRequest struct {
	_               struct{}          `json:"-" additionalProperties:"true"`
	Title           string            `json:"title" minLength:"1" maxLength:"255" doc:"Book title"`
	PublicationDate string            `json:"publication_date" format:"date" doc:"Publication date (YYYY-MM-DD)"`
	ISBN            string            `json:"isbn" minLength:"1" maxLength:"255" doc:"ISBN"`
	Publishers      *[]PublisherInput `json:"publishers,omitempty" doc:"Replacement publisher set; omitted leaves it unchanged"`
}

// PutBookInput wraps the full update for Huma.
type PutBookInput struct {
	ID      string `path:"id" doc:"Book ID"`
	Body    PutBookRequest
	RawBody []byte
}

// Resolve rejects an explicit null publisher list; omit the key to leave
// publishers untouched or send [] to clear them.
func (i *CreateBookInput) Resolve(huma.Context) []error { return rejectNullPublishers(i.RawBody) }

// Resolve rejects an explicit null publisher list.
func (i *PatchBookInput) Resolve(huma.Context) []error { return rejectNullPublishers(i.RawBody) }

// Resolve rejects an explicit null publisher list.
func (i *PutBookInput) Resolve(huma.Context) []error { return rejectNullPublishers(i.RawBody) }

func rejectNullPublishers(raw []byte) []error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	if v, ok := fields["publishers"]; ok && string(v) == "null" {
		return []error{&huma.ErrorDetail{
			Location: "body.publishers",
			Message:  "may not be null",
		}}
	}
	return nil
}

// BookIDInput identifies one book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// PublisherResponse contains publisher data in API responses.
type PublisherResponse struct {
	ID      string `json:"id" doc:"Publisher ID"`
	Name    string `json:"name" doc:"Publisher name"`
	Website string `json:"website" doc:"Publisher website"`
	Email   string `json:"email" doc:"Publisher contact email"`
}

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID        string    `json:"id" doc:"Review ID"`
	Title     string    `json:"title" doc:"Review title"`
	Content   string    `json:"content" doc:"Review text"`
	Rating    int       `json:"rating" doc:"Rating"`
	Author    string    `json:"author" doc:"Author user ID"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID              string              `json:"id" doc:"Book ID"`
	Title           string              `json:"title" doc:"Book title"`
	PublicationDate string              `json:"publication_date" doc:"Publication date (YYYY-MM-DD)"`
	ISBN            string              `json:"isbn" doc:"ISBN"`
	Owner           string              `json:"owner" doc:"Owner user ID"`
	Publishers      []PublisherResponse `json:"publishers" doc:"Attached publishers"`
	Reviews         []ReviewResponse    `json:"reviews" doc:"Attached reviews"`
	CreatedAt       time.Time           `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time           `json:"updated_at" doc:"Last update time"`
}

// BookOutput wraps one book for Huma.
type BookOutput struct {
	Body BookResponse
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body []BookResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	actor := currentActor(ctx)

	books, err := s.services.Book.List(ctx, actor)
	if err != nil {
		return nil, mapError(err)
	}

	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = toBookResponse(b)
	}
	return &ListBooksOutput{Body: resp}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	actor := currentActor(ctx)

	book, err := s.services.Book.Create(ctx, actor, service.CreateBookRequest{
		Title:           input.Body.Title,
		PublicationDate: input.Body.PublicationDate,
		ISBN:            input.Body.ISBN,
		Publishers:      toPublisherAttrs(input.Body.Publishers),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	actor := currentActor(ctx)

	book, err := s.services.Book.Get(ctx, actor, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handlePatchBook(ctx context.Context, input *PatchBookInput) (*BookOutput, error) {
	req := service.UpdateBookRequest{
		Title:           input.Body.Title,
		PublicationDate: input.Body.PublicationDate,
		ISBN:            input.Body.ISBN,
	}
	if input.Body.Publishers != nil {
		attrs := toPublisherAttrs(*input.Body.Publishers)
		req.Publishers = &attrs
	}
	return s.updateBook(ctx, input.ID, req)
}

func (s *Server) handlePutBook(ctx context.Context, input *PutBookInput) (*BookOutput, error) {
	req := service.UpdateBookRequest{
		Title:           &input.Body.Title,
		PublicationDate: &input.Body.PublicationDate,
		ISBN:            &input.Body.ISBN,
	}
	if input.Body.Publishers != nil {
		attrs := toPublisherAttrs(*input.Body.Publishers)
		req.Publishers = &attrs
	}
	return s.updateBook(ctx, input.ID, req)
}

func (s *Server) updateBook(ctx context.Context, bookID string, req service.UpdateBookRequest) (*BookOutput, error) {
	book, err := s.services.Book.Update(ctx, currentActor(ctx), bookID, req)
	if err != nil {
		return nil, mapError(err)
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	actor := currentActor(ctx)

	if err := s.services.Book.Delete(ctx, actor, input.ID); err != nil {
		return nil, mapError(err)
	}
	return nil, nil
}

// === Mapping ===

// toPublisherAttrs keeps nil for a nil input so "absent" and "empty" stay distinct.
func toPublisherAttrs(in []PublisherInput) []domain.PublisherAttrs {
	if in == nil {
		return nil
	}
	out := make([]domain.PublisherAttrs, len(in))
	for i, p := range in {
		out[i] = domain.PublisherAttrs{Name: p.Name, Website: p.Website, Email: p.Email}
	}
	return out
}

func toPublisherResponse(p *domain.Publisher) PublisherResponse {
	return PublisherResponse{
		ID:      p.ID,
		Name:    p.Name,
		Website: p.Website,
		Email:   p.Email,
	}
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Rating:    r.Rating,
		Author:    r.AuthorID,
		CreatedAt: r.CreatedAt,
	}
}

func toBookResponse(b *domain.Book) BookResponse {
	resp := BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		PublicationDate: b.PublicationDate,
		ISBN:            b.ISBN,
		Owner:           b.OwnerID,
		Publishers:      make([]PublisherResponse, len(b.Publishers)),
		Reviews:         make([]ReviewResponse, len(b.Reviews)),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	for i, p := range b.Publishers {
		resp.Publishers[i] = toPublisherResponse(p)
	}
	for i, r := range b.Reviews {
		resp.Reviews[i] = toReviewResponse(r)
	}
	return resp
}
