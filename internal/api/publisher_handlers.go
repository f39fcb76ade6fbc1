package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

func (s *Server) registerPublisherRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPublishers",
		Method:      http.MethodGet,
		Path:        "/api/v1/publishers/",
		Summary:     "List publishers",
		Description: "Returns the caller's own publishers, newest first",
		Tags:        []string{"Publishers"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleListPublishers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPublisher",
		Method:        http.MethodPost,
		Path:          "/api/v1/publishers/",
		Summary:       "Create publisher",
		Description:   "Fails with 409 when the caller already has a publisher with the same name, website and email",
		Tags:          []string{"Publishers"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   huma.Middlewares{s.requireAuth},
	}, s.handleCreatePublisher)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublisher",
		Method:      http.MethodGet,
		Path:        "/api/v1/publishers/{id}/",
		Summary:     "Get publisher",
		Tags:        []string{"Publishers"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleGetPublisher)

	huma.Register(s.api, huma.Operation{
		OperationID: "patchPublisher",
		Method:      http.MethodPatch,
		Path:        "/api/v1/publishers/{id}/",
		Summary:     "Update publisher",
		Tags:        []string{"Publishers"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth, s.requirePublisherOwner},
	}, s.handlePatchPublisher)

	huma.Register(s.api, huma.Operation{
		OperationID: "replacePublisher",
		Method:      http.MethodPut,
		Path:        "/api/v1/publishers/{id}/",
		Summary:     "Replace publisher",
		Tags:        []string{"Publishers"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: huma.Middlewares{s.requireAuth, s.requirePublisherOwner},
	}, s.handlePutPublisher)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePublisher",
		Method:        http.MethodDelete,
		Path:          "/api/v1/publishers/{id}/",
		Summary:       "Delete publisher",
		Description:   "Detaches the publisher from every book and removes it",
		Tags:          []string{"Publishers"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   huma.Middlewares{s.requireAuth},
	}, s.handleDeletePublisher)
}

// === DTOs ===

// CreatePublisherInput wraps a new publisher for Huma.
type CreatePublisherInput struct {
	Body PublisherInput
}

// PatchPublisherRequest is the request body for partial publisher updates.
type PatchPublisherRequest struct {
	_       struct{} `json:"-" additionalProperties:"true"`
	Name    *string  `json:"name,omitempty" minLength:"1" maxLength:"255" doc:"Publisher name"`
	Website *string  `json:"website,omitempty" format:"uri" maxLength:"255" doc:"Publisher website"`
	Email   *string  `json:"email,omitempty" format:"email" maxLength:"255" doc:"Publisher contact email"`
}

// PatchPublisherInput wraps the partial update for Huma.
type PatchPublisherInput struct {
	ID   string `path:"id" doc:"Publisher ID"`
	Body PatchPublisherRequest
}

// PutPublisherInput wraps the full update for Huma.
type PutPublisherInput struct {
	ID   string `path:"id" doc:"Publisher ID"`
	Body PublisherInput
}

// PublisherIDInput identifies one publisher.
type PublisherIDInput struct {
	ID string `path:"id" doc:"Publisher ID"`
}

// PublisherOutput wraps one publisher for Huma.
type PublisherOutput struct {
	Body PublisherResponse
}

// ListPublishersOutput wraps a publisher list for Huma.
type ListPublishersOutput struct {
	Body []PublisherResponse
}

// === Handlers ===

func (s *Server) handleListPublishers(ctx context.Context, _ *struct{}) (*ListPublishersOutput, error) {
	actor := currentActor(ctx)

	publishers, err := s.services.Publisher.List(ctx, actor)
	if err != nil {
		return nil, mapError(err)
	}

	resp := make([]PublisherResponse, len(publishers))
	for i, p := range publishers {
		resp[i] = toPublisherResponse(p)
	}
	return &ListPublishersOutput{Body: resp}, nil
}

func (s *Server) handleCreatePublisher(ctx context.Context, input *CreatePublisherInput) (*PublisherOutput, error) {
	actor := currentActor(ctx)

	publisher, err := s.services.Publisher.Create(ctx, actor, domain.PublisherAttrs{
		Name:    input.Body.Name,
		Website: input.Body.Website,
		Email:   input.Body.Email,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &PublisherOutput{Body: toPublisherResponse(publisher)}, nil
}

func (s *Server) handleGetPublisher(ctx context.Context, input *PublisherIDInput) (*PublisherOutput, error) {
	actor := currentActor(ctx)

	publisher, err := s.services.Publisher.Get(ctx, actor, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return &PublisherOutput{Body: toPublisherResponse(publisher)}, nil
}

func (s *Server) handlePatchPublisher(ctx context.Context, input *PatchPublisherInput) (*PublisherOutput, error) {
	return s.updatePublisher(ctx, input.ID, service.UpdatePublisherRequest{
		Name:    input.Body.Name,
		Website: input.Body.Website,
		Email:   input.Body.Email,
	})
}

func (s *Server) handlePutPublisher(ctx context.Context, input *PutPublisherInput) (*PublisherOutput, error) {
	return s.updatePublisher(ctx, input.ID, service.UpdatePublisherRequest{
		Name:    &input.Body.Name,
		Website: &input.Body.Website,
		Email:   &input.Body.Email,
	})
}

func (s *Server) updatePublisher(ctx context.Context, publisherID string, req service.UpdatePublisherRequest) (*PublisherOutput, error) {
	publisher, err := s.services.Publisher.Update(ctx, currentActor(ctx), publisherID, req)
	if err != nil {
		return nil, mapError(err)
	}
	return &PublisherOutput{Body: toPublisherResponse(publisher)}, nil
}

func (s *Server) handleDeletePublisher(ctx context.Context, input *PublisherIDInput) (*struct{}, error) {
	actor := currentActor(ctx)

	if err := s.services.Publisher.Delete(ctx, actor, input.ID); err != nil {
		return nil, mapError(err)
	}
	return nil, nil
}
