package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/validation"
)

type testPublisher struct {
	Name    string `json:"name" validate:"required,max=255"`
	Website string `json:"website" validate:"required,url"`
	Email   string `json:"email,omitempty" validate:"required,email"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(testPublisher{
		Name:    "Acme",
		Website: "https://acme.example.com",
		Email:   "books@acme.example.com",
	})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       testPublisher
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing name",
			req:       testPublisher{Website: "https://acme.example.com", Email: "a@acme.example.com"},
			wantField: "name",
			wantMsg:   "is required",
		},
		{
			name:      "bad website",
			req:       testPublisher{Name: "Acme", Website: "not a url", Email: "a@acme.example.com"},
			wantField: "website",
			wantMsg:   "must be a valid URL",
		},
		{
			name:      "bad email uses json name without options",
			req:       testPublisher{Name: "Acme", Website: "https://acme.example.com", Email: "nope"},
			wantField: "email",
			wantMsg:   "must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}
