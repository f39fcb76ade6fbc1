package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/http/response"
)

// EnvelopeVersion is sent as "v" in every response body.
const EnvelopeVersion = response.Version

// APIEnvelope wraps successful bodies and uncoded errors.
type APIEnvelope = response.Envelope //nolint:revive // API prefix is intentional for clarity

// APIErrorEnvelope wraps coded errors.
type APIErrorEnvelope = response.ErrorEnvelope //nolint:revive // API prefix is intentional for clarity

// EnvelopeTransformer is a huma transformer that wraps every response body.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case nil:
		return APIEnvelope{Version: EnvelopeVersion, Success: true}, nil
	case *APIError:
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Code:    body.Code,
			Message: body.Message,
			Details: body.Details,
		}, nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Error: body.Error()}, nil
	default:
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: len(status) > 0 && status[0] < '4',
			Data:    v,
		}, nil
	}
}
