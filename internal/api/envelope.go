package api

import (
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the current response envelope version. Clients check
// it before reading data.
const EnvelopeVersion = 1

// APIEnvelope wraps every /api response body.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int        `json:"v"`
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error part of a failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies in
// an APIEnvelope. Routes outside /api (health, docs) are left as they are.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	if ctx != nil {
		u := ctx.URL()
		if !strings.HasPrefix(u.Path, "/api/") {
			return v, nil
		}
	}

	switch body := v.(type) {
	case APIEnvelope:
		return body, nil
	case *APIError:
		return APIEnvelope{
			Version: EnvelopeVersion,
			Error: &ErrorBody{
				Code:    body.Code,
				Message: body.Message,
				Details: body.Details,
			},
		}, nil
	case error:
		return APIEnvelope{
			Version: EnvelopeVersion,
			Error: &ErrorBody{
				Code:    statusToCode(statusCode(status)),
				Message: body.Error(),
			},
		}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: !strings.HasPrefix(status, "4") && !strings.HasPrefix(status, "5"),
		Data:    v,
	}, nil
}

func statusCode(status string) int {
	n, _ := strconv.Atoi(status)
	return n
}
