// Package mw provides middleware and registration helpers for the sunmindd HTTP API.
package mw

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// SecurityScheme is the name of the security scheme used in OpenAPI.
const SecurityScheme = "apiKeyAuth"

// OperationOption is a function that modifies a Huma operation.
type OperationOption func(*huma.Operation)

// WithTags adds tags to the operation.
func WithTags(tags ...string) OperationOption {
	return func(op *huma.Operation) {
		op.Tags = append(op.Tags, tags...)
	}
}

// WithSummary sets the operation summary.
func WithSummary(summary string) OperationOption {
	return func(op *huma.Operation) {
		op.Summary = summary
	}
}

// WithDescription sets the operation description.
func WithDescription(desc string) OperationOption {
	return func(op *huma.Operation) {
		op.Description = desc
	}
}

// WithOperationID sets a custom operation ID.
func WithOperationID(id string) OperationOption {
	return func(op *huma.Operation) {
		op.OperationID = id
	}
}

// WithDefaultStatus sets the status code of a successful response, e.g.
// 202 for connect or 204 for deletes.
func WithDefaultStatus(status int) OperationOption {
	return func(op *huma.Operation) {
		op.DefaultStatus = status
	}
}

// withHidden keeps the operation out of the OpenAPI document.
func withHidden() OperationOption {
	return func(op *huma.Operation) {
		op.Hidden = true
	}
}

// protected marks the operation as requiring the agent API token. HumaAuth
// enforces it; operations without it pass through.
func protected() OperationOption {
	return func(op *huma.Operation) {
		op.Security = []map[string][]string{{SecurityScheme: {}}}
	}
}

func register[I, O any](api huma.API, method, path string, handler func(ctx context.Context, input *I) (*O, error), opts []OperationOption) {
	op := huma.Operation{
		Method: method,
		Path:   path,
	}
	for _, opt := range opts {
		opt(&op)
	}
	huma.Register(api, op, handler)
}

// PublicGet registers a public GET endpoint (no auth required).
func PublicGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, http.MethodGet, path, handler, opts)
}

// HiddenGet registers a public GET endpoint that won't appear in the
// OpenAPI document. Used for probes such as /healthz.
func HiddenGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error)) {
	register(api, http.MethodGet, path, handler, []OperationOption{withHidden()})
}

// ProtectedGet registers a GET endpoint that requires the API token.
func ProtectedGet[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, http.MethodGet, path, handler, append([]OperationOption{protected()}, opts...))
}

// ProtectedPost registers a POST endpoint that requires the API token.
func ProtectedPost[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, http.MethodPost, path, handler, append([]OperationOption{protected()}, opts...))
}

// ProtectedPut registers a PUT endpoint that requires the API token.
func ProtectedPut[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, http.MethodPut, path, handler, append([]OperationOption{protected()}, opts...))
}

// ProtectedDelete registers a DELETE endpoint that requires the API token.
func ProtectedDelete[I, O any](api huma.API, path string, handler func(ctx context.Context, input *I) (*O, error), opts ...OperationOption) {
	register(api, http.MethodDelete, path, handler, append([]OperationOption{protected()}, opts...))
}
