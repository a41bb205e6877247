package proxy

import (
	"errors"
	"fmt"

	"switchboard-ai/hermes/pkg/proxy/types"
	"switchboard-ai/hermes/pkg/registry"
	"switchboard-ai/hermes/pkg/upstream"
)

// HandleError converts the gateway's error types to OpenAI-compatible
// error responses: routing errors become 400/404, transport failures
// become 502/504, and anything unrecognized becomes a generic 500.
//
// Non-2xx responses that arrive from an upstream are not routed through
// here; handlers relay those bodies and status codes verbatim.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var malformedErr *registry.MalformedModelError
	if errors.As(err, &malformedErr) {
		return types.NewInvalidRequestError(
			fmt.Sprintf("Invalid model %q: expected \"provider/model\"", malformedErr.Model),
			"model",
			types.CodeInvalidValue,
		)
	}

	var unknownErr *registry.UnknownProviderError
	if errors.As(err, &unknownErr) {
		return types.NewNotFoundError(
			fmt.Sprintf("Unknown provider %q", unknownErr.Provider),
			"model",
			types.CodeModelNotFound,
		)
	}

	var timeoutErr *upstream.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.NewGatewayTimeoutError(
			fmt.Sprintf("Provider request timed out: %v", timeoutErr),
		)
	}

	var connectErr *upstream.ConnectError
	if errors.As(err, &connectErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Provider unreachable (%s)", connectErr.Provider),
		)
	}

	var parseErr *upstream.ParseError
	if errors.As(err, &parseErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Failed to parse provider response: %v", parseErr),
		)
	}

	var streamErr *upstream.StreamError
	if errors.As(err, &streamErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Provider stream failed (%s)", streamErr.Provider),
		)
	}

	var providerErr *upstream.ProviderError
	if errors.As(err, &providerErr) {
		return handleProviderError(providerErr)
	}

	return types.NewServerError(
		"An internal error occurred. Please try again later.",
	)
}

// handleProviderError maps an upstream's status code onto the gateway's
// error taxonomy for paths that cannot relay the upstream body directly
// (model listing, health probing).
func handleProviderError(err *upstream.ProviderError) *types.ErrorResponse {
	switch {
	case err.StatusCode >= 500:
		return types.NewBadGatewayError(
			fmt.Sprintf("Provider error (%s): %s", err.Provider, err.Message),
		)
	case err.StatusCode == 429:
		return types.NewErrorResponse(
			fmt.Sprintf("Provider rate limit exceeded (%s)", err.Provider),
			types.ErrorTypeRateLimitExceeded,
			"",
			types.CodeProviderError,
		)
	case err.StatusCode == 401 || err.StatusCode == 403:
		return types.NewErrorResponse(
			fmt.Sprintf("Provider authentication failed (%s)", err.Provider),
			types.ErrorTypeAuthentication,
			"",
			types.CodeProviderError,
		)
	case err.StatusCode == 404:
		return types.NewNotFoundError(
			fmt.Sprintf("Model not found (%s)", err.Provider),
			"model",
			types.CodeModelNotFound,
		)
	case err.StatusCode >= 400:
		return types.NewInvalidRequestError(
			fmt.Sprintf("Invalid request to provider (%s): %s", err.Provider, err.Message),
			"",
			types.CodeInvalidValue,
		)
	default:
		return types.NewServerError(
			fmt.Sprintf("Provider error (%s): %s", err.Provider, err.Message),
		)
	}
}
