package proxy

import (
	"context"
	"errors"
	"net/http"

	"simulateur-hq/relay/pkg/providers"
	"simulateur-hq/relay/pkg/proxy/types"
)

// HandleError converts errors returned before a response was started into
// flat JSON error responses.
//
// Mapping:
//   - *RequestError, *providers.ValidationError: 400 (or the request error status)
//   - *providers.ConfigError: 500 with the missing-configuration message
//   - *providers.TimeoutError: 504
//   - *providers.ProviderError with PassThrough: upstream status and body
//   - everything else: 500 with the upstream status text when known
//
// Example usage:
//
//	if err != nil {
//	    WriteErrorResponse(w, HandleError(err))
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var validationErr *providers.ValidationError
	if errors.As(err, &validationErr) {
		return types.NewInvalidRequestError(validationErr.Message)
	}

	var configErr *providers.ConfigError
	if errors.As(err, &configErr) {
		return types.NewServerError(configErr.Message)
	}

	var timeoutErr *providers.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.NewGatewayTimeoutError(timeoutErr.Message)
	}

	var providerErr *providers.ProviderError
	if errors.As(err, &providerErr) {
		return handleProviderError(providerErr)
	}

	// Network failures, malformed upstream payloads and anything unexpected
	return types.NewServerError(types.MessageRequestFailed)
}

// handleProviderError converts a ProviderError to an error response.
func handleProviderError(err *providers.ProviderError) *types.ErrorResponse {
	if err.PassThrough && err.StatusCode >= 400 && err.StatusCode < 600 {
		message := err.Message
		if message == "" {
			message = http.StatusText(err.StatusCode)
		}
		return types.NewErrorResponse(err.StatusCode, message)
	}
	return types.NewServerError(err.Summary())
}

// IsClientDisconnect reports whether err was caused by the browser going away.
// Nothing can be written in that case.
func IsClientDisconnect(err error) bool {
	return errors.Is(err, context.Canceled)
}
