package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"simulateur-hq/relay/pkg/proxy/types"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes a flat {"error": ...} body with its status.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.StatusCode, errResp)
}

// WriteError maps err and writes it. Nothing is written when the client has
// already disconnected.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if IsClientDisconnect(err) && r.Context().Err() != nil {
		return
	}
	_ = WriteErrorResponse(w, HandleError(err))
}

// WriteRaw writes an opaque payload (audio, pass-through JSON) with its
// content type.
func WriteRaw(w http.ResponseWriter, statusCode int, contentType string, body []byte) error {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
