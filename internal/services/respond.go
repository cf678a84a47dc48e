package services

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/neuralblades/platinum-V1-sub000/internal/config"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

// Envelope is the JSON response shape shared by every route.
type Envelope map[string]interface{}

// WriteJSON writes an envelope with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[HTTP] Failed to encode response: %v", err)
	}
}

// WriteData writes a success envelope: {success:true, data:...}.
func WriteData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{"success": true, "data": data})
}

// WriteMessage writes a success envelope with only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{"success": true, "message": message})
}

// WriteError maps an error to the taxonomy envelope. The underlying
// error detail is only exposed in debug mode.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := toAppError(err)
	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", r.Method, r.URL.Path, err)
	}

	payload := Envelope{
		"success": false,
		"message": appErr.Message,
	}
	if config.Get().App.Debug && appErr.Err != nil {
		payload["error"] = appErr.Err.Error()
	}
	WriteJSON(w, appErr.HTTPStatus(), payload)
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrCodeInternalError, "an unexpected error occurred", err)
}

// WriteCached replays a previously stored envelope, marking it as a
// cache hit. The stored body is spliced rather than re-marshaled so the
// data section stays byte-identical across hits.
func WriteCached(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if len(body) > 0 && body[0] == '{' {
		w.Write([]byte(`{"fromCache":true,`))
		w.Write(body[1:])
		return
	}
	w.Write(body)
}

// WriteRawJSON writes a pre-serialized envelope. Handlers that cache
// their responses use this so the stored and served bytes match.
func WriteRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// MarshalEnvelope serializes an envelope for the response cache.
func MarshalEnvelope(payload Envelope) ([]byte, error) {
	return json.Marshal(payload)
}

// DecodeBody decodes a JSON request body into dst.
func DecodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeValidation, "invalid request body", err)
	}
	return nil
}
