package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"marquee/internal/logging"
	"marquee/internal/services"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

// writeServiceError maps err onto a status: not found is 404, invalid input
// is 400, and anything else is a 200 carrying success false.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.Kind(err)
	status := http.StatusOK
	switch kind {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindValidation:
		status = http.StatusBadRequest
	default:
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "api request failed", "api_request_failed",
			logging.String("error_kind", kind),
			logging.Error(err),
			logging.String(logging.FieldImpact, "response carries success false"),
		)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), ErrorKind: kind})
}

// decodeBody reads a JSON request body into target. An empty body leaves
// target untouched.
func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return services.Wrap(services.ErrValidation, "api", "decode body", fmt.Sprintf("invalid JSON body: %v", err), nil)
	}
	return nil
}
