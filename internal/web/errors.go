package web

// errors.go provides unified error response handling for the web layer.
//
// Domain errors carry their own status: validation failures are 400,
// name conflicts are 409, missing products are 404. Anything else is
// logged with full detail and mapped to a sanitized 500 response via
// catalog.MapError.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mhalvorsen/stockroom/internal/catalog"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError converts err into the right status code and a JSON body.
// The technical error is logged server-side with the request ID; the
// client only ever sees a user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		statusCode int
		userMsg    catalog.UserMessage
	)

	switch {
	case catalog.IsValidation(err):
		statusCode = http.StatusBadRequest
		userMsg = catalog.UserMessage{
			Message: err.Error(),
			Action:  "Correct the field and resubmit",
			Code:    "VAL001",
		}
	case catalog.IsConflict(err):
		statusCode = http.StatusConflict
		userMsg = catalog.UserMessage{
			Message: "Name must be unique",
			Action:  "Choose a different product name",
			Code:    "DUP001",
		}
	case errors.Is(err, catalog.ErrNotFound):
		statusCode = http.StatusNotFound
		userMsg = catalog.UserMessage{
			Message: "Product not found",
			Action:  "Check the product id",
			Code:    "NF001",
		}
	default:
		statusCode = http.StatusInternalServerError
		userMsg = catalog.MapError(err)
	}

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondErrorJSON(w, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg catalog.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON writes a JSON success response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
