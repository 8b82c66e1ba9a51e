package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/pkg/api"
)

// Responder пишет ответы в едином JSON формате
type Responder struct {
	logger      *slog.Logger
	development bool
}

// NewResponder creates a responder; in development mode error responses
// include the internal cause.
func NewResponder(logger *slog.Logger, development bool) *Responder {
	return &Responder{logger: logger, development: development}
}

// JSON отправляет success envelope
func (rs *Responder) JSON(w http.ResponseWriter, statusCode int, message string, data any) {
	rs.write(w, statusCode, api.Response{Success: true, Message: message, Data: data})
}

// Error classifies err and sends the failure envelope.
// Fatal errors are logged and their message is replaced by a generic one.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	resp := api.ErrorResponse{
		Code:    string(kind),
		Message: "Internal Server Error",
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && kind != apperr.KindFatal {
		resp.Message = appErr.Message
		for _, f := range appErr.Fields {
			resp.Errors = append(resp.Errors, api.FieldError{Field: f.Field, Message: f.Message})
		}
	}

	if status >= http.StatusInternalServerError {
		rs.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}

	if rs.development {
		resp.Stack = err.Error()
	}

	rs.write(w, status, resp)
}

// NotFound отвечает на неизвестные маршруты
func (rs *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.Error(w, r, apperr.New(apperr.KindNotFound, "Route not found"))
}

func (rs *Responder) write(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rs.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}
