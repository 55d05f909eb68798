package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
)

// Response is the envelope of every API response.
type Response struct {
	StatusCode int                 `json:"statusCode"`
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       any                 `json:"data,omitempty"`
	Errors     []apperr.FieldError `json:"errors,omitempty"`
	Cause      string              `json:"cause,omitempty"`
}

// Responder writes envelopes. It is the only place where error kinds become
// HTTP status codes.
type Responder struct {
	log *zap.Logger
	dev bool
}

// NewResponder returns a responder. In dev mode the cause of server errors
// is included in the response.
func NewResponder(log *zap.Logger, dev bool) *Responder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Responder{log: log, dev: dev}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, message string, data any) {
	rs.write(w, status, Response{
		StatusCode: status,
		Success:    status < http.StatusBadRequest,
		Message:    message,
		Data:       data,
	})
}

// Error maps err to its status code. Unknown errors become a generic 500.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	status := appErr.Kind.Status()

	resp := Response{
		StatusCode: status,
		Success:    false,
		Message:    appErr.Message,
		Errors:     appErr.Fields,
	}

	if status >= http.StatusInternalServerError {
		rs.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", appErr.Kind.String()),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err),
		)
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub()
		}
		if appErr.Err != nil {
			hub.CaptureException(appErr.Err)
		} else {
			hub.CaptureMessage(appErr.Message)
		}
		if rs.dev && appErr.Err != nil {
			resp.Cause = appErr.Err.Error()
		}
	}

	rs.write(w, status, resp)
}

func (rs *Responder) write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		rs.log.Warn("failed to write response", zap.Error(err))
	}
}

// NotFound and MethodNotAllowed answer unmatched routes with the envelope.
func (rs *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.Error(w, r, apperr.NotFound("Route not found"))
}

func (rs *Responder) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	rs.write(w, http.StatusMethodNotAllowed, Response{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed",
	})
}
