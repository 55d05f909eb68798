package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/middleware"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/services"
	"github.com/AnshRaj112/authgate-backend/pkg/clientip"
)

const maxJSONBody = 1 << 20

// RequestContext is everything an endpoint reads from and writes to the
// HTTP exchange apart from the response body.
type RequestContext struct {
	Request *http.Request
	Account *models.Account // nil on public routes
	Client  services.ClientInfo

	cookies []*http.Cookie
}

func NewRequestContext(r *http.Request) *RequestContext {
	acc, _ := middleware.AccountFromContext(r.Context())
	return &RequestContext{
		Request: r,
		Account: acc,
		Client: services.ClientInfo{
			IP:        clientip.RealClientIP(r),
			UserAgent: r.UserAgent(),
		},
	}
}

func (rc *RequestContext) Context() context.Context { return rc.Request.Context() }

// Cookie returns the value of the named request cookie or "".
func (rc *RequestContext) Cookie(name string) string {
	c, err := rc.Request.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (rc *RequestContext) Param(name string) string {
	return chi.URLParam(rc.Request, name)
}

// SetCookie queues c to be sent with the response.
func (rc *RequestContext) SetCookie(c *http.Cookie) {
	rc.cookies = append(rc.cookies, c)
}

// DecodeJSON reads the body into dst. An empty body leaves dst untouched.
func (rc *RequestContext) DecodeJSON(dst any) error {
	dec := json.NewDecoder(io.LimitReader(rc.Request.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// Result is a successful endpoint outcome.
type Result struct {
	Status  int
	Message string
	Data    any
}

func OK(message string, data any) *Result {
	return &Result{Status: http.StatusOK, Message: message, Data: data}
}

// Endpoint is the body of a route. It returns either a result or an error;
// the responder turns both into the envelope.
type Endpoint func(rc *RequestContext) (*Result, error)

// Handle adapts e to net/http.
func (rs *Responder) Handle(e Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := NewRequestContext(r)
		res, err := e(rc)
		for _, c := range rc.cookies {
			http.SetCookie(w, c)
		}
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		rs.JSON(w, res.Status, res.Message, res.Data)
	}
}
