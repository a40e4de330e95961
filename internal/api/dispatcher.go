package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"mapcandy-api/internal/apperr"

	"github.com/rs/zerolog/log"
)

// HandlerFunc serves one endpoint. The returned value becomes the JSON body of
// a 200 response; a returned error is rendered by ErrorResponse.
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Response is the status and JSON body produced for a Request.
type Response struct {
	Status int
	Body   any
}

// ErrorBody is the JSON shape of every failure.
type ErrorBody struct {
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// Dispatcher maps endpoint names to handlers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register binds endpoint to h. Registering the same endpoint twice panics.
func (d *Dispatcher) Register(endpoint string, h HandlerFunc) {
	if endpoint == "" || h == nil {
		panic("api: Register requires an endpoint name and a handler")
	}
	if _, exists := d.handlers[endpoint]; exists {
		panic(fmt.Sprintf("api: endpoint %q registered twice", endpoint))
	}
	d.handlers[endpoint] = h
}

// Endpoints lists the registered endpoint names in order.
func (d *Dispatcher) Endpoints() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler registered for req.Endpoint.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	h, ok := d.handlers[req.Endpoint]
	if !ok {
		return Response{
			Status: http.StatusNotFound,
			Body:   ErrorBody{Error: fmt.Sprintf("No endpoint: %s", req.Endpoint)},
		}
	}

	result, err := h(ctx, req)
	if err != nil {
		return ErrorResponse(ctx, err)
	}

	return Response{Status: http.StatusOK, Body: result}
}

// ErrorResponse renders err. Typed errors keep their status and message,
// anything else becomes a 500 without internal details.
func ErrorResponse(ctx context.Context, err error) Response {
	if appErr, ok := apperr.As(err); ok {
		status := appErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			log.Ctx(ctx).Error().Err(err).Msg("request failed")
		}
		return Response{Status: status, Body: ErrorBody{Error: appErr.Message, Details: appErr.Fields}}
	}

	log.Ctx(ctx).Error().Err(err).Msg("request failed")
	return Response{
		Status: http.StatusInternalServerError,
		Body:   ErrorBody{Error: "internal server error"},
	}
}
