package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mapcandy-api/internal/api"
	"mapcandy-api/internal/apperr"
	"mapcandy-api/internal/models"
)

// PinCreatedMessage confirms a successful create.
const PinCreatedMessage = "New pin added."

// PinHandler serves the pins endpoint
type PinHandler struct {
	service PinService
}

// PinService interface for dependency injection
type PinService interface {
	GetPin(ctx context.Context, id int64) (*models.Pin, error)
	CreatePin(ctx context.Context, in models.PinInput) (int64, error)
	ListPinsByOwner(ctx context.Context, ownerID int64) ([]models.Pin, error)
	ListPinsWithinRadius(ctx context.Context, pinID int64, radiusMeters float64) ([]models.PinDistance, error)
}

// CreatePinResponse is returned after a pin is stored.
type CreatePinResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// NewPinHandler creates a new pin handler
func NewPinHandler(svc PinService) *PinHandler {
	return &PinHandler{service: svc}
}

// Register binds the handler to the pins endpoint of d.
func (h *PinHandler) Register(d *api.Dispatcher) {
	d.Register("pins", h.Pins)
}

// Pins handles every request under /pins:
//
//	GET  /pins/{pinId}/data
//	GET  /pins/{pinId}/data/{pinId}?radius=N
//	GET  /pins/owner/{userId}
//	POST /pins/new/full
func (h *PinHandler) Pins(ctx context.Context, req api.Request) (any, error) {
	switch req.Method {
	case http.MethodGet:
		return h.get(ctx, req)
	case http.MethodPost:
		if req.Verb != "new" || len(req.Args) > 1 || (len(req.Args) == 1 && req.Args[0] != "full") {
			return nil, apperr.NotFound("unknown pins request: POST %s", describe(req))
		}
		return h.create(ctx, req)
	default:
		return nil, apperr.MethodNotAllowed("pins does not support %s", req.Method)
	}
}

func (h *PinHandler) get(ctx context.Context, req api.Request) (any, error) {
	if req.Verb == "owner" && len(req.Args) == 1 {
		return h.listPinsByOwner(ctx, req)
	}

	if req.Verb != "" || len(req.Args) == 0 || (len(req.Args) > 1 && req.Args[1] != "data") {
		return nil, apperr.NotFound("unknown pins request: GET %s", describe(req))
	}

	switch len(req.Args) {
	case 1, 2:
		return h.getPin(ctx, req)
	case 3:
		return h.listPinsWithinRadius(ctx, req)
	default:
		return nil, apperr.NotFound("unknown pins request: GET %s", describe(req))
	}
}

// getPin godoc
// @Summary  Fetch one pin's fields
// @Tags     pins
// @Produce  json
// @Param    pinId  path      int  true  "Pin id"
// @Success  200    {object}  map[string]string
// @Failure  404    {object}  api.ErrorBody
// @Router   /pins/{pinId}/data [get]
func (h *PinHandler) getPin(ctx context.Context, req api.Request) (any, error) {
	pinID, err := parseID("pin id", req.Args[0])
	if err != nil {
		return nil, err
	}

	pin, err := h.service.GetPin(ctx, pinID)
	if err != nil {
		return nil, err
	}
	return pin.Fields(), nil
}

// listPinsWithinRadius godoc
// @Summary  List pins within a radius of a pin
// @Tags     pins
// @Produce  json
// @Param    pinId   path      int     true  "Reference pin id"
// @Param    pinId2  path      int     true  "Reference pin id (repeated)"
// @Param    radius  query     number  true  "Radius in meters"
// @Success  200     {array}   models.PinDistance
// @Failure  400     {object}  api.ErrorBody
// @Failure  404     {object}  api.ErrorBody
// @Router   /pins/{pinId}/data/{pinId2} [get]
func (h *PinHandler) listPinsWithinRadius(ctx context.Context, req api.Request) (any, error) {
	pinID, err := parseID("pin id", req.Args[0])
	if err != nil {
		return nil, err
	}

	ref, _, _ := strings.Cut(req.Args[2], "?")
	if _, err := parseID("pin id", ref); err != nil {
		return nil, err
	}
	radius, err := parseRadius(req)
	if err != nil {
		return nil, err
	}
	return h.service.ListPinsWithinRadius(ctx, pinID, radius)
}

// listPinsByOwner godoc
// @Summary  List the pins of an owner
// @Tags     pins
// @Produce  json
// @Param    userId  path      int  true  "Owner id"
// @Success  200     {array}   models.Pin
// @Failure  400     {object}  api.ErrorBody
// @Router   /pins/owner/{userId} [get]
func (h *PinHandler) listPinsByOwner(ctx context.Context, req api.Request) (any, error) {
	ownerID, err := parseID("user id", req.Args[0])
	if err != nil {
		return nil, err
	}
	return h.service.ListPinsByOwner(ctx, ownerID)
}

// create godoc
// @Summary  Create a pin
// @Tags     pins
// @Accept   x-www-form-urlencoded
// @Produce  json
// @Param    latitude   formData  number  true   "Latitude in decimal degrees"
// @Param    longitude  formData  number  true   "Longitude in decimal degrees"
// @Param    address1   formData  string  false  "First address line"
// @Param    address2   formData  string  false  "Second address line"
// @Param    city       formData  string  false  "City"
// @Param    state      formData  string  false  "State"
// @Param    zip        formData  string  false  "Postal code"
// @Param    note       formData  string  false  "Free-form note"
// @Param    user_id    formData  int     false  "Owner of the pin"
// @Success  200        {object}  handler.CreatePinResponse
// @Failure  400        {object}  api.ErrorBody
// @Router   /pins/new/full [post]
func (h *PinHandler) create(ctx context.Context, req api.Request) (any, error) {
	in, err := pinInput(req)
	if err != nil {
		return nil, err
	}

	id, err := h.service.CreatePin(ctx, in)
	if err != nil {
		return nil, err
	}

	return CreatePinResponse{Message: PinCreatedMessage, ID: id}, nil
}

// pinInput reads the create form. Missing coordinates stay nil so validation
// can report them.
func pinInput(req api.Request) (models.PinInput, error) {
	var in models.PinInput
	var fields []apperr.FieldError

	parseFloat := func(key string) *float64 {
		raw, ok := req.Param(key)
		if !ok || raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: key, Error: "must be a number"})
			return nil
		}
		return &v
	}
	text := func(key string) string {
		v, _ := req.Param(key)
		return v
	}

	in.Latitude = parseFloat("latitude")
	in.Longitude = parseFloat("longitude")
	in.Address1 = text("address1")
	in.Address2 = text("address2")
	in.City = text("city")
	in.State = text("state")
	in.Zip = text("zip")
	in.Note = text("note")

	if raw, ok := req.Param("user_id"); ok && raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "user_id", Error: "must be an integer"})
		} else {
			in.UserID = &v
		}
	}

	if len(fields) > 0 {
		return in, apperr.Validation("invalid pin fields", fields)
	}
	return in, nil
}

// parseRadius reads the radius in meters from the query string, falling back
// to a "{pinId}?radius=N" segment left in the path by URL rewriting.
func parseRadius(req api.Request) (float64, error) {
	raw, ok := req.Param("radius")
	if !ok {
		segment := req.Arg(2)
		_, query, found := strings.Cut(segment, "?")
		if !found {
			return 0, apperr.BadRequest("missing radius parameter")
		}
		key, value, found := strings.Cut(query, "=")
		if !found || key != "radius" {
			return 0, apperr.BadRequest("malformed radius parameter: %q", query)
		}
		raw = value
	}

	if raw == "" {
		return 0, apperr.BadRequest("missing radius value")
	}
	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil || !api.IsNumeric(raw) {
		return 0, apperr.BadRequest("malformed radius parameter: %q", raw)
	}
	return radius, nil
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid %s: %q", name, raw)
	}
	return id, nil
}

func describe(req api.Request) string {
	parts := append([]string{req.Endpoint}, req.Verb)
	parts = append(parts, req.Args...)
	return fmt.Sprintf("/%s", strings.Join(nonEmpty(parts), "/"))
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
