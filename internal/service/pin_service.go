package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"mapcandy-api/internal/apperr"
	"mapcandy-api/internal/geo"
	"mapcandy-api/internal/models"

	"github.com/go-playground/validator/v10"
)

// PinService contains the business rules for pins
type PinService struct {
	repo     PinRepository
	validate *validator.Validate
}

// PinRepository interface for dependency injection
type PinRepository interface {
	GetPin(ctx context.Context, id int64) (*models.Pin, error)
	CreatePin(ctx context.Context, in models.PinInput) (int64, error)
	ListPinsByOwner(ctx context.Context, ownerID int64) ([]models.Pin, error)
	ListPinsInBox(ctx context.Context, box geo.Box, excludeID int64) ([]models.Pin, error)
}

// NewPinService creates a new pin service
func NewPinService(repo PinRepository) *PinService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &PinService{repo: repo, validate: v}
}

// GetPin returns the pin with the given id or a not-found error.
func (s *PinService) GetPin(ctx context.Context, id int64) (*models.Pin, error) {
	if id <= 0 {
		return nil, apperr.BadRequest("invalid pin id: %d", id)
	}

	pin, err := s.repo.GetPin(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load pin: %w", err)
	}
	if pin == nil {
		return nil, apperr.NotFound("pin %d not found", id)
	}

	return pin, nil
}

// CreatePin validates in and stores it, returning the new pin id.
func (s *PinService) CreatePin(ctx context.Context, in models.PinInput) (int64, error) {
	if err := s.validate.Struct(in); err != nil {
		return 0, validationError(err)
	}

	id, err := s.repo.CreatePin(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("service: failed to create pin: %w", err)
	}

	return id, nil
}

// ListPinsByOwner returns all pins owned by ownerID.
func (s *PinService) ListPinsByOwner(ctx context.Context, ownerID int64) ([]models.Pin, error) {
	if ownerID <= 0 {
		return nil, apperr.BadRequest("invalid owner id: %d", ownerID)
	}

	pins, err := s.repo.ListPinsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list pins by owner: %w", err)
	}

	return pins, nil
}

// ListPinsWithinRadius returns the pins within radiusMeters of the reference pin,
// nearest first. The reference pin itself is never part of the result.
func (s *PinService) ListPinsWithinRadius(ctx context.Context, pinID int64, radiusMeters float64) ([]models.PinDistance, error) {
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters < 0 {
		return nil, apperr.BadRequest("radius must be a non-negative number of meters")
	}

	center, err := s.GetPin(ctx, pinID)
	if err != nil {
		return nil, err
	}

	result := []models.PinDistance{}
	if radiusMeters == 0 {
		return result, nil
	}

	candidates, err := s.repo.ListPinsInBox(ctx, geo.BoundingBox(center.Point(), radiusMeters), center.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to search pins: %w", err)
	}

	for _, pin := range candidates {
		if pin.ID == center.ID {
			continue
		}
		d := geo.Distance(center.Point(), pin.Point())
		if d <= radiusMeters {
			result = append(result, models.PinDistance{Pin: pin, DistanceMeters: d})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DistanceMeters != result[j].DistanceMeters {
			return result[i].DistanceMeters < result[j].DistanceMeters
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindBadRequest, "invalid pin", err)
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Error: fieldMessage(fe)})
	}
	return apperr.Validation("invalid pin fields", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must not exceed " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
