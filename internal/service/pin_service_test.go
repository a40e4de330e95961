package service

import (
	"context"
	"strings"
	"testing"

	"mapcandy-api/internal/apperr"
	"mapcandy-api/internal/geo"
	"mapcandy-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPinRepository is a mock implementation of the PinRepository interface
type MockPinRepository struct {
	mock.Mock
}

func (m *MockPinRepository) GetPin(ctx context.Context, id int64) (*models.Pin, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Pin), args.Error(1)
}

func (m *MockPinRepository) CreatePin(ctx context.Context, in models.PinInput) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPinRepository) ListPinsByOwner(ctx context.Context, ownerID int64) ([]models.Pin, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.Pin), args.Error(1)
}

func (m *MockPinRepository) ListPinsInBox(ctx context.Context, box geo.Box, excludeID int64) ([]models.Pin, error) {
	args := m.Called(ctx, box, excludeID)
	return args.Get(0).([]models.Pin), args.Error(1)
}

func float(v float64) *float64 { return &v }

func TestPinService_GetPin(t *testing.T) {
	erie := &models.Pin{ID: 1, Latitude: 42.1292, Longitude: -80.0851, City: "Erie"}

	tests := []struct {
		name         string
		id           int64
		mockPin      *models.Pin
		mockError    error
		expected     *models.Pin
		expectedKind apperr.Kind
		expectError  bool
	}{
		{
			name:         "invalid id",
			id:           0,
			expectError:  true,
			expectedKind: apperr.KindBadRequest,
		},
		{
			name:     "found",
			id:       1,
			mockPin:  erie,
			expected: erie,
		},
		{
			name:         "not found",
			id:           2,
			mockPin:      nil,
			expectError:  true,
			expectedKind: apperr.KindNotFound,
		},
		{
			name:         "repository error",
			id:           3,
			mockError:    assert.AnError,
			expectError:  true,
			expectedKind: apperr.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockPinRepository)
			service := NewPinService(mockRepo)

			if tt.id > 0 {
				mockRepo.On("GetPin", mock.Anything, tt.id).Return(tt.mockPin, tt.mockError)
			}

			result, err := service.GetPin(context.Background(), tt.id)

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedKind, apperr.KindOf(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestPinService_CreatePin(t *testing.T) {
	valid := models.PinInput{
		Latitude:  float(40.1),
		Longitude: float(-75.2),
		Address1:  "1 Main St",
		City:      "Erie",
		State:     "PA",
		Zip:       "16501",
		Note:      "test",
	}

	t.Run("valid pin is stored", func(t *testing.T) {
		mockRepo := new(MockPinRepository)
		service := NewPinService(mockRepo)
		mockRepo.On("CreatePin", mock.Anything, valid).Return(int64(7), nil)

		id, err := service.CreatePin(context.Background(), valid)

		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		mockRepo.AssertExpectations(t)
	})

	t.Run("quotes are passed through untouched", func(t *testing.T) {
		in := valid
		in.Address1 = "O'Brien Ln"
		in.Note = `'); DELETE FROM pins; --`

		mockRepo := new(MockPinRepository)
		service := NewPinService(mockRepo)
		mockRepo.On("CreatePin", mock.Anything, in).Return(int64(8), nil)

		_, err := service.CreatePin(context.Background(), in)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	invalid := []struct {
		name     string
		mutate   func(in *models.PinInput)
		expected []apperr.FieldError
	}{
		{
			name:     "missing latitude",
			mutate:   func(in *models.PinInput) { in.Latitude = nil },
			expected: []apperr.FieldError{{Field: "latitude", Error: "is required"}},
		},
		{
			name:     "missing longitude",
			mutate:   func(in *models.PinInput) { in.Longitude = nil },
			expected: []apperr.FieldError{{Field: "longitude", Error: "is required"}},
		},
		{
			name:     "latitude out of range",
			mutate:   func(in *models.PinInput) { in.Latitude = float(91) },
			expected: []apperr.FieldError{{Field: "latitude", Error: "must not exceed 90"}},
		},
		{
			name:     "longitude out of range",
			mutate:   func(in *models.PinInput) { in.Longitude = float(-181) },
			expected: []apperr.FieldError{{Field: "longitude", Error: "must be at least -180"}},
		},
		{
			name:     "zip too long",
			mutate:   func(in *models.PinInput) { in.Zip = strings.Repeat("9", 33) },
			expected: []apperr.FieldError{{Field: "zip", Error: "must not exceed 32 characters"}},
		},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			mockRepo := new(MockPinRepository)
			service := NewPinService(mockRepo)

			_, err := service.CreatePin(context.Background(), in)

			appErr, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.expected, appErr.Fields)
			mockRepo.AssertNotCalled(t, "CreatePin", mock.Anything, mock.Anything)
		})
	}
}

func TestPinService_ListPinsByOwner(t *testing.T) {
	mockRepo := new(MockPinRepository)
	service := NewPinService(mockRepo)
	pins := []models.Pin{{ID: 1, City: "Erie"}, {ID: 2, City: "Pittsburgh"}}
	mockRepo.On("ListPinsByOwner", mock.Anything, int64(5)).Return(pins, nil)

	result, err := service.ListPinsByOwner(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, pins, result)

	_, err = service.ListPinsByOwner(context.Background(), -1)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	mockRepo.AssertExpectations(t)
}

func TestPinService_ListPinsWithinRadius(t *testing.T) {
	center := &models.Pin{ID: 1, Latitude: 0, Longitude: 0}
	// Points on the equator: one degree of longitude is about 111.2 km.
	candidates := []models.Pin{
		{ID: 4, Latitude: 0, Longitude: 0.85},
		{ID: 2, Latitude: 0, Longitude: 0.1},
		{ID: 3, Latitude: 0, Longitude: -0.5},
		{ID: 5, Latitude: 0.95, Longitude: 0.95},
		{ID: 6, Latitude: 0, Longitude: -0.1},
	}
	radius := 100_000.0

	mockRepo := new(MockPinRepository)
	service := NewPinService(mockRepo)
	mockRepo.On("GetPin", mock.Anything, int64(1)).Return(center, nil)
	mockRepo.On("ListPinsInBox", mock.Anything, geo.BoundingBox(center.Point(), radius), int64(1)).Return(candidates, nil)

	result, err := service.ListPinsWithinRadius(context.Background(), 1, radius)
	require.NoError(t, err)

	ids := make([]int64, 0, len(result))
	for i, r := range result {
		ids = append(ids, r.ID)
		assert.LessOrEqual(t, r.DistanceMeters, radius)
		assert.InDelta(t, geo.Distance(center.Point(), r.Point()), r.DistanceMeters, 1e-9)
		if i > 0 {
			assert.LessOrEqual(t, result[i-1].DistanceMeters, r.DistanceMeters)
		}
	}
	// 2 and 6 are equidistant, ties break on id. 5 lies outside the circle but inside the box.
	assert.Equal(t, []int64{2, 6, 3, 4}, ids)
	mockRepo.AssertExpectations(t)
}

func TestPinService_ListPinsWithinRadius_ZeroRadius(t *testing.T) {
	mockRepo := new(MockPinRepository)
	service := NewPinService(mockRepo)
	mockRepo.On("GetPin", mock.Anything, int64(1)).Return(&models.Pin{ID: 1}, nil)

	result, err := service.ListPinsWithinRadius(context.Background(), 1, 0)

	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NotNil(t, result)
	mockRepo.AssertNotCalled(t, "ListPinsInBox", mock.Anything, mock.Anything, mock.Anything)
}

func TestPinService_ListPinsWithinRadius_Errors(t *testing.T) {
	t.Run("negative radius", func(t *testing.T) {
		service := NewPinService(new(MockPinRepository))

		_, err := service.ListPinsWithinRadius(context.Background(), 1, -5)

		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("unknown reference pin", func(t *testing.T) {
		mockRepo := new(MockPinRepository)
		service := NewPinService(mockRepo)
		mockRepo.On("GetPin", mock.Anything, int64(9)).Return((*models.Pin)(nil), nil)

		_, err := service.ListPinsWithinRadius(context.Background(), 9, 100)

		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("search failure", func(t *testing.T) {
		mockRepo := new(MockPinRepository)
		service := NewPinService(mockRepo)
		mockRepo.On("GetPin", mock.Anything, int64(1)).Return(&models.Pin{ID: 1}, nil)
		mockRepo.On("ListPinsInBox", mock.Anything, mock.Anything, int64(1)).Return([]models.Pin(nil), assert.AnError)

		_, err := service.ListPinsWithinRadius(context.Background(), 1, 100)

		assert.ErrorIs(t, err, assert.AnError)
	})
}
