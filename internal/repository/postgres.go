package repository

import (
	"context"
	"errors"
	"fmt"

	"mapcandy-api/internal/apperr"
	"mapcandy-api/internal/geo"
	"mapcandy-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATE codes surfaced to clients as bad requests.
const (
	notNullViolation = "23502"
	checkViolation   = "23514"
)

const pinColumns = `id, latitude, longitude, address1, address2, city, state, zip, note, user_id`

// Repository implements pin storage on PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("repository: ping failed: %w", err)
	}
	return nil
}

// GetPin loads a single pin by id. A missing pin yields (nil, nil).
func (r *Repository) GetPin(ctx context.Context, id int64) (*models.Pin, error) {
	sql := `SELECT ` + pinColumns + ` FROM pins WHERE id = $1`

	pin, err := scanPin(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to load pin %d: %w", id, err)
	}

	return &pin, nil
}

// CreatePin inserts a pin and returns its generated id.
func (r *Repository) CreatePin(ctx context.Context, in models.PinInput) (int64, error) {
	sql := `
		INSERT INTO pins (latitude, longitude, address1, address2, city, state, zip, note, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, sql,
		in.Latitude,
		in.Longitude,
		in.Address1,
		in.Address2,
		in.City,
		in.State,
		in.Zip,
		in.Note,
		in.UserID,
	).Scan(&id)
	if err != nil {
		return 0, mapPgError("repository: failed to insert pin", err)
	}

	return id, nil
}

// ListPinsByOwner returns every pin whose user_id matches ownerID, oldest first.
func (r *Repository) ListPinsByOwner(ctx context.Context, ownerID int64) ([]models.Pin, error) {
	sql := `SELECT ` + pinColumns + ` FROM pins WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, sql, ownerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute owner query: %w", err)
	}
	return collectPins(rows)
}

// ListPinsInBox returns the pins inside box, excluding the pin with id excludeID.
func (r *Repository) ListPinsInBox(ctx context.Context, box geo.Box, excludeID int64) ([]models.Pin, error) {
	sql := `
		SELECT ` + pinColumns + `
		FROM pins
		WHERE latitude BETWEEN $1 AND $2
		  AND (
			($5::boolean AND (longitude >= $3 OR longitude <= $4))
			OR (NOT $5::boolean AND longitude BETWEEN $3 AND $4)
		  )
		  AND id <> $6
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, sql,
		box.MinLatitude,
		box.MaxLatitude,
		box.MinLongitude,
		box.MaxLongitude,
		box.WrapsAntimeridian,
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute bounding box query: %w", err)
	}
	return collectPins(rows)
}

func collectPins(rows pgx.Rows) ([]models.Pin, error) {
	defer rows.Close()

	pins := []models.Pin{}
	for rows.Next() {
		pin, err := scanPin(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan pin: %w", err)
		}
		pins = append(pins, pin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return pins, nil
}

func scanPin(row pgx.Row) (models.Pin, error) {
	var pin models.Pin
	err := row.Scan(
		&pin.ID,
		&pin.Latitude,
		&pin.Longitude,
		&pin.Address1,
		&pin.Address2,
		&pin.City,
		&pin.State,
		&pin.Zip,
		&pin.Note,
		&pin.UserID,
	)
	return pin, err
}

// mapPgError turns constraint violations into client errors and wraps everything else.
func mapPgError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case notNullViolation:
			return &apperr.Error{
				Kind:    apperr.KindValidation,
				Message: "missing required pin field",
				Fields:  []apperr.FieldError{{Field: pgErr.ColumnName, Error: "is required"}},
				Err:     err,
			}
		case checkViolation:
			return apperr.Wrap(apperr.KindBadRequest, "pin value out of range", err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
