package models

import (
	"strconv"

	"mapcandy-api/internal/geo"
)

// Pin is one stored point of interest: coordinates, a postal address and a free-text note.
type Pin struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address1  string  `json:"address1"`
	Address2  string  `json:"address2"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Note      string  `json:"note"`
	UserID    *int64  `json:"user_id,omitempty"`
}

// Point returns the pin's coordinates.
func (p Pin) Point() geo.Point {
	return geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Fields renders the pin as the flat string record served by the pin data endpoint.
func (p Pin) Fields() map[string]string {
	return map[string]string{
		"id":        strconv.FormatInt(p.ID, 10),
		"latitude":  strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		"longitude": strconv.FormatFloat(p.Longitude, 'f', -1, 64),
		"address1":  p.Address1,
		"address2":  p.Address2,
		"city":      p.City,
		"state":     p.State,
		"zip":       p.Zip,
		"note":      p.Note,
	}
}

// PinInput holds the editable fields of a new pin.
// Coordinates are pointers so a missing value is distinguishable from zero.
type PinInput struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address1  string   `json:"address1" validate:"max=255"`
	Address2  string   `json:"address2" validate:"max=255"`
	City      string   `json:"city" validate:"max=255"`
	State     string   `json:"state" validate:"max=255"`
	Zip       string   `json:"zip" validate:"max=32"`
	Note      string   `json:"note" validate:"max=4096"`
	UserID    *int64   `json:"user_id" validate:"omitempty,gt=0"`
}

// PinDistance is a pin found by a radius search together with its distance from the reference pin.
type PinDistance struct {
	Pin
	DistanceMeters float64 `json:"distance_meters"`
}
