package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPin_Fields(t *testing.T) {
	pin := Pin{
		ID:        12,
		Latitude:  40.1,
		Longitude: -75.2,
		Address1:  "1 Main St",
		City:      "Erie",
		State:     "PA",
		Zip:       "16501",
		Note:      "test",
	}

	assert.Equal(t, map[string]string{
		"id":        "12",
		"latitude":  "40.1",
		"longitude": "-75.2",
		"address1":  "1 Main St",
		"address2":  "",
		"city":      "Erie",
		"state":     "PA",
		"zip":       "16501",
		"note":      "test",
	}, pin.Fields())
}
