// internal/domain/track/store.go

package track

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a stored document does not exist
var ErrNotFound = errors.New("not found")

// RawPosition is a position as stored in raw yearly documents
type RawPosition struct {
	ID        PositionID `json:"id"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	DateTime  string     `json:"dateTime"`
}

// PositionID accepts both string and numeric ids from the source
type PositionID string

// UnmarshalJSON decodes a string or a JSON number
func (id *PositionID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PositionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("position id: %w", err)
	}
	*id = PositionID(n.String())
	return nil
}

// RawIndividual is one individual inside a raw yearly document
type RawIndividual struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	AgeString  string          `json:"ageString"`
	Age        string          `json:"age,omitempty"`
	Sex        json.RawMessage `json:"sex,omitempty"` // "Hunn"/"Hann" or 1/2 depending on endpoint
	SpecieName string          `json:"specieName,omitempty"`
	Latitude   float64         `json:"latitude,omitempty"`
	Longitude  float64         `json:"longitude,omitempty"`
	Date       string          `json:"date,omitempty"`
	Positions  []RawPosition   `json:"positions"`
}

// RawDocument is a stored slice of a year, as retrieved from the source
type RawDocument struct {
	VM                    []RawIndividual `json:"vm"`
	PositionLimitExceeded bool            `json:"positionLimitExceeded"`
}

// Store persists raw yearly documents and derived snapshots
type Store interface {
	// ListYears returns the distinct years found among raw documents
	ListYears(ctx context.Context) ([]string, error)

	// LoadRaw returns every raw document belonging to year
	LoadRaw(ctx context.Context, year string) ([]RawDocument, error)

	// SaveRaw stores a raw document under name
	SaveRaw(ctx context.Context, name string, doc RawDocument) error

	// SaveSnapshot stores a derived artifact under name
	SaveSnapshot(ctx context.Context, name string, v interface{}) error
}
