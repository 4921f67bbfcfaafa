// internal/domain/fetch/model.go

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"villrein/internal/domain/track"
)

var (
	// ErrLimitUnresolvable is returned when a range still exceeds the
	// source's position limit at the deepest allowed segmentation.
	ErrLimitUnresolvable = errors.New("source position limit unresolvable")

	// ErrNotAuthenticated is returned when the source session cannot be established
	ErrNotAuthenticated = errors.New("not authenticated")
)

// DateRange is a half-open interval of time requested from the source
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Duration returns the width of the range
func (r DateRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Individual is an entry of the source's individual listing
type Individual struct {
	ID         string          `json:"id"`
	SpecieName string          `json:"specieName"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Date       string          `json:"date"`
	Sex        json.RawMessage `json:"sex,omitempty"`
	Age        string          `json:"age"`
	AgeString  string          `json:"ageString"`
}

// Failure records an individual whose fetch did not complete
type Failure struct {
	IndividualID string `json:"individualId"`
	Error        string `json:"error"`
}

// YearResult is the outcome of fetching every individual of a year
type YearResult struct {
	RunID    string            `json:"runId"`
	Year     int               `json:"year"`
	Document track.RawDocument `json:"document"`
	Failures []Failure         `json:"failures,omitempty"`
}

// Progress describes how far a year fetch has come
type Progress struct {
	RunID        string `json:"runId"`
	Year         int    `json:"year"`
	IndividualID string `json:"individualId"`
	Completed    int    `json:"completed"`
	Total        int    `json:"total"`
	Failed       bool   `json:"failed,omitempty"`
}

// Source is the paginated position data source
type Source interface {
	// Individuals lists the individuals with positions inside r
	Individuals(ctx context.Context, r DateRange) ([]Individual, error)

	// Positions returns the positions of one individual inside r. The
	// document's PositionLimitExceeded flag signals a truncated result.
	Positions(ctx context.Context, individualID string, r DateRange) (track.RawDocument, error)
}

// Session establishes the authenticated session the source requires
type Session interface {
	EnsureSession(ctx context.Context) error
}

// ProgressReporter receives a notification after each individual completes
type ProgressReporter interface {
	Report(ctx context.Context, p Progress)
}

// ProgressFunc adapts a function to ProgressReporter
type ProgressFunc func(ctx context.Context, p Progress)

// Report calls f(ctx, p)
func (f ProgressFunc) Report(ctx context.Context, p Progress) {
	f(ctx, p)
}
