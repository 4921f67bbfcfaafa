// internal/domain/track/service.go

package track

import "context"

// Service serves derived tracks
type Service interface {
	// Years returns the years that have stored data
	Years(ctx context.Context) ([]string, error)

	// Tracks returns a year's tracks at the given detail level, optionally
	// narrowed to the track at position num
	Tracks(ctx context.Context, year string, details Details, num *int) ([]AnimalTrack, error)
}
