package distance

import (
	"context"

	"github.com/i474232898/pin-forecast/internal/geo"
)

// MatrixFetcher abstracts a routing provider's distance-matrix endpoint for a
// single origin/destination pair.
type MatrixFetcher interface {
	Name() string
	FetchMatrix(ctx context.Context, origin, destination geo.Coordinate) (*Matrix, error)
}
