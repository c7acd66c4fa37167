package storage

import (
	"context"

	"liquidityShaper/internal/model"
)

// Storage defines a sink for approximated positions.
type Storage interface {
	PutPositions(ctx context.Context, records []model.PositionRecord) error
}
