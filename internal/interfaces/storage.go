package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/ticketctx/internal/models"
)

// ErrConnectionNotFound is returned when a named connection does not exist
var ErrConnectionNotFound = errors.New("connection not found")

// ConnectionStorage persists named key/value connections (credential sets)
type ConnectionStorage interface {
	Get(ctx context.Context, name string) (*models.Connection, error)
	Set(ctx context.Context, name string, values map[string]string) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*models.Connection, error)
	Close() error
}
