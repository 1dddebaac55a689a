package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/ticketctx/internal/interfaces"
	"github.com/ternarybob/ticketctx/internal/models"
)

// ConnectionStorage implements interfaces.ConnectionStorage for Badger
type ConnectionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewConnectionStorage creates a new ConnectionStorage instance
func NewConnectionStorage(db *BadgerDB, logger arbor.ILogger) *ConnectionStorage {
	return &ConnectionStorage{
		db:     db,
		logger: logger,
	}
}

// normalizeName converts a connection name to lowercase for case-insensitive storage
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get retrieves a connection by name (case-insensitive)
func (s *ConnectionStorage) Get(ctx context.Context, name string) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.Store().Get(normalizeName(name), &conn)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &conn, nil
}

// Set merges values into the named connection, creating it if needed.
// An empty value removes that key.
func (s *ConnectionStorage) Set(ctx context.Context, name string, values map[string]string) error {
	key := normalizeName(name)
	if key == "" {
		return fmt.Errorf("connection name is required")
	}

	now := time.Now()
	conn := models.Connection{
		Name:      key,
		Values:    map[string]string{},
		CreatedAt: now,
	}

	var existing models.Connection
	err := s.db.Store().Get(key, &existing)
	switch {
	case err == nil:
		conn.CreatedAt = existing.CreatedAt
		for k, v := range existing.Values {
			conn.Values[k] = v
		}
	case !errors.Is(err, badgerhold.ErrNotFound):
		return fmt.Errorf("failed to check connection existence: %w", err)
	}

	for k, v := range values {
		if v == "" {
			delete(conn.Values, k)
			continue
		}
		conn.Values[k] = v
	}
	conn.UpdatedAt = now

	if err := s.db.Store().Upsert(key, &conn); err != nil {
		return fmt.Errorf("failed to set connection: %w", err)
	}

	s.logger.Debug().Str("connection", key).Int("keys", len(conn.Values)).Msg("Connection saved")
	return nil
}

// Delete removes a connection (case-insensitive)
func (s *ConnectionStorage) Delete(ctx context.Context, name string) error {
	err := s.db.Store().Delete(normalizeName(name), &models.Connection{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return interfaces.ErrConnectionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}

// List returns all connections, most recently updated first
func (s *ConnectionStorage) List(ctx context.Context) ([]*models.Connection, error) {
	var conns []*models.Connection
	err := s.db.Store().Find(&conns, badgerhold.Where("Name").Ne("").SortBy("UpdatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}

// Close closes the underlying database
func (s *ConnectionStorage) Close() error {
	return s.db.Close()
}
