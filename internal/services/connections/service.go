// Package connections resolves Atlassian credentials from the environment, the
// stored key/value connection and the config file, and manages the stored connection.
package connections

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
	"github.com/ternarybob/ticketctx/internal/models"
)

// Keys accepted in a stored connection
var connectionKeys = []string{
	common.EnvConfluenceURL,
	common.EnvUsername,
	common.EnvAPIToken,
	common.EnvJiraURL,
}

// Service provides credential resolution and connection management
type Service struct {
	storage interfaces.ConnectionStorage
	config  common.AtlassianConfig
	logger  arbor.ILogger
	getenv  func(string) string
}

// NewService creates a connection service. storage may be nil, in which case only
// the environment and the config file are consulted.
func NewService(storage interfaces.ConnectionStorage, config common.AtlassianConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		config:  config,
		logger:  logger,
		getenv:  os.Getenv,
	}
}

// Name returns the stored connection name
func (s *Service) Name() string {
	return s.config.Connection
}

// Resolve builds validated credentials. Each value is taken from the process
// environment first, then the stored connection, then the [atlassian] config section.
// Any missing required value is a configuration error; nothing is sent over the network.
func (s *Service) Resolve(ctx context.Context) (*models.Credentials, error) {
	stored, err := s.storedValues(ctx)
	if err != nil {
		return nil, err
	}

	pick := func(key, fromConfig string) string {
		if v := strings.TrimSpace(s.getenv(key)); v != "" {
			return v
		}
		if v := strings.TrimSpace(stored[key]); v != "" {
			return v
		}
		return strings.TrimSpace(fromConfig)
	}

	creds := &models.Credentials{
		BaseURL:  pick(common.EnvConfluenceURL, s.config.BaseURL),
		Username: pick(common.EnvUsername, s.config.Username),
		APIToken: pick(common.EnvAPIToken, s.config.APIToken),
		JiraURL:  pick(common.EnvJiraURL, s.config.JiraURL),
		AuthType: s.config.AuthType,
	}
	if creds.AuthType == "" {
		creds.AuthType = "basic"
	}

	if creds.BaseURL == "" {
		return nil, s.missing(common.EnvConfluenceURL, "base_url")
	}
	if creds.Username == "" && creds.AuthType == "basic" {
		return nil, s.missing(common.EnvUsername, "username")
	}
	if creds.APIToken == "" {
		return nil, s.missing(common.EnvAPIToken, "api_token")
	}

	if err := validator.New().Struct(creds); err != nil {
		return nil, common.Errorf(common.KindConfiguration, "connections.resolve", "invalid Confluence credentials: %w", err)
	}

	s.logger.Debug().
		Str("base_url", creds.BaseURL).
		Str("auth_type", creds.AuthType).
		Msg("Resolved Confluence credentials")

	return creds, nil
}

func (s *Service) missing(envKey, configKey string) error {
	return common.Errorf(common.KindConfiguration, "connections.resolve",
		"%s not found in environment, connection '%s' or [atlassian] %s. Set it with 'ticketctx connection set %s=<value>'",
		envKey, s.config.Connection, configKey, envKey)
}

// storedValues returns the stored connection values; a missing connection is empty
func (s *Service) storedValues(ctx context.Context) (map[string]string, error) {
	if s.storage == nil || s.config.Connection == "" {
		return map[string]string{}, nil
	}

	conn, err := s.storage.Get(ctx, s.config.Connection)
	if errors.Is(err, interfaces.ErrConnectionNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, common.Errorf(common.KindConfiguration, "connections.resolve",
			"failed to access Confluence connection '%s': %w", s.config.Connection, err)
	}
	return conn.Values, nil
}

// Set stores values in the connection. Keys must be one of the credential keys.
func (s *Service) Set(ctx context.Context, values map[string]string) error {
	if s.storage == nil {
		return common.Errorf(common.KindConfiguration, "connections.set", "connection storage is not configured")
	}

	for key := range values {
		if !isConnectionKey(key) {
			return common.Errorf(common.KindValidation, "connections.set",
				"unknown key %q (expected one of %s)", key, strings.Join(connectionKeys, ", "))
		}
	}

	if err := s.storage.Set(ctx, s.config.Connection, values); err != nil {
		s.logger.Error().Err(err).Str("connection", s.config.Connection).Msg("Failed to store connection")
		return err
	}

	s.logger.Info().Str("connection", s.config.Connection).Int("keys", len(values)).Msg("Stored connection")
	return nil
}

// Show returns the stored values with secrets masked, sorted by key
func (s *Service) Show(ctx context.Context) ([]string, error) {
	values, err := s.storedValues(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(values))
	for key, value := range values {
		if key == common.EnvAPIToken {
			value = Mask(value)
		}
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(lines)
	return lines, nil
}

// Delete removes the stored connection
func (s *Service) Delete(ctx context.Context) error {
	if s.storage == nil {
		return common.Errorf(common.KindConfiguration, "connections.delete", "connection storage is not configured")
	}

	if err := s.storage.Delete(ctx, s.config.Connection); err != nil {
		if errors.Is(err, interfaces.ErrConnectionNotFound) {
			return common.NewError(common.KindNotFound, "connections.delete", err)
		}
		return err
	}

	s.logger.Info().Str("connection", s.config.Connection).Msg("Deleted connection")
	return nil
}

// List returns the names of all stored connections, most recently updated first
func (s *Service) List(ctx context.Context) ([]string, error) {
	if s.storage == nil {
		return nil, common.Errorf(common.KindConfiguration, "connections.list", "connection storage is not configured")
	}

	conns, err := s.storage.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(conns))
	for _, conn := range conns {
		names = append(names, conn.Name)
	}
	return names, nil
}

// Mask hides all but the last four characters of a secret
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func isConnectionKey(key string) bool {
	for _, k := range connectionKeys {
		if k == key {
			return true
		}
	}
	return false
}
