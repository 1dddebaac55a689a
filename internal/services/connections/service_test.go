package connections

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
	"github.com/ternarybob/ticketctx/internal/models"
)

// memoryStorage is an in-memory ConnectionStorage
type memoryStorage struct {
	conns  map[string]*models.Connection
	getErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{conns: map[string]*models.Connection{}}
}

func (m *memoryStorage) Get(ctx context.Context, name string) (*models.Connection, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	conn, ok := m.conns[name]
	if !ok {
		return nil, interfaces.ErrConnectionNotFound
	}
	return conn, nil
}

func (m *memoryStorage) Set(ctx context.Context, name string, values map[string]string) error {
	conn, ok := m.conns[name]
	if !ok {
		conn = &models.Connection{Name: name, Values: map[string]string{}}
		m.conns[name] = conn
	}
	for k, v := range values {
		conn.Values[k] = v
	}
	return nil
}

func (m *memoryStorage) Delete(ctx context.Context, name string) error {
	if _, ok := m.conns[name]; !ok {
		return interfaces.ErrConnectionNotFound
	}
	delete(m.conns, name)
	return nil
}

func (m *memoryStorage) List(ctx context.Context) ([]*models.Connection, error) {
	conns := make([]*models.Connection, 0, len(m.conns))
	for _, conn := range m.conns {
		conns = append(conns, conn)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].Name < conns[j].Name })
	return conns, nil
}

func (m *memoryStorage) Close() error { return nil }

func newTestService(storage interfaces.ConnectionStorage, cfg common.AtlassianConfig, env map[string]string) *Service {
	svc := NewService(storage, cfg, arbor.NewLogger())
	svc.getenv = func(key string) string { return env[key] }
	return svc
}

func defaultAtlassianConfig() common.AtlassianConfig {
	return common.NewDefaultConfig().Atlassian
}

func TestResolve_Precedence(t *testing.T) {
	storage := newMemoryStorage()
	storage.conns["confluence_creds"] = &models.Connection{Values: map[string]string{
		common.EnvConfluenceURL: "https://stored.atlassian.net",
		common.EnvUsername:      "stored@example.com",
	}}

	cfg := defaultAtlassianConfig()
	cfg.BaseURL = "https://config.atlassian.net"
	cfg.Username = "config@example.com"
	cfg.APIToken = "config-token"

	env := map[string]string{common.EnvConfluenceURL: "https://env.atlassian.net"}

	creds, err := newTestService(storage, cfg, env).Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://env.atlassian.net", creds.BaseURL, "environment wins")
	assert.Equal(t, "stored@example.com", creds.Username, "stored connection beats config")
	assert.Equal(t, "config-token", creds.APIToken, "config is the fallback")
	assert.Equal(t, "basic", creds.AuthType)
}

func TestResolve_MissingCredentials(t *testing.T) {
	full := map[string]string{
		common.EnvConfluenceURL: "https://x.atlassian.net",
		common.EnvUsername:      "me@example.com",
		common.EnvAPIToken:      "token",
	}

	for _, missing := range []string{common.EnvConfluenceURL, common.EnvUsername, common.EnvAPIToken} {
		t.Run(missing, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range full {
				if k != missing {
					env[k] = v
				}
			}

			_, err := newTestService(nil, defaultAtlassianConfig(), env).Resolve(context.Background())

			require.Error(t, err)
			assert.True(t, common.IsKind(err, common.KindConfiguration))
			assert.Contains(t, err.Error(), missing)
			assert.Contains(t, err.Error(), "confluence_creds")
		})
	}
}

func TestResolve_BearerDoesNotNeedUsername(t *testing.T) {
	cfg := defaultAtlassianConfig()
	cfg.AuthType = "bearer"
	env := map[string]string{
		common.EnvConfluenceURL: "https://wiki.internal.example.com",
		common.EnvAPIToken:      "pat",
	}

	creds, err := newTestService(nil, cfg, env).Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "bearer", creds.AuthType)
}

func TestResolve_InvalidURL(t *testing.T) {
	env := map[string]string{
		common.EnvConfluenceURL: "not a url",
		common.EnvUsername:      "me",
		common.EnvAPIToken:      "token",
	}

	_, err := newTestService(nil, defaultAtlassianConfig(), env).Resolve(context.Background())

	assert.True(t, common.IsKind(err, common.KindConfiguration))
}

func TestResolve_StorageFailure(t *testing.T) {
	storage := newMemoryStorage()
	storage.getErr = errors.New("disk on fire")

	_, err := newTestService(storage, defaultAtlassianConfig(), nil).Resolve(context.Background())

	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindConfiguration))
	assert.Contains(t, err.Error(), "failed to access Confluence connection 'confluence_creds'")
}

func TestSetShowDelete(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	svc := newTestService(storage, defaultAtlassianConfig(), nil)

	require.NoError(t, svc.Set(ctx, map[string]string{
		common.EnvConfluenceURL: "https://x.atlassian.net",
		common.EnvAPIToken:      "supersecret",
	}))

	lines, err := svc.Show(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ATLASSIAN_API_TOKEN=*******cret",
		"CONFLUENCE_URL=https://x.atlassian.net",
	}, lines)

	err = svc.Set(ctx, map[string]string{"PASSWORD": "x"})
	assert.True(t, common.IsKind(err, common.KindValidation))

	require.NoError(t, svc.Delete(ctx))
	assert.True(t, common.IsKind(svc.Delete(ctx), common.KindNotFound))
}

func TestList(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	require.NoError(t, storage.Set(ctx, "staging", map[string]string{common.EnvAPIToken: "a"}))
	require.NoError(t, storage.Set(ctx, "prod", map[string]string{common.EnvAPIToken: "b"}))

	names, err := newTestService(storage, defaultAtlassianConfig(), nil).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "staging"}, names)

	_, err = newTestService(nil, defaultAtlassianConfig(), nil).List(ctx)
	assert.True(t, common.IsKind(err, common.KindConfiguration))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "**cdef", Mask("abcdef"))
}
