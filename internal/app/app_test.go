package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/favaddr/internal/config"
	"github.com/patric-chuzhbe/favaddr/internal/db/memorystorage"
	"github.com/patric-chuzhbe/favaddr/internal/db/sqldb"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

func setTestEnv(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("FILE_STORAGE_PATH", "")
	t.Setenv("CONFIG", "")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TOKEN_SIGNING_KEY", "YXBwLXRlc3Qtc2lnbmluZy1rZXktMDEyMzQ1Njc4OWFiY2RlZg==")
}

func TestStorageSelection(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.Config
		want int
	}{
		{
			name: "dsn_wins",
			cfg:  config.Config{DatabaseDSN: "postgres://localhost/favaddr", DBFileName: "favaddr.db"},
			want: models.StorageTypePostgresql,
		},
		{
			name: "file",
			cfg:  config.Config{DBFileName: "favaddr.db"},
			want: models.StorageTypeSQLite,
		},
		{
			name: "memory",
			cfg:  config.Config{},
			want: models.StorageTypeMemory,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, getAvailableStorageType(&tc.cfg))
		})
	}
}

func TestNewWithMemoryStorage(t *testing.T) {
	setTestEnv(t)

	app, err := New(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	assert.IsType(t, &memorystorage.MemoryStorage{}, app.db)

	server := httptest.NewServer(app.httpHandler)
	defer server.Close()
	client := resty.New().SetBaseURL(server.URL)

	resp, err := client.R().Get("/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	credentials := models.Credentials{Email: "app@test.com", Password: "password"}
	resp, err = client.R().SetBody(credentials).Post("/api/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	var token models.TokenResponse
	resp, err = client.R().SetBody(credentials).SetResult(&token).Post("/api/users/tokens")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var profile models.UserResponse
	resp, err = client.R().SetAuthToken(token.Token).SetResult(&profile).Get("/api/users/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "app@test.com", profile.Item.Email)

	require.NoError(t, app.db.Close())
}

func TestNewWithSQLiteStorage(t *testing.T) {
	setTestEnv(t)
	t.Setenv("FILE_STORAGE_PATH", filepath.Join(t.TempDir(), "favaddr.db"))
	t.Setenv("API_BASE_PATH", "/v1")

	app, err := New(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	assert.IsType(t, &sqldb.DB{}, app.db)

	server := httptest.NewServer(app.httpHandler)
	defer server.Close()

	resp, err := resty.New().R().
		SetBody(models.Credentials{Email: "app@test.com", Password: "password"}).
		Post(server.URL + "/v1/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	require.NoError(t, app.db.Close())
}

func TestNewRejectsBadTrustedSubnet(t *testing.T) {
	setTestEnv(t)
	t.Setenv("TRUSTED_SUBNET", "not a subnet")

	_, err := New(config.WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

func TestNewRequiresSigningKey(t *testing.T) {
	setTestEnv(t)
	t.Setenv("TOKEN_SIGNING_KEY", "")

	app, err := New(config.WithDisableFlagsParsing(true))
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestServeStopsOnCancel(t *testing.T) {
	setTestEnv(t)

	app, err := New(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	app.cfg.RunAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.serve(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("server did not stop")
	}
}
