package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads defaults when no env vars set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "release", cfg.Server.Mode)
		assert.Equal(t, "public", cfg.Server.StaticDir)
		assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:5500")

		assert.Equal(t, 12*time.Second, cfg.Fetch.Timeout)
		assert.True(t, cfg.Fetch.TLSFingerprint)
		assert.Equal(t, int64(10<<20), cfg.Fetch.MaxBodyBytes)

		assert.Empty(t, cfg.Auth.JWTSecret)
		assert.Empty(t, cfg.Auth.AdminKeys)

		assert.Equal(t, 2.0, cfg.RateLimit.RequestsPerSecond)
		assert.Equal(t, 5, cfg.RateLimit.Burst)

		assert.Equal(t, "file", cfg.Store.Type)
		assert.Equal(t, "users.json", cfg.Store.UsersFile)
		assert.Equal(t, "signin_logs.json", cfg.Store.SignInLogFile)
		assert.Equal(t, "giftme", cfg.Store.MongoDatabase)

		assert.Equal(t, 4, cfg.Batch.Concurrency)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Setenv("GIFTME_SERVER_PORT", "9090")
		t.Setenv("GIFTME_SERVER_ALLOWED_ORIGINS", "https://giftme.example,chrome-extension://*")
		t.Setenv("GIFTME_FETCH_TIMEOUT", "5s")
		t.Setenv("GIFTME_FETCH_TLS_FINGERPRINT", "false")
		t.Setenv("GIFTME_AUTH_JWT_SECRET", "s3cret")
		t.Setenv("GIFTME_RATELIMIT_RPS", "0.5")
		t.Setenv("GIFTME_BATCH_CONCURRENCY", "8")
		t.Setenv("GIFTME_LOG_FORMAT", "text")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, []string{"https://giftme.example", "chrome-extension://*"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
		assert.False(t, cfg.Fetch.TLSFingerprint)
		assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
		assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
		assert.Equal(t, 8, cfg.Batch.Concurrency)
		assert.Equal(t, "text", cfg.Log.Format)
	})

	t.Run("mongo store requires a URI", func(t *testing.T) {
		t.Setenv("GIFTME_STORE_TYPE", "mongo")

		cfg, err := Load()
		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mongo_uri")
	})

	t.Run("mongo store with URI", func(t *testing.T) {
		t.Setenv("GIFTME_STORE_TYPE", "mongo")
		t.Setenv("GIFTME_STORE_MONGO_URI", "mongodb://localhost:27017")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "mongo", cfg.Store.Type)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	})

	t.Run("rejects unknown store type", func(t *testing.T) {
		t.Setenv("GIFTME_STORE_TYPE", "redis")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store type must be 'file' or 'mongo'")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid file store",
			cfg: Config{
				Fetch: FetchConfig{Timeout: time.Second},
				Store: StoreConfig{Type: "file", UsersFile: "users.json"},
				Batch: BatchConfig{Concurrency: 1},
			},
		},
		{
			name: "file store without path",
			cfg: Config{
				Fetch: FetchConfig{Timeout: time.Second},
				Store: StoreConfig{Type: "file"},
			},
			wantErr: true,
		},
		{
			name: "zero fetch timeout",
			cfg: Config{
				Store: StoreConfig{Type: "file", UsersFile: "users.json"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("clamps batch concurrency", func(t *testing.T) {
		cfg := Config{
			Fetch: FetchConfig{Timeout: time.Second},
			Store: StoreConfig{Type: "file", UsersFile: "users.json"},
		}
		require.NoError(t, validate(&cfg))
		assert.Equal(t, 1, cfg.Batch.Concurrency)
	})
}
