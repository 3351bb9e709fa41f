package migrate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

func sqliteConfig(env string, auto bool) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: env},
		DB: config.DBConfig{
			Driver: "sqlite",
			DSN:    "file:autorun_" + uuid.NewString() + "?mode=memory&cache=shared",
		},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: auto},
	}
}

func openClient(t *testing.T, cfg *config.Config) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), cfg.DB, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestMaybeRunDevAppliesSQLiteSchema(t *testing.T) {
	cfg := sqliteConfig(config.AppEnvDev, true)
	client := openClient(t, cfg)

	require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), client))
	assert.True(t, client.DB().Migrator().HasTable("orders"))
	assert.True(t, client.DB().Migrator().HasTable("commissions"))
}

func TestMaybeRunDevSkipsOutsideDevOrWithoutFlag(t *testing.T) {
	for _, cfg := range []*config.Config{
		sqliteConfig(config.AppEnvProd, true),
		sqliteConfig(config.AppEnvDev, false),
	} {
		client := openClient(t, cfg)
		require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), client))
		assert.False(t, client.DB().Migrator().HasTable("orders"))
	}
}
