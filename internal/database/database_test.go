package database

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres fields",
			cfg:  DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "shop", SSLMode: "disable"},
			want: "host=db user=u password=p dbname=shop port=5432 sslmode=disable",
		},
		{
			name: "postgres url wins",
			cfg:  DatabaseConfig{Driver: "postgres", URL: "postgres://u:p@db/shop", Host: "ignored"},
			want: "postgres://u:p@db/shop",
		},
		{name: "sqlite", cfg: DatabaseConfig{Driver: "sqlite", Path: "shop.sqlite"}, want: "shop.sqlite"},
		{name: "unknown", cfg: DatabaseConfig{Driver: "mysql"}, want: ""},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestStringMasksPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", URL: "postgres://u:hunter2@db/shop", Password: "hunter2"}
	assert.NotContains(t, cfg.String(), "hunter2")
}

func TestInitDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := InitDatabase(context.Background(), DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitDatabaseStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := InitDatabase(ctx, DatabaseConfig{Driver: "postgres", Host: "127.0.0.1", Port: "1", Attempts: 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(3))
	assert.Equal(t, 16*time.Second, backoff(9))
}

func TestSqliteUsesSingleConnection(t *testing.T) {
	sqliteCfg := DatabaseConfig{Driver: "sqlite"}
	pgCfg := DatabaseConfig{Driver: "postgresql"}
	assert.Equal(t, 1, sqliteCfg.pool().maxOpen)
	assert.Equal(t, 25, pgCfg.pool().maxOpen)
}

func TestInitDatabaseAndMigrate(t *testing.T) {
	db, err := InitDatabase(context.Background(), DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}

	for _, req := range DefaultCatalog() {
		pizza, err := models.NewPizza(req.Name, req.Description, req.Image, req.Price, req.Category, req.Toppings, req.Sizes, req.IsVegetarian)
		require.NoError(t, err, req.Name)
		require.NoError(t, db.WithContext(context.Background()).Create(pizza).Error)
	}

	var count int64
	require.NoError(t, db.Model(&models.Pizza{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultCatalog())), count)
}
