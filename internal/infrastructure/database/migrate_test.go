package database

import (
	"io/fs"
	"testing"

	"clinic-booking/config"
	"clinic-booking/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: "5432", User: "clinic", Password: "p@ss word", Name: "booking"}

	assert.Equal(t, "pgx5://clinic:p%40ss%20word@db:5432/booking?sslmode=disable", MigrationURL(cfg))

	cfg.SSLMode = "require"
	assert.Equal(t, "pgx5://clinic:p%40ss%20word@db:5432/booking?sslmode=require", MigrationURL(cfg))
	assert.Equal(t, "host=db user=clinic password=p@ss word dbname=booking port=5432 sslmode=require TimeZone=UTC", DSN(cfg))

	cfg.MigrationsURL = "pgx5://override"
	assert.Equal(t, "pgx5://override", MigrationURL(cfg))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
