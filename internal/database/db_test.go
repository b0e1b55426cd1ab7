package database

import (
	"testing"

	"github.com/aethra/catalog-admin/internal/config"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSNFromParts(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Driver: "postgres", Host: "db", Port: "5432",
		User: "admin", Password: "pw", Name: "panel", SSLMode: "disable",
	})
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=admin password=pw dbname=panel sslmode=disable", dsn)
}

func TestPostgresDSNFromURL(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Driver: "postgres",
		URL:    "postgres://admin:pw@db.example.com:6543/panel?sslmode=require",
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=db.example.com")
	assert.Contains(t, dsn, "port=6543")
	assert.Contains(t, dsn, "dbname=panel")
	assert.Contains(t, dsn, "sslmode=require")

	_, err = DSN(config.DatabaseConfig{Driver: "postgres", URL: "mysql://nope"})
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Driver: "mysql", Host: "db", Port: "3306",
		User: "admin", Password: "pw", Name: "panel",
	})
	require.NoError(t, err)

	mc, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "admin", mc.User)
	assert.Equal(t, "db:3306", mc.Addr)
	assert.Equal(t, "panel", mc.DBName)
	assert.True(t, mc.MultiStatements)
	assert.True(t, mc.ParseTime)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := DSN(config.DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestMigrationsPerDialect(t *testing.T) {
	for _, dialect := range []string{"postgres", "mysql"} {
		files, err := Migrations(dialect)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_operators.sql", "002_audit_entries.sql"}, files)
	}

	_, err := Migrations("sqlite")
	assert.Error(t, err)
}
