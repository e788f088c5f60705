package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverConfig(t *testing.T) {
	c := Options{User: "app", Pass: "s3cret", Host: "db.internal", Port: "3307", Name: "hotel_booking"}.DriverConfig()
	assert.Equal(t, "db.internal:3307", c.Addr)
	assert.True(t, c.ParseTime)
	assert.False(t, c.MultiStatements, "the serving pool runs one statement per call")
	assert.Equal(t, time.UTC, c.Loc)

	dsn := c.FormatDSN()
	assert.True(t, strings.HasPrefix(dsn, "app:s3cret@tcp(db.internal:3307)/hotel_booking?"), dsn)
	assert.NotContains(t, dsn, "multiStatements")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDriverConfigIPv6Host(t *testing.T) {
	c := Options{User: "root", Host: "::1", Port: "3306", Name: "x"}.DriverConfig()
	assert.Equal(t, "[::1]:3306", c.Addr)
}

func TestOpenFailsWhenUnreachable(t *testing.T) {
	// port 1 on loopback refuses immediately
	_, err := Open(testContext(t), Options{User: "root", Host: "127.0.0.1", Port: "1", Name: "x", PingTimeout: time.Second})
	require.Error(t, err)
}

func TestMigrationConfigAllowsMultiStatements(t *testing.T) {
	o := Options{User: "app", Host: "db", Port: "3306", Name: "hotel_booking"}
	assert.True(t, o.migrationConfig().MultiStatements)
	assert.False(t, o.DriverConfig().MultiStatements)
}

func TestOpenForMigrationsFailsWhenUnreachable(t *testing.T) {
	_, err := OpenForMigrations(testContext(t), Options{User: "root", Host: "127.0.0.1", Port: "1", Name: "x", PingTimeout: time.Second})
	require.Error(t, err)
}

// testContext mirrors testing.T.Context (Go 1.24+): canceled when the test ends.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
