// Package database opens the MySQL pool and applies the SQL migrations.
package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options describes the connection and the pool limits. Zero pool values
// fall back to the defaults below.
type Options struct {
	User, Pass, Host, Port, Name string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

const (
	defaultMaxOpen     = 25
	defaultMaxLifetime = 30 * time.Minute
	defaultPingTimeout = 5 * time.Second
)

// DriverConfig maps o onto the driver's config. Times are read as UTC
// time.Time. Multi statements stay off; only the migration connection
// enables them.
func (o Options) DriverConfig() *mysql.Config {
	c := mysql.NewConfig()
	c.User = o.User
	c.Passwd = o.Pass
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(o.Host, o.Port)
	c.DBName = o.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c
}

// Open builds the serving pool and pings it before returning.
func Open(ctx context.Context, o Options) (*sql.DB, error) {
	return open(ctx, o, o.DriverConfig())
}

// OpenForMigrations returns a single-connection handle with multi
// statements enabled, so Migrate can send a whole file in one Exec. Close
// it once migrations are applied.
func OpenForMigrations(ctx context.Context, o Options) (*sql.DB, error) {
	o.MaxOpenConns, o.MaxIdleConns = 1, 1
	return open(ctx, o, o.migrationConfig())
}

func (o Options) migrationConfig() *mysql.Config {
	c := o.DriverConfig()
	c.MultiStatements = true
	return c
}

func open(ctx context.Context, o Options, c *mysql.Config) (*sql.DB, error) {
	conn, err := mysql.NewConnector(c)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(conn)

	maxOpen := o.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpen
	}
	maxIdle := o.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	lifetime := o.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = defaultMaxLifetime
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	timeout := o.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
