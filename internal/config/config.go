package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings normalizes the environment name
    "time"    // pool lifetimes

    "github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env            string // application environment (e.g. "development", "production")
    Port           string // HTTP port to listen on
    Version        string // API version reported by /health and the index route
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    DBMaxOpen      int    // pool size; 0 keeps the database package default
    DBMaxIdle      int    // idle connections kept open
    DBConnLifetime time.Duration
    DBMigrate      bool   // apply migrations from MigrationsDir on startup
    MigrationsDir  string // directory holding ordered *.sql migrations
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing
    AdminEmail     string // bootstrap admin account (optional)
    AdminPassword  string // bootstrap admin password (optional)
    CORSOrigins    []string
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when it
// exists; real environment variables win over it.  Required variables are
// enforced by must() and missing values cause the program to exit.
func Load() Config {
    _ = godotenv.Load() // optional: absence of .env is not an error

    return Config{
        Env:            must("APP_ENV"),                                  // environment (development/test/production)
        Port:           must("APP_PORT"),                                 // port to bind the HTTP server
        Version:        envStr("API_VERSION", "v1"),                      // version label
        DBUser:         must("DB_USER"),                                  // database user
        DBPass:         os.Getenv("DB_PASS"),                             // database password (empty allowed)
        DBHost:         must("DB_HOST"),                                  // database host
        DBPort:         must("DB_PORT"),                                  // database port
        DBName:         must("DB_NAME"),                                  // database name
        DBMaxOpen:      envInt("DB_MAX_OPEN_CONNS", 25),                  // pool size
        DBMaxIdle:      envInt("DB_MAX_IDLE_CONNS", 25),                  // idle pool size
        DBConnLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),  // recycle connections
        DBMigrate:      envBool("DB_MIGRATE", false),                     // run migrations at startup
        MigrationsDir:  envStr("MIGRATIONS_DIR", "migrations"),           // migrations location
        JWTSecret:      must("JWT_SECRET"),                               // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),                  // TTL for access tokens in minutes
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),                // TTL for refresh tokens in days
        BcryptCost:     mustInt("BCRYPT_COST"),                           // bcrypt cost factor
        AdminEmail:     os.Getenv("ADMIN_EMAIL"),                         // seeded admin login
        AdminPassword:  os.Getenv("ADMIN_PASSWORD"),                      // seeded admin password
        CORSOrigins:    splitList(envStr("CORS_ORIGINS", "*")),           // allowed origins
    }
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c Config) IsDevelopment() bool {
    switch strings.ToLower(c.Env) {
    case "dev", "development", "local":
        return true
    }
    return false
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

func splitList(s string) []string {
    out := []string{}
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
