package db

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Driver knows how to build a DSN for one database/sql driver and which
// error mapper suits it.
type Driver interface {
	// Name is the name the driver registered with database/sql.
	Name() string
	// DSN converts structured options into the driver's DSN format.
	DSN(opts DriverOptions) (string, error)
	// ErrorMapper returns a mapper tuned to this driver.
	ErrorMapper() ErrorMapper
}

// DriverOptions carries connection parameters in a driver-neutral form.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// Extra holds driver-specific key/value parameters.
	Extra map[string]string
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]Driver{
		PostgresDriver{}.Name(): PostgresDriver{},
		SQLiteDriver{}.Name():   SQLiteDriver{},
	}
)

// RegisterDriver adds or replaces a Driver in the registry.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver called name.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("jobly/db: driver %q not registered", name)
	}
	return d, nil
}

// OpenWithDriver builds the DSN for driverName from opts, fills it into cfg
// and opens the database with the driver's error mapper installed.
func OpenWithDriver(driverName string, opts DriverOptions, cfg Config) (*DB, error) {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}

	dsn, err := drv.DSN(opts)
	if err != nil {
		return nil, fmt.Errorf("jobly/db: build DSN: %w", err)
	}
	cfg.DriverName = drv.Name()
	cfg.DSN = dsn

	d, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	d.SetErrorMapper(ChainMapper(drv.ErrorMapper(), DefaultErrorMapper()))
	return d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver is the lib/pq adapter. The binary must blank-import
// github.com/lib/pq.
type PostgresDriver struct{}

func (PostgresDriver) Name() string { return "postgres" }

func (PostgresDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("postgres driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	parts := []string{
		"host=" + pqQuote(o.Host),
		fmt.Sprintf("port=%d", port),
		"dbname=" + pqQuote(o.Database),
		"sslmode=" + pqQuote(sslMode),
	}
	if o.User != "" {
		parts = append(parts, "user="+pqQuote(o.User))
	}
	if o.Password != "" {
		parts = append(parts, "password="+pqQuote(o.Password))
	}
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+pqQuote(o.Extra[k]))
	}
	return strings.Join(parts, " "), nil
}

func (PostgresDriver) ErrorMapper() ErrorMapper { return DefaultErrorMapper() }

// pqQuote quotes a key/value connection string value when needed.
func pqQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver is the mattn/go-sqlite3 adapter.
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string { return "sqlite3" }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	if len(o.Extra) == 0 {
		return o.Database, nil
	}
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make([]string, len(keys))
	for i, k := range keys {
		params[i] = k + "=" + o.Extra[k]
	}
	return o.Database + "?" + strings.Join(params, "&"), nil
}

func (SQLiteDriver) ErrorMapper() ErrorMapper { return DefaultErrorMapper() }

// DSNFromEnv returns DATABASE_URL.
func DSNFromEnv() (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "", fmt.Errorf("jobly/db: DATABASE_URL environment variable not set")
	}
	return dsn, nil
}
