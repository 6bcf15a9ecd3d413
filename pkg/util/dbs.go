package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pg"
	DriverSQLite   = "sqlite"
)

// DBOptions describes how to reach the relational store.
type DBOptions struct {
	Driver       string        `env:"DB_DRIVER"`
	DSN          string        `env:"DSN"`
	Host         string        `env:"DB_HOST"`
	Port         int           `env:"DB_PORT"`
	User         string        `env:"DB_USER"`
	Password     string        `env:"DB_PASSWORD"`
	Name         string        `env:"DB_DATABASE"`
	SSLMode      string        `env:"DB_SSLMODE"`
	Timeout      time.Duration `env:"DB_TIMEOUT"`
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS"`
}

// BuildDSN renders the driver specific connection string. A non-empty DSN
// option is returned untouched.
func (o DBOptions) BuildDSN() string {
	if o.DSN != "" {
		return o.DSN
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	switch o.Driver {
	case DriverMySQL:
		cfg := mysqldriver.NewConfig()
		cfg.User = o.User
		cfg.Passwd = o.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.portOr(3306)))
		cfg.DBName = o.Name
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.Timeout = timeout
		cfg.ReadTimeout = timeout
		cfg.WriteTimeout = timeout
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return cfg.FormatDSN()
	case DriverPostgres:
		sslmode := o.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		secs := int(timeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		parts := []string{"host=" + pgQuote(o.Host), "port=" + strconv.Itoa(o.portOr(5432))}
		for _, kv := range [][2]string{{"user", o.User}, {"password", o.Password}, {"dbname", o.Name}} {
			if kv[1] != "" {
				parts = append(parts, kv[0]+"="+pgQuote(kv[1]))
			}
		}
		parts = append(parts, "sslmode="+sslmode, "connect_timeout="+strconv.Itoa(secs), "TimeZone=UTC")
		return strings.Join(parts, " ")
	}
	name := o.Name
	if name == "" {
		return "file::memory:"
	}
	if strings.Contains(name, "?") {
		return name
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", name, timeout.Milliseconds())
}

// pgQuote quotes a keyword/value connection string value when needed.
func pgQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

func (o DBOptions) portOr(def int) int {
	if o.Port > 0 {
		return o.Port
	}
	return def
}

func createDatabaseInstance(cfg *gorm.Config, driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case DriverMySQL:
		return gorm.Open(mysql.New(mysql.Config{DSN: dsn, SkipInitializeWithVersion: true}), cfg)
	case DriverPostgres:
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

// OpenDatabase opens the store and sizes its connection pool. Opening does
// not require the server to be reachable; connection failures surface when
// a connection is first acquired.
func OpenDatabase(opts DBOptions, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	cfg.DisableAutomaticPing = true
	db, err := createDatabaseInstance(cfg, opts.Driver, opts.BuildDSN())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
