package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestBuildDSN(t *testing.T) {
	mysqlDSN := DBOptions{Driver: DriverMySQL, Host: "db", User: "app", Password: "pw", Name: "neighborwatch"}.BuildDSN()
	assert.Contains(t, mysqlDSN, "app:pw@tcp(db:3306)/neighborwatch")
	assert.Contains(t, mysqlDSN, "parseTime=true")
	assert.Contains(t, mysqlDSN, "charset=utf8mb4")

	pgDSN := DBOptions{Driver: DriverPostgres, Host: "db", Port: 6543, User: "app", Name: "nw", Timeout: 3 * time.Second}.BuildDSN()
	assert.Contains(t, pgDSN, "host=db port=6543")
	assert.Contains(t, pgDSN, "sslmode=disable")
	assert.Contains(t, pgDSN, "connect_timeout=3")
	assert.NotContains(t, pgDSN, "password=")

	quoted := DBOptions{Driver: DriverPostgres, Host: "db", Password: "it's secret"}.BuildDSN()
	assert.Contains(t, quoted, `password='it\'s secret'`)

	assert.Equal(t, "file::memory:", DBOptions{Driver: DriverSQLite}.BuildDSN())
	assert.Equal(t, "nw.db?_pragma=busy_timeout(2000)", DBOptions{Driver: DriverSQLite, Name: "nw.db", Timeout: 2 * time.Second}.BuildDSN())

	assert.Equal(t, "custom", DBOptions{Driver: DriverMySQL, DSN: "custom"}.BuildDSN())
}

func TestOpenDatabaseIsLazy(t *testing.T) {
	db, err := OpenDatabase(DBOptions{Driver: DriverMySQL, Host: "127.0.0.1", Port: 1, Timeout: 100 * time.Millisecond, MaxOpenConns: 3},
		&gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
	assert.Error(t, sqlDB.Ping())
}
