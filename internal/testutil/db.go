// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"NeighborWatch/internal/models"
	"NeighborWatch/pkg/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated SQLite database living in t's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.OpenDatabase(util.DBOptions{
		Driver:       util.DriverSQLite,
		Name:         filepath.Join(t.TempDir(), "neighborwatch.db"),
		Timeout:      5 * time.Second,
		MaxOpenConns: 4,
	}, &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts a user with a plaintext password.
func SeedUser(t *testing.T, db *gorm.DB, u models.User) models.User {
	t.Helper()
	require.NoError(t, db.Create(&u).Error)
	return u
}

// SeedMembers adds userIDs to groupID.
func SeedMembers(t *testing.T, db *gorm.DB, groupID int64, userIDs ...string) {
	t.Helper()
	for _, id := range userIDs {
		require.NoError(t, db.Create(&models.GroupMembership{GroupID: groupID, UserID: id}).Error)
	}
}

// SeedAlert inserts an alert with an explicit timestamp.
func SeedAlert(t *testing.T, db *gorm.DB, a models.Alert) models.Alert {
	t.Helper()
	require.NoError(t, db.Create(&a).Error)
	return a
}
