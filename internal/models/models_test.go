package models_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"NeighborWatch/internal/models"
	"NeighborWatch/internal/testutil"
	"NeighborWatch/pkg/errors"
	"NeighborWatch/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func ana() models.User {
	return models.User{ID: "user-1", Name: "Ana", HouseNumber: "12B", Phone: "5550001", Password: "s3cret", Lat: 19.43, Lng: -99.13}
}

func TestFindUserByCredentials(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, ana())

	u, err := models.FindUserByCredentials(db, "12B", "5550001")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "s3cret", u.Password)

	u, err = models.FindUserByCredentials(db, "12B", "5550002")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindUserByID(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, ana())

	u, err := models.FindUserByID(db, "user-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ana", u.Name)
	assert.InDelta(t, 19.43, u.Lat, 1e-9)

	u, err = models.FindUserByID(db, "1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestInsertUserDuplicateID(t *testing.T) {
	db := testutil.NewDB(t)
	u := ana()
	require.NoError(t, models.InsertUser(db, &u))

	dup := ana()
	dup.Name = "Other"
	assert.Error(t, models.InsertUser(db, &dup))

	users, err := models.ListUsers(db)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
}

func TestListUsersEmpty(t *testing.T) {
	db := testutil.NewDB(t)
	users, err := models.ListUsers(db)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestInsertAlertAssignsIDAndTimestamp(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, ana())

	a := models.Alert{Type: "robbery", Lat: 1, Lng: 2, UserID: "user-1"}
	id, err := models.InsertAlert(db, &a)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.False(t, a.Timestamp.IsZero())

	b := models.Alert{Type: "fire", UserID: "user-1"}
	id2, err := models.InsertAlert(db, &b)
	require.NoError(t, err)
	assert.Greater(t, id2, id)
}

func TestGroupFeedOrderingAndMembership(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, ana())
	bob := ana()
	bob.ID, bob.Name, bob.Phone = "user-2", "Bob", "5550002"
	testutil.SeedUser(t, db, bob)
	eve := ana()
	eve.ID, eve.Name, eve.Phone = "user-3", "Eve", "5550003"
	testutil.SeedUser(t, db, eve)
	testutil.SeedMembers(t, db, 7, "user-1", "user-2")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	earlier := testutil.SeedAlert(t, db, models.Alert{Type: "noise", UserID: "user-1", Timestamp: base})
	later := testutil.SeedAlert(t, db, models.Alert{Type: "fire", UserID: "user-2", Timestamp: base.Add(time.Hour)})
	testutil.SeedAlert(t, db, models.Alert{Type: "outsider", UserID: "user-3", Timestamp: base.Add(2 * time.Hour)})

	ids, err := models.ListGroupMemberUserIDs(db, 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, ids)

	rows, err := models.ListAlertsForUsers(db, ids)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, later.ID, rows[0].ID)
	assert.Equal(t, earlier.ID, rows[1].ID)
	assert.Equal(t, "Bob", rows[0].Name)
	assert.Equal(t, "user-2", rows[0].UserID)
	assert.Equal(t, "12B", rows[1].HouseNumber)
	assert.True(t, later.Timestamp.Equal(rows[0].Timestamp))
}

func TestGroupFeedUnknownGroupAndEmptyInput(t *testing.T) {
	db := testutil.NewDB(t)

	ids, err := models.ListGroupMemberUserIDs(db, 404)
	require.NoError(t, err)
	assert.Empty(t, ids)

	rows, err := models.ListAlertsForUsers(db, nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestListAlertsForUsersKeepsValuesParameterized(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, ana())
	testutil.SeedAlert(t, db, models.Alert{Type: "noise", UserID: "user-1", Timestamp: time.Now().UTC()})

	rows, err := models.ListAlertsForUsers(db, []string{"x') OR ('1'='1"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCheckPassword(t *testing.T) {
	assert.True(t, models.CheckPassword("s3cret", "s3cret"))
	assert.False(t, models.CheckPassword("s3cret", "S3cret"))
	assert.False(t, models.CheckPassword("s3cret", ""))

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, models.CheckPassword(string(hash), "s3cret"))
	assert.False(t, models.CheckPassword(string(hash), "wrong"))
	assert.False(t, models.CheckPassword(string(hash), string(hash)))
}

func TestProviderAcquire(t *testing.T) {
	db := testutil.NewDB(t)
	p := models.NewProvider(db, time.Second)

	var got *models.User
	err := p.Acquire(context.Background(), func(conn *gorm.DB) error {
		u := ana()
		if err := models.InsertUser(conn, &u); err != nil {
			return err
		}
		var err error
		got, err = models.FindUserByID(conn, "user-1")
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	sentinel := errors.NotFound("user not found")
	err = p.Acquire(context.Background(), func(*gorm.DB) error { return sentinel })
	assert.Same(t, sentinel, err)
}

func TestProviderReportsUnavailableStore(t *testing.T) {
	db, err := util.OpenDatabase(util.DBOptions{
		Driver:  util.DriverMySQL,
		Host:    "127.0.0.1",
		Port:    1,
		User:    "nobody",
		Name:    "nowhere",
		Timeout: 200 * time.Millisecond,
	}, &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	p := models.NewProvider(db, time.Second)

	called := false
	err = p.Acquire(context.Background(), func(*gorm.DB) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, errors.GetCode(err))
	assert.Equal(t, "database connection error", errors.GetMessage(err))

	assert.Error(t, p.Ping(context.Background()))
}

func TestProviderAcquireKeepsQueriesIndependent(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, ana())
	testutil.SeedMembers(t, db, 1, "user-1")
	a := testutil.SeedAlert(t, db, models.Alert{Type: "noise", UserID: "user-1", Timestamp: time.Now().UTC()})
	p := models.NewProvider(db, time.Second)

	var rows []models.AlertWithAuthor
	err := p.Acquire(context.Background(), func(conn *gorm.DB) error {
		ids, err := models.ListGroupMemberUserIDs(conn, 1)
		if err != nil {
			return err
		}
		rows, err = models.ListAlertsForUsers(conn, ids)
		return err
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.ID, rows[0].ID)

	err = p.Acquire(context.Background(), func(conn *gorm.DB) error {
		u, err := models.FindUserByCredentials(conn, "12B", "5550001")
		if err != nil {
			return err
		}
		require.NotNil(t, u)
		missing, err := models.FindUserByID(conn, "user-2")
		if err != nil {
			return err
		}
		assert.Nil(t, missing)
		u, err = models.FindUserByID(conn, "user-1")
		require.NotNil(t, u)
		return err
	})
	require.NoError(t, err)
}
