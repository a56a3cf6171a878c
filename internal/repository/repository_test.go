package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a fresh in-memory database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Station{},
		&model.Subscription{},
		&model.PrivateMessage{},
		&model.StationMessage{},
		&model.Unread{},
		&model.PushSubscription{},
	))
	return db
}

func seedTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		ID:       uuid.New(),
		Username: username,
		Email:    fmt.Sprintf("%s@neartalk.local", username),
		Password: "$2a$10$hashhashhashhashhashha",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCandidate(lat, lon float64) *model.Station {
	return &model.Station{
		ID:        uuid.New(),
		Latitude:  lat,
		Longitude: lon,
	}
}

func seedTestStation(t *testing.T, db *gorm.DB, lat, lon float64) *model.Station {
	t.Helper()

	station := &model.Station{
		ID:        uuid.New(),
		Latitude:  lat,
		Longitude: lon,
	}
	require.NoError(t, db.Create(station).Error)
	return station
}
