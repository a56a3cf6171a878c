package repository

import (
	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StationRepository handles database operations for Station and Subscription
type StationRepository struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Create inserts a new station
func (r *StationRepository) Create(station *model.Station) error {
	return r.db.Create(station).Error
}

// FindByID finds a station by its station id
func (r *StationRepository) FindByID(id uuid.UUID) (*model.Station, error) {
	var station model.Station
	err := r.db.Where("station_id = ?", id).First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// FindNearest returns the station minimizing flat Euclidean distance to the
// given point. Ordering by the squared distance gives the same winner without
// needing sqrt in SQL; station_id breaks ties deterministically.
func (r *StationRepository) FindNearest(lat, lon float64) (*model.Station, error) {
	var station model.Station
	err := r.db.
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "((latitude - ?) * (latitude - ?) + (longitude - ?) * (longitude - ?)) ASC, station_id ASC",
			Vars: []interface{}{lat, lat, lon, lon},
		}}).
		First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// Subscribe replaces the user's station membership: the old subscription row
// is deleted and a new one inserted. The two statements are not atomic; a
// crash in between self-heals on the next subscribe call.
func (r *StationRepository) Subscribe(userID, stationID uuid.UUID) (*model.Subscription, error) {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.Subscription{}).Error; err != nil {
		return nil, err
	}
	sub := &model.Subscription{
		UserID:    userID,
		StationID: stationID,
	}
	if err := r.db.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// StationForUser resolves the station the user is currently subscribed to
func (r *StationRepository) StationForUser(userID uuid.UUID) (*model.Station, error) {
	var station model.Station
	err := r.db.
		Joins("JOIN subscriptions ON subscriptions.station_id = stations.station_id").
		Where("subscriptions.user_id = ?", userID).
		First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// SubscriberIDs returns the user ids of all current subscribers of a station
func (r *StationRepository) SubscriberIDs(stationID uuid.UUID) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	err := r.db.Model(&model.Subscription{}).
		Where("station_id = ?", stationID).
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}
