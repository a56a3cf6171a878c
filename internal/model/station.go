package model

import "github.com/google/uuid"

// Station is a geographically-anchored broadcast chat room. Coordinates are
// stored rounded to 6 decimal places and the pair is unique, so two stations
// can never share a rounded location.
type Station struct {
	ID        uuid.UUID `json:"station_id" gorm:"type:uuid;primaryKey;column:station_id"`
	Latitude  float64   `json:"latitude" gorm:"type:numeric(10,6);not null;uniqueIndex:idx_station_location"`
	Longitude float64   `json:"longitude" gorm:"type:numeric(10,6);not null;uniqueIndex:idx_station_location"`
}

// Subscription links a user to their single active station. The unique index
// on user_id enforces one membership per user; re-subscribing replaces the
// previous row.
type Subscription struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	StationID uuid.UUID `json:"station_id" gorm:"type:uuid;index;not null"`
}
