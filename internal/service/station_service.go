package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/config"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
	"gorm.io/gorm"
)

// StationService resolves the nearest station for a coordinate and owns the
// single-membership subscription invariant
type StationService struct {
	stationRepo *repository.StationRepository
	userRepo    *repository.UserRepository
	messageRepo *repository.MessageRepository
	system      config.SystemConfig
}

func NewStationService(
	stationRepo *repository.StationRepository,
	userRepo *repository.UserRepository,
	messageRepo *repository.MessageRepository,
	system config.SystemConfig,
) *StationService {
	return &StationService{
		stationRepo: stationRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		system:      system,
	}
}

// Round6 rounds a coordinate to the fixed storage precision of 6 decimals
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func validateCoordinate(raw any, min, max float64, fail error) (float64, error) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	default:
		// nil, string or anything else the client sent
		return 0, fail
	}
	if v < min || v > max {
		return 0, fail
	}
	return v, nil
}

// ValidateLocation checks raw lat/lon values. A non-numeric or out-of-range
// latitude and longitude fail with distinct errors.
func ValidateLocation(rawLat, rawLon any) (float64, float64, error) {
	lat, err := validateCoordinate(rawLat, -90, 90, ErrInvalidLatitude)
	if err != nil {
		return 0, 0, err
	}
	lon, err := validateCoordinate(rawLon, -180, 180, ErrInvalidLongitude)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// FindNearest returns the station closest to the rounded coordinate by flat
// Euclidean distance. The plane approximation is deliberate.
func (s *StationService) FindNearest(lat, lon float64) (*model.Station, error) {
	station, err := s.stationRepo.FindNearest(Round6(lat), Round6(lon))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return station, nil
}

// GetStation fetches a station by id
func (s *StationService) GetStation(id uuid.UUID) (*model.Station, error) {
	station, err := s.stationRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: there is no station with id %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return station, nil
}

// Subscribe validates the location, resolves the nearest station (creating
// one at the coordinate when none exists yet) and replaces the user's
// previous membership with the new one.
func (s *StationService) Subscribe(user *model.User, rawLat, rawLon any) (*model.Subscription, error) {
	lat, lon, err := ValidateLocation(rawLat, rawLon)
	if err != nil {
		return nil, err
	}

	station, err := s.FindNearest(lat, lon)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		station, err = s.CreateStation(lat, lon)
	}
	if err != nil {
		return nil, err
	}

	return s.stationRepo.Subscribe(user.ID, station.ID)
}

// CreateStation inserts a new station at the rounded coordinates and seeds it
// with the system welcome message when a system account is configured.
func (s *StationService) CreateStation(lat, lon float64) (*model.Station, error) {
	station := &model.Station{
		ID:        uuid.New(),
		Latitude:  Round6(lat),
		Longitude: Round6(lon),
	}
	if err := s.stationRepo.Create(station); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: station already exists at this location", ErrConflict)
		}
		return nil, err
	}
	s.ensureWelcome(station)
	return station, nil
}

// CreateStationAt validates raw coordinates and creates a station there
func (s *StationService) CreateStationAt(rawLat, rawLon any) (*model.Station, error) {
	lat, lon, err := ValidateLocation(rawLat, rawLon)
	if err != nil {
		return nil, err
	}
	return s.CreateStation(lat, lon)
}

// StationForUser resolves the station the user is currently subscribed to
func (s *StationService) StationForUser(userID uuid.UUID) (*model.Station, error) {
	return s.stationRepo.StationForUser(userID)
}

// ensureWelcome subscribes the system account to a fresh station and posts
// the welcome broadcast. Best effort: a missing system account only logs.
func (s *StationService) ensureWelcome(station *model.Station) {
	if s.system.Username == "" {
		return
	}
	system, err := s.userRepo.FindByUsername(s.system.Username)
	if err != nil {
		log.Printf("station welcome skipped, system account %q not found: %v", s.system.Username, err)
		return
	}
	if _, err := s.stationRepo.Subscribe(system.ID, station.ID); err != nil {
		log.Printf("station welcome: subscribe system account: %v", err)
		return
	}
	msg := &model.StationMessage{
		ID:        uuid.New(),
		SenderID:  system.ID,
		StationID: station.ID,
		Text:      s.system.WelcomeText,
		SentAt:    time.Now().UTC(),
	}
	if err := s.messageRepo.CreateStation(msg); err != nil {
		log.Printf("station welcome: create message: %v", err)
	}
}
