package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/config"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Seeds the system account, a handful of demo users and a few stations so a
// fresh environment has something to subscribe to.
func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	log.Println("connected to database")

	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// System account posting welcome messages to new stations
	if cfg.System.Username != "" {
		seedUser(db, cfg.System.Username, cfg.System.Username+"@neartalk.local", string(hashedPassword))
	}

	log.Println("seeding 10 users...")
	for i := 1; i <= 10; i++ {
		username := fmt.Sprintf("user%d", i)
		seedUser(db, username, username+"@neartalk.local", string(hashedPassword))
	}

	// A few stations around Novi Sad, matching the demo client's map
	log.Println("seeding stations...")
	coords := [][2]float64{
		{45.267136, 19.833549},
		{45.254410, 19.842550},
		{45.246170, 19.851940},
		{45.260870, 19.810320},
	}
	for _, c := range coords {
		station := model.Station{
			ID:        uuid.New(),
			Latitude:  service.Round6(c[0]),
			Longitude: service.Round6(c[1]),
		}
		if err := db.Create(&station).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			log.Printf("failed to create station at (%f, %f): %v", c[0], c[1], err)
		} else {
			log.Printf("created station %s at (%f, %f)", station.ID, station.Latitude, station.Longitude)
		}
	}

	log.Println("seeding completed")
}

func seedUser(db *gorm.DB, username, email, hashedPassword string) {
	var existing model.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return
	}

	user := model.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("failed to create user %s: %v", username, err)
	} else {
		log.Printf("created user: %s | email: %s", username, email)
	}
}
