// Command seed wipes the database and fills it with the demo accounts.
package main

import (
	"context"
	"fmt"

	"notifyflow/cmd/internal/config"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/domain/sqlite"
	"notifyflow/cmd/internal/utils"

	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	seedPassword = "password123"
	passwordCost = 10
)

type seedUser struct {
	name  string
	email string
	role  entity.Role
}

var seedUsers = []seedUser{
	{"Admin User", "admin@notifyflow.com", entity.RoleAdmin},
	{"Sarah Smith", "sarah@notifyflow.com", entity.RoleUser},
	{"Mike Jones", "mike@notifyflow.com", entity.RoleUser},
	{"Priya Patel", "priya@notifyflow.com", entity.RoleUser},
}

func main() {
	if err := config.LoadEnv(context.Background()); err != nil {
		log.Fatalf("unable to load environment: %v", err)
	}

	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatal(err)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("unable to open database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), passwordCost)
	if err != nil {
		log.Fatalf("unable to hash seed password: %v", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return seed(tx, string(hash))
	}); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Infof("seeded %d users into %s", len(seedUsers), cfg.DBPath)
	log.Infof("admin login: %s / %s", seedUsers[0].email, seedPassword)
}

func seed(tx *gorm.DB, passwordHash string) error {
	now := utils.NowUTC()
	resets := []interface{}{
		&entity.Notification{},
		&entity.Event{},
		&entity.SystemLog{},
		&entity.Connection{},
		&entity.User{},
	}
	for _, model := range resets {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("reset %T: %w", model, err)
		}
	}

	for _, su := range seedUsers {
		user := &entity.User{
			Name:         su.name,
			Email:        su.email,
			Role:         su.role,
			Active:       true,
			PasswordHash: passwordHash,
			LastActiveAt: now,
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user %s: %w", su.email, err)
		}

		event := &entity.Event{
			UserID:  user.ID,
			Type:    "signup",
			Message: fmt.Sprintf("Seed event for user #%d", user.ID),
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("create event for %d: %w", user.ID, err)
		}

		notification := &entity.Notification{
			UserID:  user.ID,
			Type:    entity.NotificationTypeBroadcast,
			Title:   "Platform Update",
			Message: "Seed notification payload",
			Status:  entity.StatusDelivered,
		}
		if err := tx.Create(notification).Error; err != nil {
			return fmt.Errorf("create notification for %d: %w", user.ID, err)
		}

		entry := &entity.SystemLog{
			UserID:   &user.ID,
			Level:    entity.LevelInfo,
			Category: entity.CategorySeed,
			Message:  fmt.Sprintf("Seeded records for user #%d", user.ID),
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create log for %d: %w", user.ID, err)
		}
	}
	return nil
}
