package db

import (
	"fmt"
	"log"

	"pokerclub/config"
	"pokerclub/internal/db/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Println("Connected to the database")
	return DB, nil
}

func Migrate() error {
	err := DB.AutoMigrate(&models.User{}, &models.Tournament{}, &models.Registration{}, &models.PlayerChips{}, &models.Rating{}, &models.TournamentTable{}, &models.TableAssignment{})
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
