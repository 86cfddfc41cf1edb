package db

import (
	"pokerclub/config"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitDB(t *testing.T) {
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Skipf("Config not available: %v", err)
	}

	if _, err := InitDB(&cfg.Database); err != nil {
		t.Skipf("Database not available: %v", err)
	}

	assert.NotNil(t, DB, "DB should not be nil")

	sqlDB, err := DB.DB()
	assert.NoError(t, err)
	err = sqlDB.Ping()
	assert.NoError(t, err, "Should be able to ping the database")
}

func TestMigrate(t *testing.T) {
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Skipf("Config not available: %v", err)
	}

	if _, err := InitDB(&cfg.Database); err != nil {
		t.Skipf("Database not available: %v", err)
	}

	err = Migrate()
	assert.NoError(t, err, "Database migration should not return an error")
}
