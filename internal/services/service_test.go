package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/aurelia/internal/config"
	"github.com/example/aurelia/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		AppPort:           "0",
		PublicBaseURL:     "http://localhost:8080",
		AppDomain:         "aurelia.app",
		JWTSecret:         "test-secret",
		LoginTokenTTL:     15 * time.Minute,
		RazorpayKeySecret: "s3cr3t",
	}
}
