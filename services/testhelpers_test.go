package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"account-rewards-bot/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite store with the same settings as
// production: error translation on, a single connection as the
// serialization point.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?_busy_timeout=5000", path)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Referral{},
		&models.Platform{},
		&models.StockItem{},
		&models.Key{},
		&models.Review{},
		&models.Channel{},
		&models.AdminLog{},
	))
	return db
}

// createTestUser inserts a user with an explicit balance. points must be
// non-zero; a zero value would be replaced by the column default.
func createTestUser(t *testing.T, db *gorm.DB, telegramID string, points int) models.User {
	t.Helper()

	user := models.User{
		TelegramID: telegramID,
		Username:   "user_" + telegramID,
		JoinDate:   time.Now().UTC(),
		Points:     points,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createTestPlatform inserts a platform with the given stock credentials.
func createTestPlatform(t *testing.T, db *gorm.DB, name string, stock ...string) models.Platform {
	t.Helper()

	platforms := NewPlatformService(db)
	platform, err := platforms.AddPlatform(name)
	require.NoError(t, err)
	if len(stock) > 0 {
		_, err = platforms.AddStock(name, stock)
		require.NoError(t, err)
	}
	return platform
}

func userPoints(t *testing.T, db *gorm.DB, telegramID string) int {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, "telegram_id = ?", telegramID).Error)
	return user.Points
}

func createTestKey(t *testing.T, db *gorm.DB, code string, keyType models.KeyType, points int) models.Key {
	t.Helper()

	key := models.Key{Code: code, Type: keyType, Points: points}
	require.NoError(t, db.Create(&key).Error)
	return key
}
