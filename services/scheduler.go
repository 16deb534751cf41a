// services/scheduler.go
package services

import (
	"fmt"
	"log"
	"time"

	"account-rewards-bot/utils"

	"github.com/go-co-op/gocron/v2"
)

const lowStockThreshold = 3

// MaintenanceService runs the background jobs that keep the economy
// serviceable: low-stock alerts to the owners and periodic store backups.
type MaintenanceService struct {
	Platforms    *PlatformService
	Bot          *TelegramClient
	OwnerChatIDs []int64
	DBPath       string
	BackupToR2   bool
}

func NewMaintenanceService(platforms *PlatformService, bot *TelegramClient, ownerChatIDs []int64, dbPath string, backupToR2 bool) *MaintenanceService {
	return &MaintenanceService{
		Platforms:    platforms,
		Bot:          bot,
		OwnerChatIDs: ownerChatIDs,
		DBPath:       dbPath,
		BackupToR2:   backupToR2,
	}
}

func (s *MaintenanceService) StartScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every hour: warn owners about platforms running dry
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			platforms, err := s.Platforms.ListPlatforms()
			if err != nil {
				log.Printf("[Scheduler] Low-stock check failed: %v", err)
				return
			}
			for _, p := range platforms {
				if p.StockCount >= lowStockThreshold {
					continue
				}
				text := renderLowStockAlert(p.Name, p.StockCount)
				for _, chatID := range s.OwnerChatIDs {
					if err := s.Bot.SendMessage(chatID, text, nil); err != nil {
						log.Printf("[Scheduler] Failed to notify owner %d: %v", chatID, err)
					}
				}
			}
		}),
	)

	// Every 24 hours: ship a snapshot of the store to R2
	if s.BackupToR2 {
		_, _ = sched.NewJob(
			gocron.DurationJob(24*time.Hour),
			gocron.NewTask(func() {
				key, err := utils.UploadBackupToR2(s.DBPath)
				if err != nil {
					log.Printf("[Scheduler] Backup upload failed: %v", err)
					return
				}
				log.Printf("✅ Store backup uploaded: %s", key)
			}),
		)
	}
}

func renderLowStockAlert(name string, count int64) string {
	return fmt.Sprintf("⚠️ <b>Low stock:</b> %s has %d account(s) left.", name, count)
}
