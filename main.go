package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"account-rewards-bot/handlers"
	"account-rewards-bot/middleware"
	"account-rewards-bot/models"
	"account-rewards-bot/services"
	"account-rewards-bot/utils"
	"account-rewards-bot/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "bot.db"
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to open database:", err)
	}

	// A single connection makes sqlite the serialization point for all
	// ledger transactions; same-platform claims queue here instead of
	// racing.
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to access database handle:", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Referral{},
		&models.Platform{},
		&models.StockItem{},
		&models.Key{},
		&models.Review{},
		&models.Channel{},
		&models.AdminLog{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	userService := services.NewUserService(db)
	referralService := services.NewReferralService(db)
	keyService := services.NewKeyService(db)
	claimService := services.NewClaimService(db)
	platformService := services.NewPlatformService(db)
	reviewService := services.NewReviewService(db)
	channelService := services.NewChannelService(db)
	adminLogService := services.NewAdminLogService(db)

	// Drain any stock left in the legacy JSON column into stock_items.
	if err := platformService.ImportLegacyStock(); err != nil {
		log.Fatal("failed to import legacy stock:", err)
	}

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	botUsername := os.Getenv("TELEGRAM_BOT_USERNAME")
	if botUsername == "" {
		log.Fatal("TELEGRAM_BOT_USERNAME environment variable not set")
	}
	botClient := services.NewTelegramClient(botToken)

	acl := middleware.NewAccessListFromEnv()
	ownerChatIDs := parseOwnerChatIDs(os.Getenv("OWNER_IDS"))

	backupToR2 := os.Getenv("R2_BUCKET_NAME") != ""
	if backupToR2 {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set, store backups disabled")
	}

	botHandler := handlers.NewBotHandler(botClient, userService, referralService, keyService, claimService, platformService, reviewService, channelService, botUsername)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.PollUpdates(ctx, botClient, botHandler)

	maintenance := services.NewMaintenanceService(platformService, botClient, ownerChatIDs, dbPath, backupToR2)
	maintenance.StartScheduler()

	app := fiber.New()
	handlers.SetupAdminRoutes(app, acl, &handlers.AdminAPI{
		Platforms: platformService,
		Keys:      keyService,
		Users:     userService,
		Reviews:   reviewService,
		Channels:  channelService,
		AuditLog:  adminLogService,
		Bot:       botClient,
		OwnerIDs:  ownerChatIDs,
	})

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":5100"
	}
	go func() {
		if err := app.Listen(listenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Admin API running on %s", listenAddr)
	log.Println("✅ Chat update poller running")
	log.Println("✅ Maintenance scheduler running")

	<-ctx.Done()
	log.Println("Shutting down...")
}

// parseOwnerChatIDs keeps the numeric entries of OWNER_IDS; usernames in
// the access list cannot receive direct messages.
func parseOwnerChatIDs(raw string) []int64 {
	var ids []int64
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, err := strconv.ParseInt(entry, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
