// handlers/admin_routes.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"account-rewards-bot/middleware"
	"account-rewards-bot/models"
	"account-rewards-bot/services"

	"github.com/gofiber/fiber/v2"
)

// AdminAPI bundles the services the admin REST surface needs.
type AdminAPI struct {
	Platforms *services.PlatformService
	Keys      *services.KeyService
	Users     *services.UserService
	Reviews   *services.ReviewService
	Channels  *services.ChannelService
	AuditLog  *services.AdminLogService
	Bot       *services.TelegramClient
	OwnerIDs  []int64
}

func SetupAdminRoutes(app *fiber.App, acl *middleware.AccessList, api *AdminAPI) {
	admin := app.Group("/admin", middleware.AdminAuthMiddleware(acl))

	// --- Platforms & stock ---

	admin.Get("/platforms", func(c *fiber.Ctx) error {
		platforms, err := api.Platforms.ListPlatforms()
		if err != nil {
			log.Printf("DB Error listing platforms: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list platforms"})
		}
		return c.JSON(platforms)
	})

	admin.Post("/platforms", func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "platform name is required"})
		}

		platform, err := api.Platforms.AddPlatform(req.Name)
		if err != nil {
			if errors.Is(err, services.ErrPlatformExists) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "platform already exists"})
			}
			log.Printf("DB Error creating platform: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create platform"})
		}

		api.audit(c, fmt.Sprintf("Added platform %s", platform.Name))
		return c.Status(fiber.StatusCreated).JSON(platform)
	})

	admin.Delete("/platforms/:slug", middleware.OwnerOnly(acl), func(c *fiber.Ctx) error {
		platform, ok, err := api.Platforms.GetPlatformBySlug(c.Params("slug"))
		if err != nil {
			log.Printf("DB Error resolving platform: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "platform not found"})
		}

		if err := api.Platforms.RemovePlatform(platform.Name); err != nil {
			log.Printf("DB Error removing platform: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to remove platform"})
		}

		api.audit(c, fmt.Sprintf("Removed platform %s", platform.Name))
		return c.JSON(fiber.Map{"message": "platform removed"})
	})

	admin.Post("/platforms/:slug/stock", func(c *fiber.Ctx) error {
		platform, ok, err := api.Platforms.GetPlatformBySlug(c.Params("slug"))
		if err != nil {
			log.Printf("DB Error resolving platform: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "platform not found"})
		}

		var req struct {
			Accounts []string `json:"accounts"`
		}
		if err := c.BodyParser(&req); err != nil || len(req.Accounts) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "accounts list is required"})
		}

		added, err := api.Platforms.AddStock(platform.Name, req.Accounts)
		if err != nil {
			log.Printf("DB Error adding stock: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add stock"})
		}

		api.audit(c, fmt.Sprintf("Added %d stock item(s) to %s", added, platform.Name))
		return c.JSON(fiber.Map{"added": added})
	})

	// --- Keys ---

	admin.Get("/keys", func(c *fiber.Ctx) error {
		keys, err := api.Keys.ListKeys()
		if err != nil {
			log.Printf("DB Error listing keys: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list keys"})
		}
		return c.JSON(keys)
	})

	admin.Post("/keys", func(c *fiber.Ctx) error {
		var req struct {
			Type     models.KeyType `json:"type"`
			Quantity int            `json:"quantity"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Type != models.KeyTypeNormal && req.Type != models.KeyTypePremium {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type must be normal or premium"})
		}
		if req.Quantity <= 0 || req.Quantity > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be between 1 and 100"})
		}

		keys, err := api.Keys.GenerateKeys(req.Type, req.Quantity)
		if err != nil {
			log.Printf("DB Error generating keys: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate keys"})
		}

		api.audit(c, fmt.Sprintf("Generated %d %s key(s)", len(keys), req.Type))
		api.notifyOwners(fmt.Sprintf("Admin %s generated %d %s key(s)", adminID(c), len(keys), req.Type))
		return c.Status(fiber.StatusCreated).JSON(keys)
	})

	// --- Users ---

	admin.Get("/users", func(c *fiber.Ctx) error {
		users, err := api.Users.ListUsers()
		if err != nil {
			log.Printf("DB Error listing users: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list users"})
		}
		return c.JSON(users)
	})

	admin.Post("/users/:id/ban", func(c *fiber.Ctx) error {
		return api.setBanned(c, true)
	})

	admin.Post("/users/:id/unban", func(c *fiber.Ctx) error {
		return api.setBanned(c, false)
	})

	admin.Post("/users/:id/points", middleware.OwnerOnly(acl), func(c *fiber.Ctx) error {
		var req struct {
			Delta int `json:"delta"`
		}
		if err := c.BodyParser(&req); err != nil || req.Delta == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "non-zero delta is required"})
		}

		userID := c.Params("id")
		if err := api.Users.AdjustPoints(userID, req.Delta); err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			if errors.Is(err, services.ErrInsufficientBalance) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "balance cannot go negative"})
			}
			log.Printf("DB Error adjusting points: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to adjust points"})
		}

		api.audit(c, fmt.Sprintf("Adjusted points for user %s by %d", userID, req.Delta))
		return c.JSON(fiber.Map{"message": "points adjusted"})
	})

	// --- Reviews ---

	admin.Get("/reviews", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		reviews, err := api.Reviews.Recent(limit)
		if err != nil {
			log.Printf("DB Error listing reviews: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list reviews"})
		}
		return c.JSON(reviews)
	})

	// --- Channels ---

	admin.Get("/channels", func(c *fiber.Ctx) error {
		channels, err := api.Channels.ListChannels()
		if err != nil {
			log.Printf("DB Error listing channels: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list channels"})
		}
		return c.JSON(channels)
	})

	admin.Post("/channels", func(c *fiber.Ctx) error {
		var req struct {
			Link string `json:"link"`
		}
		if err := c.BodyParser(&req); err != nil || req.Link == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "channel link is required"})
		}

		channel, err := api.Channels.AddChannel(req.Link)
		if err != nil {
			log.Printf("DB Error adding channel: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add channel"})
		}

		api.audit(c, fmt.Sprintf("Added channel %s", channel.Link))
		return c.Status(fiber.StatusCreated).JSON(channel)
	})

	admin.Delete("/channels/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "channel id must be numeric"})
		}

		if err := api.Channels.RemoveChannel(uint(id)); err != nil {
			if errors.Is(err, services.ErrChannelNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
			}
			log.Printf("DB Error removing channel: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to remove channel"})
		}

		api.audit(c, fmt.Sprintf("Removed channel %d", id))
		return c.JSON(fiber.Map{"message": "channel removed"})
	})

	// --- Audit log ---

	admin.Get("/logs", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		entries, err := api.AuditLog.Recent(limit)
		if err != nil {
			log.Printf("DB Error listing admin logs: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list logs"})
		}
		return c.JSON(entries)
	})
}

func (api *AdminAPI) setBanned(c *fiber.Ctx, banned bool) error {
	userID := c.Params("id")
	if err := api.Users.SetBanned(userID, banned); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		log.Printf("DB Error updating ban flag: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update user"})
	}

	verb := "Unbanned"
	if banned {
		verb = "Banned"
	}
	api.audit(c, fmt.Sprintf("%s user %s", verb, userID))
	return c.JSON(fiber.Map{"message": "user updated", "banned": banned})
}

// audit records the action; a logging failure never fails the request.
func (api *AdminAPI) audit(c *fiber.Ctx, action string) {
	if err := api.AuditLog.Record(adminID(c), action); err != nil {
		log.Printf("Failed to write admin log: %v", err)
	}
}

// notifyOwners is best-effort; the admin API response does not depend on
// chat delivery.
func (api *AdminAPI) notifyOwners(text string) {
	if api.Bot == nil {
		return
	}
	for _, chatID := range api.OwnerIDs {
		if err := api.Bot.SendMessage(chatID, text, nil); err != nil {
			log.Printf("Failed to notify owner %d: %v", chatID, err)
		}
	}
}

func adminID(c *fiber.Ctx) string {
	id, _ := c.Locals("admin_id").(string)
	return id
}
