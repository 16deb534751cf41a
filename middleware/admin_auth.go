// middleware/admin_auth.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AccessList is the capability lookup for privileged operations: two
// configured identity sets, evaluated per request. Owners are implicitly
// admins.
type AccessList struct {
	owners map[string]struct{}
	admins map[string]struct{}
}

// NewAccessListFromEnv builds the access list from the OWNER_IDS and
// ADMIN_IDS environment variables (comma-separated Telegram IDs or
// usernames).
func NewAccessListFromEnv() *AccessList {
	return &AccessList{
		owners: parseIdentitySet(os.Getenv("OWNER_IDS")),
		admins: parseIdentitySet(os.Getenv("ADMIN_IDS")),
	}
}

func parseIdentitySet(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, id := range strings.Split(raw, ",") {
		id = strings.ToLower(strings.TrimSpace(id))
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func (a *AccessList) IsOwner(id string) bool {
	_, ok := a.owners[strings.ToLower(id)]
	return ok
}

func (a *AccessList) IsAdmin(id string) bool {
	if a.IsOwner(id) {
		return true
	}
	_, ok := a.admins[strings.ToLower(id)]
	return ok
}

// AdminAuthMiddleware guards the admin REST surface. The caller identifies
// itself via the X-Admin-ID header; the ID must be in the configured
// admin or owner set.
func AdminAuthMiddleware(acl *AccessList) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID := c.Get("X-Admin-ID")
		if adminID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Admin-ID header",
			})
		}
		if !acl.IsAdmin(adminID) {
			log.Printf("❌ [ADMIN] Access denied for %s on %s", adminID, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "access prohibited",
			})
		}

		c.Locals("admin_id", adminID)
		return c.Next()
	}
}

// OwnerOnly restricts a route to the owner set. Must run after
// AdminAuthMiddleware.
func OwnerOnly(acl *AccessList) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, _ := c.Locals("admin_id").(string)
		if !acl.IsOwner(adminID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "owner access required",
			})
		}
		return c.Next()
	}
}
