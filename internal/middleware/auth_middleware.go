package middleware

import (
	"errors"
	"strings"

	"cafe-pos/internal/repository"
	"cafe-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

var errNoToken = errors.New("Missing authorization token")

// authenticate resolves the bearer token to claims and checks the single
// session against the database.
func authenticate(c *fiber.Ctx, userRepo repository.UserRepository) (*jwt.Claims, error) {
	token, err := jwt.FromHeader(c.Get(fiber.HeaderAuthorization))
	if errors.Is(err, jwt.ErrMissingToken) {
		return nil, errNoToken
	}
	if err != nil {
		return nil, errors.New("Invalid authorization format. Use: Bearer <token>")
	}

	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return nil, errors.New("Invalid or expired token")
	}

	user, err := userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, errors.New("User not found")
	}
	if !user.IsActive {
		return nil, errors.New("User account is inactive")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, errors.New("Session expired (logged in on another device)")
	}
	return claims, nil
}

func setUser(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals("user_id", claims.UserID.String())
	c.Locals("user_email", claims.Email)
	c.Locals("user_name", claims.Name)
	c.Locals("user_role", claims.RoleCode)
	c.Locals("user_privileges", claims.Privileges)
}

// QueryToken lifts a token passed as ?<param>= into the Authorization header.
// Browsers cannot set headers on a websocket upgrade. A header already on the
// request wins.
func QueryToken(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			if token := strings.TrimSpace(c.Query(param)); token != "" {
				c.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
			}
		}
		return c.Next()
	}
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, userRepo)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		setUser(c, claims)
		return c.Next()
	}
}

// OptionalAuth sets user info when a valid token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func OptionalAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, userRepo)
		if errors.Is(err, errNoToken) {
			return c.Next()
		}
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
		setUser(c, claims)
		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
