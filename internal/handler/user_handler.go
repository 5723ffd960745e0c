package handler

import (
	"errors"
	"strings"

	"cafe-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func staffParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// userError maps staff management failures onto HTTP statuses.
func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, service.ErrEmailExists):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case service.IsValidationError(err),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrUnknownPrivilege):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.userService.CreateUser(&req, getUserID(c))
	if err != nil {
		return userError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "Staff account created",
		"data":    user.ToResponse(),
	})
}

// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	id, ok := staffParam(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.userService.UpdateUserPrivileges(id, req.Privileges, getUserID(c))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Privileges updated",
		"data":    user.ToResponse(),
	})
}

// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(users)
}

// GetOnShift lists staff currently signed in at a till.
// GET /api/v1/users/on-shift?role=CASHIER
func (h *UserHandler) GetOnShift(c *fiber.Ctx) error {
	staff, err := h.userService.ListOnShift(strings.TrimSpace(c.Query("role")))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"count": len(staff), "data": staff})
}

// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := staffParam(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(user)
}

// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := staffParam(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.IsActive != nil && !*req.IsActive && id.String() == getUserID(c) {
		return c.Status(400).JSON(fiber.Map{"error": "You cannot deactivate your own account"})
	}

	user, err := h.userService.UpdateUser(id, &req, getUserID(c))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Staff account updated",
		"data":    user.ToResponse(),
	})
}

// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := staffParam(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	if id.String() == getUserID(c) {
		return c.Status(400).JSON(fiber.Map{"error": "You cannot delete your own account"})
	}

	if err := h.userService.DeleteUser(id); err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Staff account removed"})
}

// GET /api/v1/users/:id/login-history?limit=50
func (h *UserHandler) GetLoginHistory(c *fiber.Ctx) error {
	id, ok := staffParam(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	history, err := h.userService.GetLoginHistory(id, c.QueryInt("limit", 50))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(history)
}
