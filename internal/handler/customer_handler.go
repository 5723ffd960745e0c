package handler

import (
	"errors"

	"cafe-pos/internal/model"
	"cafe-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	service service.CustomerService
}

func NewCustomerHandler(s service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: s}
}

// GetCustomers lists and searches customers
// GET /api/v1/customers?q=&page=&per_page=
func (h *CustomerHandler) GetCustomers(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	customers, total, err := h.service.ListCustomers(c.Query("q"), page)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch customers"})
	}
	return c.JSON(fiber.Map{
		"data":     customers,
		"total":    total,
		"page":     page.Page,
		"per_page": page.PerPage,
	})
}

func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	customer, err := h.service.GetCustomer(id)
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var customer model.Customer
	if err := c.BodyParser(&customer); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.CreateCustomer(&customer, getUserID(c)); err != nil {
		return customerError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Customer created", "data": customer})
}

func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	var customer model.Customer
	if err := c.BodyParser(&customer); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.service.UpdateCustomer(id, &customer, getUserID(c))
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer updated", "data": updated})
}

func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	if err := h.service.DeleteCustomer(id); err != nil {
		return customerError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer deleted"})
}

func customerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCustomerNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrCustomerEmail):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
}
