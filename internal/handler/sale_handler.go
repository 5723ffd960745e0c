package handler

import (
	"errors"
	"strconv"
	"time"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: s}
}

// CreateSale rings up a POS sale
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	input, err := service.ParseOrderPayload(c.Body(), true)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	sale, err := h.saleService.CreatePOSSale(c.UserContext(), input, getUserID(c), getUserName(c))
	if err != nil {
		return saleError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

// GetSales lists sales
// GET /api/v1/sales?status=&source=&payment_status=&customer_id=&from=&to=&page=&per_page=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	filter := repository.SaleFilter{
		Status:        model.SaleStatus(c.Query("status")),
		Source:        model.SaleSource(c.Query("source")),
		PaymentStatus: model.PaymentStatus(c.Query("payment_status")),
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid customer_id"})
		}
		customerID := uint(id)
		filter.CustomerID = &customerID
	}
	if c.Query("from") != "" || c.Query("to") != "" {
		from, to, err := dateRange(c, 3650)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
		}
		filter.From = &from
		filter.To = &to
	}

	page := pageFromQuery(c)
	sales, total, err := h.saleService.ListSales(filter, page)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales"})
	}
	return c.JSON(fiber.Map{
		"data":     sales,
		"total":    total,
		"page":     page.Page,
		"per_page": page.PerPage,
	})
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	sale, err := h.saleService.GetSale(id)
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(sale)
}

// UpdateStatus moves a sale through its lifecycle
// PUT /api/v1/sales/:id/status
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.saleService.UpdateStatus(c.UserContext(), id, model.SaleStatus(req.Status), getUserID(c), getUserName(c))
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Status updated", "data": sale})
}

// UpdatePaymentStatus
// PUT /api/v1/sales/:id/payment-status
func (h *SaleHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	var req struct {
		PaymentStatus string `json:"payment_status"`
		Camel         string `json:"paymentStatus"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	status := req.PaymentStatus
	if status == "" {
		status = req.Camel
	}

	sale, err := h.saleService.UpdatePaymentStatus(c.UserContext(), id, model.PaymentStatus(status), getUserID(c), getUserName(c))
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment status updated", "data": sale})
}

// AssignReceiptNumber
// POST /api/v1/sales/:id/receipt-number
func (h *SaleHandler) AssignReceiptNumber(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	sale, err := h.saleService.AssignReceiptNumber(id)
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Receipt number assigned", "data": sale})
}

func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	if err := h.saleService.DeleteSale(id, getUserID(c)); err != nil {
		return saleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale deleted", "deleted_at": time.Now()})
}

func saleError(c *fiber.Ctx, err error) error {
	switch {
	case service.IsValidationError(err), errors.Is(err, service.ErrInvalidSaleStatus):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSaleNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrReceiptNumberTaken):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
