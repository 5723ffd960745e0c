package handler

import (
	"errors"
	"mime/multipart"
	"strings"

	"cafe-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: s}
}

// CreateOrder places an online order
// POST /api/v1/orders (multipart with orderData + image, or JSON)
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var (
		payload []byte
		receipt service.Receipt
	)

	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return orderError(c, fiber.StatusBadRequest, "Invalid multipart form", nil)
		}
		payload = []byte(firstValue(form.Value["orderData"]))
		receipt.Reference = firstValue(form.Value["transactionImage"])

		if fh := firstFile(form.File["transactionImage"], form.File["receipt"]); fh != nil {
			file, err := fh.Open()
			if err != nil {
				return orderError(c, fiber.StatusBadRequest, "Unable to read uploaded image", nil)
			}
			defer file.Close()
			receipt.Upload = &service.ReceiptUpload{Reader: file, Filename: fh.Filename}
		}
	} else {
		payload = c.Body()
	}

	input, err := service.ParseOrderPayload(payload, false)
	if err != nil {
		return orderError(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if userID, ok := c.Locals("user_id").(string); ok {
		input.PlacedBy = userID
	}

	sale, err := h.orderService.CreateOnlineOrder(c.UserContext(), input, receipt)
	if err != nil {
		if service.IsValidationError(err) {
			return orderError(c, fiber.StatusBadRequest, err.Error(), nil)
		}
		zap.L().Error("failed to create order", zap.Error(err))
		return orderError(c, fiber.StatusInternalServerError, "Failed to create order", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":          sale.ID,
			"orderNumber": sale.ID,
			"status":      sale.Status,
			"message":     "Order placed successfully",
		},
	})
}

// TrackOrder lets a customer follow their order
// GET /api/v1/orders/:id/track?phone=
func (h *OrderHandler) TrackOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return orderError(c, fiber.StatusBadRequest, "Invalid order ID", nil)
	}

	tracking, err := h.orderService.TrackOrder(id, c.Query("phone"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return orderError(c, fiber.StatusNotFound, "Order not found", nil)
		}
		return orderError(c, fiber.StatusInternalServerError, "Failed to fetch order", err)
	}
	return c.JSON(fiber.Map{"success": true, "data": tracking})
}

func orderError(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{"success": false, "message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func firstFile(groups ...[]*multipart.FileHeader) *multipart.FileHeader {
	for _, files := range groups {
		if len(files) > 0 {
			return files[0]
		}
	}
	return nil
}
