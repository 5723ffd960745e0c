package handler

import (
	"errors"
	"fmt"

	"cafe-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetSalesSummary returns totals for a period
// Query params: from, to (YYYY-MM-DD, default last 30 days)
func (h *ReportHandler) GetSalesSummary(c *fiber.Ctx) error {
	from, to, err := dateRange(c, 30)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
	}
	summary, err := h.service.GetSalesSummary(from, to)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales summary"})
	}
	return c.JSON(fiber.Map{"from": from, "to": to, "data": summary})
}

// GetDailySales returns the daily series for charts
func (h *ReportHandler) GetDailySales(c *fiber.Ctx) error {
	from, to, err := dateRange(c, 7)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
	}
	data, err := h.service.GetDailySales(from, to)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch daily sales"})
	}
	return c.JSON(fiber.Map{"from": from, "to": to, "data": data})
}

func (h *ReportHandler) GetTopProducts(c *fiber.Ctx) error {
	from, to, err := dateRange(c, 30)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
	}
	data, err := h.service.GetTopProducts(from, to, c.QueryInt("limit", 10))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch top products"})
	}
	return c.JSON(fiber.Map{"from": from, "to": to, "data": data})
}

func (h *ReportHandler) GetPaymentBreakdown(c *fiber.Ctx) error {
	from, to, err := dateRange(c, 30)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
	}
	data, err := h.service.GetPaymentBreakdown(from, to)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payment breakdown"})
	}
	return c.JSON(fiber.Map{"from": from, "to": to, "data": data})
}

// GetDashboardStats returns overview statistics
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}

// ExportSales downloads sales rows
// GET /api/v1/reports/sales/export?format=csv|xlsx&from=&to=
func (h *ReportHandler) ExportSales(c *fiber.Ctx) error {
	from, to, err := dateRange(c, 30)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
	}
	export, err := h.service.ExportSales(from, to, c.Query("format", service.ExportCSV))
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			return c.Status(400).JSON(fiber.Map{"error": "format must be csv or xlsx"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to export sales"})
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	return c.Send(export.Data)
}
