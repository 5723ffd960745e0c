package handler

import (
	"errors"
	"strconv"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateProduct(&product, getUserID(c), getUserName(c)); err != nil {
		return catalogError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateProduct(id, &product, getUserID(c), getUserName(c))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.service.DeleteProduct(id, getUserName(c)); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GetProducts lists products
// Query params: category_id, q, active
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	filter, err := productFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid category_id"})
	}
	filter.ActiveOnly = c.QueryBool("active", false)

	products, err := h.service.GetProducts(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.GetProduct(id)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(product)
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var category model.Category
	if err := c.BodyParser(&category); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.CreateCategory(&category, getUserID(c)); err != nil {
		return catalogError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
	}
	var category model.Category
	if err := c.BodyParser(&category); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.service.UpdateCategory(id, &category, getUserID(c))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": updated})
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
	}
	if err := h.service.DeleteCategory(id); err != nil {
		return catalogError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories(c.QueryBool("active", false))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(categories)
}

// MenuCategories is the public category list for online ordering
// GET /api/v1/menu/categories
func (h *CatalogHandler) MenuCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories(true)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to fetch menu"})
	}
	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// MenuProducts is the public product list, active products only
// GET /api/v1/menu/products?category_id=&q=
func (h *CatalogHandler) MenuProducts(c *fiber.Ctx) error {
	filter, err := productFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid category_id"})
	}
	filter.ActiveOnly = true

	products, err := h.service.GetProducts(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to fetch menu"})
	}
	return c.JSON(fiber.Map{"success": true, "data": products})
}

func productFilter(c *fiber.Ctx) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{Query: c.Query("q")}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return filter, err
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}
	return filter, nil
}

func catalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrCategoryNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSKUExists), errors.Is(err, service.ErrCategoryExists), errors.Is(err, service.ErrCategoryInUse):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
}
