package service

import (
	"errors"
	"fmt"
	"strings"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSKUExists        = errors.New("SKU already exists")
	ErrCategoryExists   = errors.New("category name already exists")
	ErrCategoryInUse    = errors.New("category still has products")
)

type CatalogService interface {
	CreateCategory(req *model.Category, userID string) error
	UpdateCategory(id uint, req *model.Category, userID string) (*model.Category, error)
	DeleteCategory(id uint) error
	GetCategories(activeOnly bool) ([]model.Category, error)
	GetCategory(id uint) (*model.Category, error)

	CreateProduct(req *model.Product, userID, userName string) error
	UpdateProduct(id uint, req *model.Product, userID, userName string) (*model.Product, error)
	DeleteProduct(id uint, userName string) error
	GetProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProduct(id uint) (*model.Product, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	hub          Broadcaster
}

func NewCatalogService(pRepo repository.ProductRepository, cRepo repository.CategoryRepository, hub Broadcaster) CatalogService {
	return &catalogService{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		hub:          hub,
	}
}

func (s *catalogService) CreateCategory(req *model.Category, userID string) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Check(req); err != nil {
		return err
	}
	if existing, _ := s.categoryRepo.FindByName(req.Name); existing != nil {
		return ErrCategoryExists
	}

	req.ID = 0
	req.CreatedBy = userID
	req.UpdatedBy = userID
	return s.categoryRepo.Create(req)
}

func (s *catalogService) UpdateCategory(id uint, req *model.Category, userID string) (*model.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	existing, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if other, _ := s.categoryRepo.FindByName(req.Name); other != nil && other.ID != id {
		return nil, ErrCategoryExists
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Image = req.Image
	existing.SortOrder = req.SortOrder
	existing.IsActive = req.IsActive
	existing.UpdatedBy = userID
	existing.Products = nil

	if err := s.categoryRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteCategory refuses to orphan products that still reference the category.
func (s *catalogService) DeleteCategory(id uint) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.categoryRepo.Delete(id)
}

func (s *catalogService) GetCategories(activeOnly bool) ([]model.Category, error) {
	return s.categoryRepo.FindAll(activeOnly)
}

func (s *catalogService) GetCategory(id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *catalogService) CreateProduct(req *model.Product, userID, userName string) error {
	// 1. Basic struct validation
	normalizeSKU(req)
	if err := validator.Check(req); err != nil {
		return err
	}

	// 2. SKU must be unique when given
	if req.SKU != nil {
		if existing, _ := s.productRepo.FindBySKU(*req.SKU); existing != nil {
			return ErrSKUExists
		}
	}
	if err := s.checkCategory(req.CategoryID); err != nil {
		return err
	}

	req.ID = 0
	req.Category = nil
	req.CreatedBy = userID
	req.UpdatedBy = userID
	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	s.broadcastProduct("product_created", req, userID, fmt.Sprintf("%s created product '%s'", userName, req.Name))
	return nil
}

func (s *catalogService) UpdateProduct(id uint, req *model.Product, userID, userName string) (*model.Product, error) {
	normalizeSKU(req)
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	existing, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if req.SKU != nil {
		if other, _ := s.productRepo.FindBySKU(*req.SKU); other != nil && other.ID != id {
			return nil, ErrSKUExists
		}
	}
	if err := s.checkCategory(req.CategoryID); err != nil {
		return nil, err
	}

	oldPrice := existing.Price
	existing.SKU = req.SKU
	existing.Name = req.Name
	existing.Description = req.Description
	existing.Price = req.Price
	existing.Stock = req.Stock
	existing.Image = req.Image
	existing.IsActive = req.IsActive
	existing.CategoryID = req.CategoryID
	existing.UpdatedBy = userID

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s updated product '%s'", userName, existing.Name)
	if !oldPrice.Equal(existing.Price) {
		msg = fmt.Sprintf("%s changed price of '%s' from %s to %s", userName, existing.Name, oldPrice.StringFixed(2), existing.Price.StringFixed(2))
	}
	s.broadcastProduct("product_updated", existing, userID, msg)
	return s.GetProduct(id)
}

func (s *catalogService) DeleteProduct(id uint, userName string) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	s.broadcastProduct("product_deleted", product, "", fmt.Sprintf("%s deleted product '%s'", userName, product.Name))
	return nil
}

func (s *catalogService) GetProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(filter)
}

func (s *catalogService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) checkCategory(id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.GetCategory(*id)
	return err
}

func (s *catalogService) broadcastProduct(action string, p *model.Product, userID, message string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastJSON(map[string]interface{}{
		"type":   "catalog_update",
		"action": action,
		"product": map[string]interface{}{
			"id":          p.ID,
			"sku":         p.SKU,
			"name":        p.Name,
			"price":       p.Price,
			"stock":       p.Stock,
			"is_active":   p.IsActive,
			"category_id": p.CategoryID,
		},
		"user_id": userID,
		"message": message,
	})
}

func normalizeSKU(p *model.Product) {
	if p.SKU == nil {
		return
	}
	sku := strings.TrimSpace(*p.SKU)
	if sku == "" {
		p.SKU = nil
		return
	}
	p.SKU = &sku
}
