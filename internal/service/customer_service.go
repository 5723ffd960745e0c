package service

import (
	"errors"
	"strings"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerEmail    = errors.New("customer email already exists")
)

type CustomerService interface {
	CreateCustomer(req *model.Customer, userID string) error
	UpdateCustomer(id uint, req *model.Customer, userID string) (*model.Customer, error)
	DeleteCustomer(id uint) error
	GetCustomer(id uint) (*model.Customer, error)
	ListCustomers(query string, page repository.Page) ([]model.Customer, int64, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) CreateCustomer(req *model.Customer, userID string) error {
	normalizeCustomer(req)
	if err := validator.Check(req); err != nil {
		return err
	}
	if req.Email != nil {
		if existing, _ := s.customerRepo.FindByEmail(nil, *req.Email); existing != nil {
			return ErrCustomerEmail
		}
	}

	req.ID = 0
	req.Sales = nil
	req.CreatedBy = userID
	req.UpdatedBy = userID
	return s.customerRepo.Create(nil, req)
}

func (s *customerService) UpdateCustomer(id uint, req *model.Customer, userID string) (*model.Customer, error) {
	normalizeCustomer(req)
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	existing, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		if other, _ := s.customerRepo.FindByEmail(nil, *req.Email); other != nil && other.ID != id {
			return nil, ErrCustomerEmail
		}
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Address = req.Address
	existing.City = req.City
	existing.State = req.State
	existing.PostalCode = req.PostalCode
	existing.Country = req.Country
	existing.Notes = req.Notes
	existing.IsActive = req.IsActive
	existing.UpdatedBy = userID
	existing.Sales = nil

	if err := s.customerRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *customerService) DeleteCustomer(id uint) error {
	if _, err := s.GetCustomer(id); err != nil {
		return err
	}
	return s.customerRepo.Delete(id)
}

// GetCustomer returns the customer with the most recent sales preloaded.
func (s *customerService) GetCustomer(id uint) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) ListCustomers(query string, page repository.Page) ([]model.Customer, int64, error) {
	return s.customerRepo.FindAll(query, page)
}

// normalizeCustomer trims input and stores a blank email as NULL.
func normalizeCustomer(c *model.Customer) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Email != nil {
		email := strings.TrimSpace(*c.Email)
		if email == "" {
			c.Email = nil
		} else {
			c.Email = &email
		}
	}
}
