package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cafe-pos/internal/events"
	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSaleNotFound       = errors.New("sale not found")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrInvalidSaleStatus  = errors.New("invalid sale status")
	ErrReceiptNumberTaken = errors.New("sale already has a receipt number")
)

type SaleService interface {
	CreatePOSSale(ctx context.Context, in *OrderInput, userID, userName string) (*model.Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus, userID, userName string) (*model.Sale, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, userID, userName string) (*model.Sale, error)
	AssignReceiptNumber(id uuid.UUID) (*model.Sale, error)
	GetSale(id uuid.UUID) (*model.Sale, error)
	ListSales(filter repository.SaleFilter, page repository.Page) ([]model.Sale, int64, error)
	DeleteSale(id uuid.UUID, userID string) error
}

type saleService struct {
	saleRepo      repository.SaleRepository
	customerRepo  repository.CustomerRepository
	notifications NotificationService
	db            *gorm.DB
}

func NewSaleService(saleRepo repository.SaleRepository, customerRepo repository.CustomerRepository, notifications NotificationService, db *gorm.DB) SaleService {
	return &saleService{
		saleRepo:      saleRepo,
		customerRepo:  customerRepo,
		notifications: notifications,
		db:            db,
	}
}

// CreatePOSSale records a completed counter sale rung up by a cashier.
func (s *saleService) CreatePOSSale(ctx context.Context, in *OrderInput, userID, userName string) (*model.Sale, error) {
	if err := validateOrder(in, false); err != nil {
		return nil, err
	}
	in.Customer.Phone = strings.TrimSpace(in.Customer.Phone)
	if in.PaymentMethod == "" {
		in.PaymentMethod = model.PaymentCash
	}

	cashier, err := uuid.Parse(userID)
	if err != nil {
		return nil, newValidationError("Invalid cashier id")
	}

	var (
		sale         *model.Sale
		notification *model.Notification
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer *model.Customer
		if in.Customer.Phone != "" {
			c, err := resolveCustomer(tx, s.customerRepo, in.Customer)
			if err != nil {
				return err
			}
			customer = c
		}

		totals := ComputeTotals(in)
		sale = newSale(in, totals, customer)
		sale.Source = model.SourcePOS
		sale.Status = model.SaleStatusCompleted
		sale.PaymentStatus = in.PaymentStatus
		if sale.PaymentStatus == "" {
			sale.PaymentStatus = model.PaymentPaid
		}
		sale.UserID = &cashier
		sale.CreatedBy = userID
		sale.UpdatedBy = userID

		if err := s.saleRepo.Create(tx, sale); err != nil {
			return err
		}
		for i := range totals.Items {
			totals.Items[i].SaleID = sale.ID
		}
		if err := s.saleRepo.CreateItems(tx, totals.Items); err != nil {
			return err
		}
		sale.Items = totals.Items

		notification, err = s.notifications.CreateSystemNotification(tx,
			model.NotificationPOSSale,
			"POS sale",
			fmt.Sprintf("%s completed a sale of %s", userName, sale.Total.StringFixed(2)),
			sale.ID.String(),
			"sale",
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Dispatch(ctx, notification, events.POSSaleCreated, orderEventPayload(sale))
	return sale, nil
}

func (s *saleService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus, userID, userName string) (*model.Sale, error) {
	if !status.Valid() {
		return nil, ErrInvalidSaleStatus
	}

	var notification *model.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.saleRepo.FindForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		if !current.Status.CanTransitionTo(status) {
			return ErrInvalidTransition
		}

		ok, err := s.saleRepo.UpdateStatus(tx, id, current.Status, status, userID)
		if err != nil {
			return err
		}
		// Someone else moved the sale between read and write
		if !ok {
			return ErrInvalidTransition
		}

		notification, err = s.notifications.CreateSystemNotification(tx,
			model.NotificationOrderStatus,
			"Order status updated",
			fmt.Sprintf("%s changed order %s from %s to %s", userName, shortID(id), current.Status, status),
			id.String(),
			"sale",
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.notifications.Dispatch(ctx, notification, events.OrderStatusChanged, orderEventPayload(sale))
	return sale, nil
}

func (s *saleService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, userID, userName string) (*model.Sale, error) {
	if !status.Valid() {
		return nil, newValidationError("Invalid payment status '%s'", status)
	}

	var notification *model.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.saleRepo.FindForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		if err := s.saleRepo.UpdatePaymentStatus(tx, id, status, userID); err != nil {
			return err
		}
		notification, err = s.notifications.CreateSystemNotification(tx,
			model.NotificationPaymentStatus,
			"Payment status updated",
			fmt.Sprintf("%s changed payment of order %s from %s to %s", userName, shortID(id), current.PaymentStatus, status),
			id.String(),
			"sale",
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.notifications.Dispatch(ctx, notification, events.PaymentStatusChanged, orderEventPayload(sale))
	return sale, nil
}

// AssignReceiptNumber stamps RCP-YYYYMMDD-<short id> once per sale.
func (s *saleService) AssignReceiptNumber(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.GetSale(id)
	if err != nil {
		return nil, err
	}
	if sale.ReceiptNumber != nil && *sale.ReceiptNumber != "" {
		return nil, ErrReceiptNumberTaken
	}

	number := ReceiptNumber(sale)
	if err := s.saleRepo.SetReceiptNumber(id, number); err != nil {
		return nil, err
	}
	sale.ReceiptNumber = &number
	return sale, nil
}

func (s *saleService) GetSale(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) ListSales(filter repository.SaleFilter, page repository.Page) ([]model.Sale, int64, error) {
	return s.saleRepo.FindAll(filter, page)
}

func (s *saleService) DeleteSale(id uuid.UUID, userID string) error {
	if _, err := s.GetSale(id); err != nil {
		return err
	}
	return s.saleRepo.Delete(id, userID)
}

// ReceiptNumber formats the printed receipt number of a sale.
func ReceiptNumber(sale *model.Sale) string {
	return fmt.Sprintf("RCP-%s-%s", sale.SaleDate.Format("20060102"), strings.ToUpper(shortID(sale.ID)))
}

func shortID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
