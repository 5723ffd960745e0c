package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cafe-pos/internal/events"
	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/internal/upload"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrReceiptStore  = errors.New("failed to store transaction image")
)

// ReceiptUpload is an uploaded proof-of-payment image.
type ReceiptUpload struct {
	Reader   io.Reader
	Filename string
}

// Receipt carries the proof-of-payment sources of one request. An uploaded
// file wins over a pre-uploaded filename reference.
type Receipt struct {
	Upload    *ReceiptUpload
	Reference string
}

func (r Receipt) reference(fromPayload string) string {
	ref := strings.TrimSpace(r.Reference)
	if ref == "" {
		ref = strings.TrimSpace(fromPayload)
	}
	if ref == "" {
		return ""
	}
	base := filepath.Base(ref)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

func (r Receipt) present(fromPayload string) bool {
	return r.Upload != nil || r.reference(fromPayload) != ""
}

// OrderTracking is the public view of an online order.
type OrderTracking struct {
	ID            uuid.UUID           `json:"id"`
	Status        model.SaleStatus    `json:"status"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Total         string              `json:"total"`
	ItemCount     int                 `json:"itemCount"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type OrderService interface {
	CreateOnlineOrder(ctx context.Context, in *OrderInput, receipt Receipt) (*model.Sale, error)
	TrackOrder(id uuid.UUID, phone string) (*OrderTracking, error)
}

type orderService struct {
	saleRepo      repository.SaleRepository
	customerRepo  repository.CustomerRepository
	notifications NotificationService
	images        upload.Store
	db            *gorm.DB
}

func NewOrderService(saleRepo repository.SaleRepository, customerRepo repository.CustomerRepository, notifications NotificationService, images upload.Store, db *gorm.DB) OrderService {
	return &orderService{
		saleRepo:      saleRepo,
		customerRepo:  customerRepo,
		notifications: notifications,
		images:        images,
		db:            db,
	}
}

func (s *orderService) CreateOnlineOrder(ctx context.Context, in *OrderInput, receipt Receipt) (*model.Sale, error) {
	// 1. Validate before touching the database
	if err := validateOrder(in, true); err != nil {
		return nil, err
	}
	in.Customer.Phone = strings.TrimSpace(in.Customer.Phone)
	if in.PaymentMethod == "" {
		in.PaymentMethod = model.PaymentCash
	}
	if in.PaymentMethod == model.PaymentMobilePayment && !receipt.present(in.TransactionImage) {
		return nil, newValidationError("Transaction image is required for mobile money payments")
	}

	var (
		sale         *model.Sale
		notification *model.Notification
		storedFile   string
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 2. Resolve the buyer by phone
		customer, err := resolveCustomer(tx, s.customerRepo, in.Customer)
		if err != nil {
			return err
		}

		// 3. Store the receipt image
		image := receipt.reference(in.TransactionImage)
		if receipt.Upload != nil {
			if s.images == nil {
				return ErrReceiptStore
			}
			ref, err := s.images.Save(ctx, receipt.Upload.Reader, receipt.Upload.Filename)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrReceiptStore, err)
			}
			storedFile = ref
			image = ref
		}

		// 4. Insert header and lines
		totals := ComputeTotals(in)
		sale = newSale(in, totals, customer)
		sale.Source = model.SourceOnline
		sale.Status = model.SaleStatusPending
		sale.PaymentStatus = in.PaymentStatus
		if sale.PaymentStatus == "" {
			sale.PaymentStatus = model.PaymentPending
		}
		sale.TransactionImage = image
		sale.CreatedBy = "online"
		if in.PlacedBy != "" {
			sale.CreatedBy = in.PlacedBy
		}
		sale.UpdatedBy = sale.CreatedBy

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

		// 5. Staff notification, same transaction
		notification, err = s.notifications.CreateSystemNotification(tx,
			model.NotificationNewOrder,
			"New online order",
			fmt.Sprintf("New order from %s, total %s", describeCustomer(in.Customer), sale.Total.StringFixed(2)),
			sale.ID.String(),
			"sale",
		)
		return err
	})

	if err != nil {
		if storedFile != "" {
			if rerr := s.images.Remove(context.Background(), storedFile); rerr != nil {
				zap.L().Warn("failed to remove receipt of rolled back order", zap.String("file", storedFile), zap.Error(rerr))
			}
		}
		return nil, err
	}

	s.notifications.Dispatch(ctx, notification, events.OrderCreated, orderEventPayload(sale))
	return sale, nil
}

func (s *orderService) TrackOrder(id uuid.UUID, phone string) (*OrderTracking, error) {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	// Orders are only visible to the phone that placed them
	if sale.Source != model.SourceOnline || strings.TrimSpace(phone) == "" || sale.CustomerPhone != strings.TrimSpace(phone) {
		return nil, ErrOrderNotFound
	}
	return &OrderTracking{
		ID:            sale.ID,
		Status:        sale.Status,
		PaymentStatus: sale.PaymentStatus,
		PaymentMethod: sale.PaymentMethod,
		Total:         sale.Total.StringFixed(2),
		ItemCount:     len(sale.Items),
		CreatedAt:     sale.CreatedAt,
		UpdatedAt:     sale.UpdatedAt,
	}, nil
}

// resolveCustomer finds the customer owning the phone or creates one. The new
// row is read back by primary key, soft-deleted rows included; a miss there
// triggers one more insert.
func resolveCustomer(tx *gorm.DB, repo repository.CustomerRepository, in CustomerInput) (*model.Customer, error) {
	existing, err := repo.FindByPhone(tx, in.Phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer := newCustomer(tx, repo, in)
	if err := repo.Create(tx, customer); err != nil {
		return nil, err
	}

	fetched, err := repo.FindByIDUnscoped(tx, customer.ID)
	if err == nil {
		return fetched, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	zap.L().Warn("created customer not readable, creating again",
		zap.Uint("customer_id", customer.ID),
		zap.String("phone", in.Phone))
	retry := newCustomer(tx, repo, in)
	if err := repo.Create(tx, retry); err != nil {
		return nil, err
	}
	return retry, nil
}

func newCustomer(tx *gorm.DB, repo repository.CustomerRepository, in CustomerInput) *model.Customer {
	customer := &model.Customer{
		Name:     strings.TrimSpace(in.Name),
		Phone:    in.Phone,
		Address:  strings.TrimSpace(in.Address),
		IsActive: true,
	}
	if customer.Name == "" {
		customer.Name = model.DefaultCustomerName
	}
	// An email already owned by another customer stays on the sale snapshot only
	if email := strings.TrimSpace(in.Email); email != "" {
		if _, err := repo.FindByEmail(tx, email); errors.Is(err, gorm.ErrRecordNotFound) {
			customer.Email = &email
		}
	}
	return customer
}

// newSale builds the sale header shared by online and POS checkouts.
func newSale(in *OrderInput, totals OrderTotals, customer *model.Customer) *model.Sale {
	sale := &model.Sale{
		SaleDate:        time.Now(),
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Discount:        totals.Discount,
		Total:           totals.Total,
		PaymentMethod:   in.PaymentMethod,
		DeliveryAddress: in.DeliveryAddress,
		Notes:           in.Notes,
		CustomerName:    in.Customer.Name,
		CustomerPhone:   in.Customer.Phone,
		CustomerEmail:   in.Customer.Email,
		CustomerAddress: in.Customer.Address,
	}
	if customer != nil {
		sale.CustomerID = &customer.ID
		if sale.CustomerName == "" {
			sale.CustomerName = customer.Name
		}
	}
	return sale
}

func orderEventPayload(sale *model.Sale) map[string]interface{} {
	return map[string]interface{}{
		"id":             sale.ID,
		"source":         sale.Source,
		"status":         sale.Status,
		"payment_method": sale.PaymentMethod,
		"payment_status": sale.PaymentStatus,
		"total":          sale.Total.StringFixed(2),
		"items":          len(sale.Items),
		"customer_name":  sale.CustomerName,
		"customer_phone": sale.CustomerPhone,
	}
}
