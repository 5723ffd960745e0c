package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cafe-pos/internal/events"
	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const examplePayload = `{"customerData":{"phone":"5551234","name":"A"},"cartItems":[{"productId":7,"quantity":2,"unitPrice":3}],"total":6}`

type failingNotifications struct {
	NotificationService
}

func (failingNotifications) CreateSystemNotification(tx *gorm.DB, kind model.NotificationType, title, message, relatedID, relatedType string) (*model.Notification, error) {
	return nil, errors.New("notification store down")
}

func TestCreateOnlineOrder(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	sale, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, examplePayload, false), Receipt{})
	require.NoError(t, err)

	stored, err := f.sales.FindByID(sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.Subtotal.Equal(decimal.NewFromInt(6)))
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(6)))
	assert.True(t, stored.Tax.IsZero())
	assert.Equal(t, model.SaleStatusPending, stored.Status)
	assert.Equal(t, model.SourceOnline, stored.Source)
	assert.Equal(t, model.PaymentPending, stored.PaymentStatus)
	assert.Equal(t, model.PaymentCash, stored.PaymentMethod)
	assert.Equal(t, "5551234", stored.CustomerPhone)
	assert.Nil(t, stored.UserID)

	require.Len(t, stored.Items, 1)
	item := stored.Items[0]
	assert.Equal(t, uint(7), item.ProductID)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(3)))
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(6)))
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(6)))

	require.NotNil(t, stored.Customer)
	assert.Equal(t, "A", stored.Customer.Name)
	assert.Nil(t, stored.Customer.Email)

	var notifications []model.Notification
	require.NoError(t, f.db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationNewOrder, notifications[0].Type)
	assert.Equal(t, sale.ID.String(), notifications[0].RelatedID)

	assert.Equal(t, 1, f.hub.count())
	assert.Equal(t, []string{events.OrderCreated}, f.publisher.published())
}

func TestCreateOnlineOrderMobileMoneyRequiresImage(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	payload := `{"customerData":{"phone":"5551234","name":"A"},"cartItems":[{"productId":7,"quantity":2,"unitPrice":3}],"total":6,"paymentMethod":"mobileMoney"}`
	_, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Zero(t, f.count(t, &model.SaleItem{}))
	assert.Zero(t, f.count(t, &model.Customer{}))
	assert.Zero(t, f.count(t, &model.Notification{}))
	assert.Zero(t, f.hub.count())
}

func TestCreateOnlineOrderStoresUploadedReceipt(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	payload := `{"customerData":{"phone":"5551234"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}],"paymentMethod":"mobile_money"}`
	receipt := Receipt{Upload: &ReceiptUpload{Reader: bytes.NewReader([]byte("png bytes")), Filename: "proof.png"}}

	sale, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), receipt)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentMobilePayment, sale.PaymentMethod)
	assert.Equal(t, ".png", filepath.Ext(sale.TransactionImage))

	data, err := os.ReadFile(filepath.Join(f.uploadDir, sale.TransactionImage))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestCreateOnlineOrderReceiptReference(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	payload := `{"customerData":{"phone":"5551234"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}],"paymentMethod":"momo","transactionImage":"../../etc/proof.jpg"}`
	sale, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{})
	require.NoError(t, err)
	assert.Equal(t, "proof.jpg", sale.TransactionImage)

	// A form reference wins over the payload field
	sale, err = f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{Reference: "form.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "form.jpg", sale.TransactionImage)
}

func TestCreateOnlineOrderReusesCustomerByPhone(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	existing := &model.Customer{Name: "Regular", Phone: "5551234", IsActive: true}
	require.NoError(t, f.customers.Create(nil, existing))

	sale, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, examplePayload, false), Receipt{})
	require.NoError(t, err)
	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, existing.ID, *sale.CustomerID)
	assert.Equal(t, int64(1), f.count(t, &model.Customer{}))
	// The snapshot keeps the name given on this order
	assert.Equal(t, "A", sale.CustomerName)
}

func TestCreateOnlineOrderNewCustomerDefaults(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	taken := "taken@example.com"
	require.NoError(t, f.customers.Create(nil, &model.Customer{Name: "Other", Phone: "999", Email: &taken}))

	payload := `{"customerData":{"phone":"5550000","email":"taken@example.com"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}]}`
	sale, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{})
	require.NoError(t, err)

	customer, err := f.customers.FindByID(*sale.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCustomerName, customer.Name)
	assert.Nil(t, customer.Email, "an email owned by another customer is not copied")
	assert.Equal(t, "taken@example.com", sale.CustomerEmail)
}

func TestCreateOnlineOrderEmailOfDeletedCustomer(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	gone := "gone@example.com"
	former := &model.Customer{Name: "Former", Phone: "111", Email: &gone, IsActive: true}
	require.NoError(t, f.customers.Create(nil, former))
	require.NoError(t, f.customers.Delete(former.ID))

	payload := `{"customerData":{"phone":"222","email":"gone@example.com"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}]}`
	sale, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{})
	require.NoError(t, err)

	require.NotNil(t, sale.CustomerID)
	assert.NotEqual(t, former.ID, *sale.CustomerID)
	customer, err := f.customers.FindByID(*sale.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "222", customer.Phone)
	assert.Nil(t, customer.Email)
	assert.Equal(t, "gone@example.com", sale.CustomerEmail)
}

func TestCreateOnlineOrderRejectsNegativeMoney(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	cases := map[string]string{
		"negative tax":           `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}],"tax":-5}`,
		"negative discount":      `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}],"discount":-1}`,
		"negative total":         `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}],"total":-3}`,
		"negative subtotal":      `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}],"subtotal":"-3"}`,
		"negative item discount": `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3,"discount":-2}]}`,
		"negative item total":    `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3,"totalPrice":-1}]}`,
		"item discount too big":  `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3,"discount":10}]}`,
		"order discount too big": `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}],"discount":50}`,
		"everything at once":     `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3,"discount":10}],"tax":-5,"discount":50}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{})
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "got %v", err)
		})
	}

	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Zero(t, f.count(t, &model.SaleItem{}))
	assert.Zero(t, f.count(t, &model.Customer{}))
	assert.Zero(t, f.hub.count())
}

func TestCreateOnlineOrderDiscountUpToSubtotal(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	payload := `{"customerData":{"phone":"1"},"cartItems":[{"productId":7,"quantity":2,"unitPrice":3,"discount":1}],"discount":6}`
	sale, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{})
	require.NoError(t, err)
	assert.True(t, sale.Total.IsZero())
}

// refetchMissCustomers hides freshly inserted rows from the primary key lookup.
type refetchMissCustomers struct {
	repository.CustomerRepository
}

func (refetchMissCustomers) FindByIDUnscoped(tx *gorm.DB, id uint) (*model.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestCreateOnlineOrderCustomerRefetchMiss(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")
	orders := NewOrderService(f.sales, refetchMissCustomers{f.customers}, f.notifications, f.images, f.db)

	payload := `{"customerData":{"phone":"5551234","name":"A","email":"a@example.com"},"cartItems":[{"productId":7,"quantity":2,"unitPrice":3}]}`
	sale, err := orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{})
	require.NoError(t, err)

	var rows []model.Customer
	require.NoError(t, f.db.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, rows[1].ID, *sale.CustomerID)
	assert.Equal(t, "5551234", rows[1].Phone)

	// the email stays with the first row because of the unique index
	require.NotNil(t, rows[0].Email)
	assert.Equal(t, "a@example.com", *rows[0].Email)
	assert.Nil(t, rows[1].Email)
}

// Sequential resubmits are not deduplicated; the second one finds the
// customer created by the first.
func TestCreateOnlineOrderDuplicateSubmission(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	first, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, examplePayload, false), Receipt{})
	require.NoError(t, err)
	second, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, examplePayload, false), Receipt{})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(2), f.count(t, &model.Sale{}))
	assert.Equal(t, int64(1), f.count(t, &model.Customer{}))
	require.NotNil(t, first.CustomerID)
	require.NotNil(t, second.CustomerID)
	assert.Equal(t, *first.CustomerID, *second.CustomerID)
	assert.Equal(t, 2, f.hub.count())
}

func TestCreateOnlineOrderValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"missing phone": `{"customerData":{"name":"A"},"cartItems":[{"productId":7,"quantity":2,"unitPrice":3}]}`,
		"blank phone":   `{"customerData":{"phone":"  "},"cartItems":[{"productId":7,"quantity":2,"unitPrice":3}]}`,
		"empty cart":    `{"customerData":{"phone":"5551234"},"cartItems":[]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), Receipt{})
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}

	_, err := f.orders.CreateOnlineOrder(context.Background(), nil, Receipt{})
	assert.True(t, IsValidationError(err))
	assert.Zero(t, f.count(t, &model.Sale{}))
}

func TestCreateOnlineOrderRollsBack(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")
	orders := NewOrderService(f.sales, f.customers, failingNotifications{}, f.images, f.db)

	payload := `{"customerData":{"phone":"5551234"},"cartItems":[{"productId":7,"quantity":1,"unitPrice":3}],"paymentMethod":"mobileMoney"}`
	receipt := Receipt{Upload: &ReceiptUpload{Reader: bytes.NewReader([]byte("img")), Filename: "proof.jpg"}}

	_, err := orders.CreateOnlineOrder(context.Background(), mustParse(t, payload, false), receipt)
	require.Error(t, err)
	assert.False(t, IsValidationError(err))

	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Zero(t, f.count(t, &model.SaleItem{}))
	assert.Zero(t, f.count(t, &model.Customer{}))

	files, err := os.ReadDir(f.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, files, "receipt of a rolled back order is removed")
}

func TestTrackOrder(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 7, "Latte", "3")

	sale, err := f.orders.CreateOnlineOrder(context.Background(), mustParse(t, examplePayload, false), Receipt{})
	require.NoError(t, err)

	tracking, err := f.orders.TrackOrder(sale.ID, "5551234")
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusPending, tracking.Status)
	assert.Equal(t, "6.00", tracking.Total)
	assert.Equal(t, 1, tracking.ItemCount)

	_, err = f.orders.TrackOrder(sale.ID, "000")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.TrackOrder(sale.ID, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
