package service

import (
	"context"
	"sync"
	"testing"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/internal/upload"
	"cafe-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingHub struct {
	mu       sync.Mutex
	payloads []interface{}
}

func (h *recordingHub) BroadcastJSON(payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payloads = append(h.payloads, payload)
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.payloads)
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

type fixture struct {
	db        *gorm.DB
	hub       *recordingHub
	publisher *recordingPublisher
	images    *upload.LocalStore
	uploadDir string

	sales         repository.SaleRepository
	customers     repository.CustomerRepository
	notifications NotificationService
	orders        OrderService
	saleService   SaleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString(), model.All()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	dir := t.TempDir()
	images, err := upload.NewLocalStore(dir, "receipt-")
	require.NoError(t, err)

	f := &fixture{
		db:        db,
		hub:       &recordingHub{},
		publisher: &recordingPublisher{},
		images:    images,
		uploadDir: dir,
		sales:     repository.NewSaleRepo(db),
		customers: repository.NewCustomerRepo(db),
	}
	f.notifications = NewNotificationService(repository.NewNotificationRepo(db), f.hub, f.publisher)
	f.orders = NewOrderService(f.sales, f.customers, f.notifications, images, db)
	f.saleService = NewSaleService(f.sales, f.customers, f.notifications, db)
	return f
}

func (f *fixture) seedProduct(t *testing.T, id uint, name string, price string) {
	t.Helper()
	p := &model.Product{
		CatalogModel: model.CatalogModel{ID: id},
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Stock:        50,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(p).Error)
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func mustParse(t *testing.T, payload string, allowCards bool) *OrderInput {
	t.Helper()
	in, err := ParseOrderPayload([]byte(payload), allowCards)
	require.NoError(t, err)
	return in
}
