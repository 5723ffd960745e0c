package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCreditCard    PaymentMethod = "credit_card"
	PaymentDebitCard     PaymentMethod = "debit_card"
	PaymentMobilePayment PaymentMethod = "mobile_payment"
	PaymentOther         PaymentMethod = "other"
	PaymentOnline        PaymentMethod = "online"
)

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentRefunded      PaymentStatus = "refunded"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentPartiallyPaid, PaymentRefunded:
		return true
	}
	return false
}

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusAccepted  SaleStatus = "accepted"
	SaleStatusRejected  SaleStatus = "rejected"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Valid reports whether s is one of the known sale statuses.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusPending, SaleStatusAccepted, SaleStatusRejected, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

var saleTransitions = map[SaleStatus][]SaleStatus{
	SaleStatusPending:  {SaleStatusAccepted, SaleStatusRejected, SaleStatusCompleted, SaleStatusCancelled},
	SaleStatusAccepted: {SaleStatusCompleted, SaleStatusCancelled},
}

// CanTransitionTo reports whether a sale in status s may move to next.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	for _, allowed := range saleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type SaleSource string

const (
	SourcePOS    SaleSource = "pos"
	SourceOnline SaleSource = "online"
)

// Sale is one POS checkout or online order.
type Sale struct {
	BaseModel
	SaleDate      time.Time       `gorm:"not null;index" json:"sale_date"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Source        SaleSource      `gorm:"type:varchar(10);not null;default:'pos';index" json:"source"`
	ReceiptNumber *string         `gorm:"type:varchar(50);uniqueIndex" json:"receipt_number,omitempty"`

	TransactionImage string `gorm:"type:varchar(500)" json:"transaction_image,omitempty"`
	DeliveryAddress  string `gorm:"type:text" json:"delivery_address,omitempty"`
	Notes            string `gorm:"type:text" json:"notes,omitempty"`

	// Snapshot of the buyer at order time
	CustomerName    string `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CustomerPhone   string `gorm:"type:varchar(30)" json:"customer_phone,omitempty"`
	CustomerEmail   string `gorm:"type:varchar(255)" json:"customer_email,omitempty"`
	CustomerAddress string `gorm:"type:text" json:"customer_address,omitempty"`

	CustomerID *uint      `gorm:"index" json:"customer_id"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items      []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// SaleItem is one product line of a Sale.
type SaleItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
