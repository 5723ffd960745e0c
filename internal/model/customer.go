package model

// DefaultCustomerName is used when an online order arrives without a name.
const DefaultCustomerName = "New Customer"

// Customer is a buyer identity. Online orders resolve customers by phone.
type Customer struct {
	CatalogModel
	Name       string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email      *string `gorm:"type:varchar(255);uniqueIndex" json:"email" validate:"omitempty,email"`
	Phone      string  `gorm:"type:varchar(30);index" json:"phone"`
	Address    string  `gorm:"type:text" json:"address"`
	City       string  `gorm:"type:varchar(100)" json:"city"`
	State      string  `gorm:"type:varchar(100)" json:"state"`
	PostalCode string  `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string  `gorm:"type:varchar(100)" json:"country"`
	Notes      string  `gorm:"type:text" json:"notes"`
	IsActive   bool    `gorm:"default:true" json:"is_active"`

	Sales []Sale `json:"sales,omitempty"`
}
