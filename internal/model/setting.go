package model

import "time"

// Setting is one shop-level key/value pair.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	IsPublic  bool      `gorm:"default:false" json:"is_public"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Setting keys known to the application
const (
	SettingShopName          = "shop_name"
	SettingCurrency          = "currency"
	SettingTaxRate           = "tax_rate"
	SettingMobileMoneyNumber = "mobile_money_number"
	SettingOpeningHours      = "opening_hours"
)

var DefaultSettings = []Setting{
	{Key: SettingShopName, Value: "Café", IsPublic: true},
	{Key: SettingCurrency, Value: "USD", IsPublic: true},
	{Key: SettingTaxRate, Value: "0", IsPublic: true},
	{Key: SettingMobileMoneyNumber, Value: "", IsPublic: true},
	{Key: SettingOpeningHours, Value: "08:00-20:00", IsPublic: true},
}
