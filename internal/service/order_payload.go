package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"cafe-pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// CustomerInput is the buyer contact carried by an order. Caller-supplied
// customer IDs are never part of it.
type CustomerInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type OrderItemInput struct {
	ProductID  uint
	Quantity   int
	UnitPrice  decimal.Decimal
	Discount   decimal.Decimal
	TotalPrice *decimal.Decimal
	Notes      string
}

// OrderInput is the canonical order shape every channel is normalized into.
type OrderInput struct {
	Customer         CustomerInput
	Items            []OrderItemInput
	Subtotal         *decimal.Decimal // informational only, never persisted
	Tax              *decimal.Decimal
	Discount         *decimal.Decimal
	Total            *decimal.Decimal
	PaymentMethod    model.PaymentMethod
	PaymentStatus    model.PaymentStatus
	DeliveryAddress  string
	Notes            string
	TransactionImage string

	// PlacedBy is the staff user id when an order is entered by a signed-in user
	PlacedBy string
}

type rawCustomer struct {
	Name    interface{} `json:"name"`
	Phone   interface{} `json:"phone"`
	Email   interface{} `json:"email"`
	Address interface{} `json:"address"`
}

type rawItem struct {
	ProductID      interface{} `json:"productId"`
	ID             interface{} `json:"id"`
	ProductIDSnake interface{} `json:"product_id"`
	Quantity       interface{} `json:"quantity"`
	UnitPrice      interface{} `json:"unitPrice"`
	Price          interface{} `json:"price"`
	Discount       interface{} `json:"discount"`
	TotalPrice     interface{} `json:"totalPrice"`
	Notes          interface{} `json:"notes"`
}

type rawOrder struct {
	CustomerData     *rawCustomer `json:"customerData"`
	CartItems        []rawItem    `json:"cartItems"`
	Items            []rawItem    `json:"items"`
	Subtotal         interface{}  `json:"subtotal"`
	Total            interface{}  `json:"total"`
	Tax              interface{}  `json:"tax"`
	Discount         interface{}  `json:"discount"`
	PaymentMethod    interface{}  `json:"paymentMethod"`
	PaymentStatus    interface{}  `json:"paymentStatus"`
	DeliveryAddress  interface{}  `json:"deliveryAddress"`
	Notes            interface{}  `json:"notes"`
	TransactionImage interface{}  `json:"transactionImage"`
}

// ParseOrderPayload decodes orderData, given as a JSON object, a JSON string
// holding an object, or a body wrapping either under "orderData".
func ParseOrderPayload(data []byte, allowCardPayments bool) (*OrderInput, error) {
	raw, err := decodeRawOrder(data, 0)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, newValidationError("Order data is required")
	}
	return normalizeOrder(raw, allowCardPayments)
}

func decodeRawOrder(data []byte, depth int) (*rawOrder, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if depth > 2 {
		return nil, newValidationError("Invalid order data format")
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, newValidationError("Invalid order data format")
		}
		return decodeRawOrder([]byte(inner), depth+1)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, newValidationError("Invalid order data format")
	}
	if inner, ok := envelope["orderData"]; ok {
		return decodeRawOrder(inner, depth+1)
	}
	if len(envelope) == 0 {
		return nil, nil
	}

	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newValidationError("Invalid order data format")
	}
	return &raw, nil
}

func normalizeOrder(raw *rawOrder, allowCardPayments bool) (*OrderInput, error) {
	in := &OrderInput{
		PaymentMethod:    NormalizePaymentMethod(toString(raw.PaymentMethod), allowCardPayments),
		DeliveryAddress:  toString(raw.DeliveryAddress),
		Notes:            toString(raw.Notes),
		TransactionImage: toString(raw.TransactionImage),
		Subtotal:         decimalPtr(raw.Subtotal),
		Tax:              decimalPtr(raw.Tax),
		Discount:         decimalPtr(raw.Discount),
		Total:            decimalPtr(raw.Total),
	}

	if raw.CustomerData != nil {
		in.Customer = CustomerInput{
			Name:    toString(raw.CustomerData.Name),
			Phone:   toString(raw.CustomerData.Phone),
			Email:   toString(raw.CustomerData.Email),
			Address: toString(raw.CustomerData.Address),
		}
	}

	if status := strings.ToLower(toString(raw.PaymentStatus)); status != "" {
		in.PaymentStatus = model.PaymentStatus(status)
		if !in.PaymentStatus.Valid() {
			return nil, newValidationError("Invalid payment status '%s'", status)
		}
	}

	items := raw.CartItems
	if len(items) == 0 {
		items = raw.Items
	}
	for i, item := range items {
		normalized, err := normalizeItem(item, i+1)
		if err != nil {
			return nil, err
		}
		in.Items = append(in.Items, normalized)
	}

	return in, nil
}

func normalizeItem(item rawItem, position int) (OrderItemInput, error) {
	var out OrderItemInput

	for _, ref := range []interface{}{item.ProductID, item.ID, item.ProductIDSnake} {
		if ref == nil || toString(ref) == "" {
			continue
		}
		id, ok := toWholeNumber(ref)
		if !ok {
			return out, newValidationError("Item %d has no product reference", position)
		}
		out.ProductID = uint(id)
		break
	}
	if out.ProductID == 0 {
		return out, newValidationError("Item %d has no product reference", position)
	}

	qty, ok := toWholeNumber(item.Quantity)
	if !ok {
		return out, newValidationError("Item %d has an invalid quantity", position)
	}
	out.Quantity = int(qty)

	price, ok := toDecimal(item.UnitPrice)
	if !ok {
		price, ok = toDecimal(item.Price)
	}
	if !ok || price.IsNegative() {
		return out, newValidationError("Item %d has an invalid unit price", position)
	}
	out.UnitPrice = price

	if discount, ok := toDecimal(item.Discount); ok {
		out.Discount = discount
	}
	out.TotalPrice = decimalPtr(item.TotalPrice)
	out.Notes = toString(item.Notes)
	return out, nil
}

// NormalizePaymentMethod maps client spellings onto the stored enum. Online
// orders only distinguish cash, mobile money and online; POS also takes cards.
func NormalizePaymentMethod(method string, allowCardPayments bool) model.PaymentMethod {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(method)))
	switch key {
	case "mobilemoney", "mobilepayment", "momo", "mobile":
		return model.PaymentMobilePayment
	case "online":
		return model.PaymentOnline
	}
	if allowCardPayments {
		switch key {
		case "creditcard", "card":
			return model.PaymentCreditCard
		case "debitcard":
			return model.PaymentDebitCard
		case "other":
			return model.PaymentOther
		}
	}
	return model.PaymentCash
}

// validateOrder checks the structural rules shared by every channel.
func validateOrder(in *OrderInput, requirePhone bool) error {
	if in == nil {
		return newValidationError("Order data is required")
	}
	if requirePhone && strings.TrimSpace(in.Customer.Phone) == "" {
		return newValidationError("Customer phone number is required")
	}
	if len(in.Items) == 0 {
		return newValidationError("Order must contain at least one item")
	}
	for i, item := range in.Items {
		if item.ProductID == 0 {
			return newValidationError("Item %d has no product reference", i+1)
		}
		if item.Quantity <= 0 {
			return newValidationError("Item %d has an invalid quantity", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return newValidationError("Item %d has an invalid unit price", i+1)
		}
		if item.Discount.IsNegative() {
			return newValidationError("Item %d has a negative discount", i+1)
		}
		if item.TotalPrice != nil && item.TotalPrice.IsNegative() {
			return newValidationError("Item %d has a negative total", i+1)
		}
	}
	for _, field := range []struct {
		name   string
		amount *decimal.Decimal
	}{
		{"subtotal", in.Subtotal},
		{"tax", in.Tax},
		{"discount", in.Discount},
		{"total", in.Total},
	} {
		if field.amount != nil && field.amount.IsNegative() {
			return newValidationError("Order %s cannot be negative", field.name)
		}
	}

	totals := ComputeTotals(in)
	for i, line := range totals.Items {
		if line.Discount.GreaterThan(line.Subtotal) || line.TotalPrice.IsNegative() {
			return newValidationError("Item %d discount exceeds its subtotal", i+1)
		}
	}
	if totals.Discount.GreaterThan(totals.Subtotal) || totals.Total.IsNegative() {
		return newValidationError("Order discount exceeds its subtotal")
	}
	return nil
}

// OrderTotals is the server-side money computation for an order.
type OrderTotals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Items    []model.SaleItem
}

// ComputeTotals derives the subtotal from items and ignores any client
// subtotal. Tax, discount and total are taken from the client when numeric.
func ComputeTotals(in *OrderInput) OrderTotals {
	var t OrderTotals
	for _, item := range in.Items {
		lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lineTotal := lineSubtotal.Sub(item.Discount)
		if item.TotalPrice != nil {
			lineTotal = *item.TotalPrice
		}
		t.Subtotal = t.Subtotal.Add(lineSubtotal)
		t.Items = append(t.Items, model.SaleItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Discount:   item.Discount,
			Subtotal:   lineSubtotal,
			TotalPrice: lineTotal,
			Notes:      item.Notes,
		})
	}
	if in.Tax != nil {
		t.Tax = *in.Tax
	}
	if in.Discount != nil {
		t.Discount = *in.Discount
	}
	if in.Total != nil {
		t.Total = *in.Total
	} else {
		t.Total = t.Subtotal.Add(t.Tax).Sub(t.Discount)
	}
	return t
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// toDecimal accepts JSON numbers and numeric strings; anything else is absent.
func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil, bool:
		return decimal.Zero, false
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(x), true
	default:
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(f), true
	}
}

// toWholeNumber accepts positive integral values only; 7.9 is not 7.
func toWholeNumber(v interface{}) (int64, bool) {
	d, ok := toDecimal(v)
	if !ok || !d.IsInteger() || !d.IsPositive() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, false
	}
	return d.IntPart(), true
}

func decimalPtr(v interface{}) *decimal.Decimal {
	d, ok := toDecimal(v)
	if !ok {
		return nil
	}
	return &d
}

func describeCustomer(c CustomerInput) string {
	name := c.Name
	if name == "" {
		name = model.DefaultCustomerName
	}
	if c.Phone == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, c.Phone)
}
