package service

import (
	"testing"

	"cafe-pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderPayloadAcceptsObjectAndString(t *testing.T) {
	object := `{"customerData":{"phone":"5551234","name":"A"},"cartItems":[{"productId":7,"quantity":2,"unitPrice":3}],"total":6}`
	quoted := `"{\"customerData\":{\"phone\":\"5551234\",\"name\":\"A\"},\"cartItems\":[{\"productId\":7,\"quantity\":2,\"unitPrice\":3}],\"total\":6}"`
	wrapped := `{"orderData":` + object + `}`
	wrappedString := `{"orderData":` + quoted + `}`

	for name, payload := range map[string]string{
		"object":         object,
		"string":         quoted,
		"wrapped":        wrapped,
		"wrapped string": wrappedString,
	} {
		t.Run(name, func(t *testing.T) {
			in, err := ParseOrderPayload([]byte(payload), false)
			require.NoError(t, err)
			assert.Equal(t, "5551234", in.Customer.Phone)
			assert.Equal(t, "A", in.Customer.Name)
			require.Len(t, in.Items, 1)
			assert.Equal(t, uint(7), in.Items[0].ProductID)
			assert.Equal(t, 2, in.Items[0].Quantity)
			assert.True(t, in.Items[0].UnitPrice.Equal(decimal.NewFromInt(3)))
			require.NotNil(t, in.Total)
			assert.True(t, in.Total.Equal(decimal.NewFromInt(6)))
			assert.Equal(t, model.PaymentCash, in.PaymentMethod)
		})
	}
}

func TestParseOrderPayloadAliases(t *testing.T) {
	in := mustParse(t, `{
		"customerData": {"phone": 5551234, "id": 99},
		"items": [
			{"id": "3", "quantity": "2", "price": "4.50"},
			{"product_id": 5, "quantity": 1, "unitPrice": 2, "discount": "0.5", "totalPrice": "1.25", "notes": "no sugar"}
		],
		"tax": "0.30",
		"discount": "abc"
	}`, false)

	assert.Equal(t, "5551234", in.Customer.Phone)
	require.Len(t, in.Items, 2)
	assert.Equal(t, uint(3), in.Items[0].ProductID)
	assert.Equal(t, 2, in.Items[0].Quantity)
	assert.Equal(t, "4.5", in.Items[0].UnitPrice.String())
	assert.Equal(t, uint(5), in.Items[1].ProductID)
	assert.Equal(t, "0.5", in.Items[1].Discount.String())
	require.NotNil(t, in.Items[1].TotalPrice)
	assert.Equal(t, "1.25", in.Items[1].TotalPrice.String())
	assert.Equal(t, "no sugar", in.Items[1].Notes)

	require.NotNil(t, in.Tax)
	assert.Equal(t, "0.3", in.Tax.String())
	assert.Nil(t, in.Discount, "non-numeric discount counts as absent")
	assert.Nil(t, in.Total)
}

func TestParseOrderPayloadPrefersCartItems(t *testing.T) {
	in := mustParse(t, `{"customerData":{"phone":"1"},"cartItems":[{"id":1,"quantity":1,"price":1}],"items":[{"id":2,"quantity":1,"price":1},{"id":3,"quantity":1,"price":1}]}`, false)
	require.Len(t, in.Items, 1)
	assert.Equal(t, uint(1), in.Items[0].ProductID)

	in = mustParse(t, `{"customerData":{"phone":"1"},"cartItems":[],"items":[{"id":2,"quantity":1,"price":1}]}`, false)
	require.Len(t, in.Items, 1)
	assert.Equal(t, uint(2), in.Items[0].ProductID)
}

func TestParseOrderPayloadRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"malformed json":   `{"customerData":`,
		"empty":            ``,
		"empty object":     `{}`,
		"no product":       `{"cartItems":[{"quantity":1,"price":1}]}`,
		"zero quantity":    `{"cartItems":[{"id":1,"quantity":0,"price":1}]}`,
		"bad quantity":     `{"cartItems":[{"id":1,"quantity":"two","price":1}]}`,
		"fractional ids":   `{"cartItems":[{"productId":7.9,"quantity":2,"price":1}]}`,
		"fractional qty":   `{"cartItems":[{"productId":7,"quantity":2.9,"price":1}]}`,
		"both fractional":  `{"cartItems":[{"productId":7.9,"quantity":2.9,"price":1}]}`,
		"string fraction":  `{"cartItems":[{"id":"3.5","quantity":"1","price":1}]}`,
		"negative id":      `{"cartItems":[{"id":-4,"quantity":1,"price":1}]}`,
		"no price":         `{"cartItems":[{"id":1,"quantity":1}]}`,
		"text price":       `{"cartItems":[{"id":1,"quantity":1,"price":"free"}]}`,
		"negative price":   `{"cartItems":[{"id":1,"quantity":1,"price":-1}]}`,
		"unknown payment":  `{"paymentStatus":"maybe","cartItems":[{"id":1,"quantity":1,"price":1}]}`,
		"deeply quoted":    `"\"\\\"{}\\\"\""`,
		"nested too often": `{"orderData":{"orderData":{"orderData":{"orderData":{}}}}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOrderPayload([]byte(payload), false)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "got %v", err)
		})
	}
}

func TestNormalizePaymentMethod(t *testing.T) {
	cases := []struct {
		in    string
		cards bool
		want  model.PaymentMethod
	}{
		{"mobileMoney", false, model.PaymentMobilePayment},
		{"mobile_money", false, model.PaymentMobilePayment},
		{"mobile_payment", false, model.PaymentMobilePayment},
		{"Mobile Money", false, model.PaymentMobilePayment},
		{"momo", false, model.PaymentMobilePayment},
		{"online", false, model.PaymentOnline},
		{"", false, model.PaymentCash},
		{"bitcoin", false, model.PaymentCash},
		{"credit_card", false, model.PaymentCash},
		{"credit_card", true, model.PaymentCreditCard},
		{"debit-card", true, model.PaymentDebitCard},
		{"other", true, model.PaymentOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePaymentMethod(tc.in, tc.cards), tc.in)
	}
}

func TestComputeTotals(t *testing.T) {
	t.Run("derived total", func(t *testing.T) {
		in := mustParse(t, `{"cartItems":[{"id":1,"quantity":2,"price":"2.50","discount":"1"},{"id":2,"quantity":1,"price":3}],"tax":1,"discount":2}`, false)
		totals := ComputeTotals(in)
		assert.Equal(t, "8", totals.Subtotal.String())
		assert.Equal(t, "7", totals.Total.String())
		require.Len(t, totals.Items, 2)
		assert.Equal(t, "5", totals.Items[0].Subtotal.String())
		assert.Equal(t, "4", totals.Items[0].TotalPrice.String())
		assert.Equal(t, "3", totals.Items[1].TotalPrice.String())
	})

	t.Run("client total and subtotal", func(t *testing.T) {
		in := mustParse(t, `{"cartItems":[{"id":1,"quantity":2,"price":3,"totalPrice":5}],"subtotal":100,"total":"5.5"}`, false)
		totals := ComputeTotals(in)
		assert.Equal(t, "6", totals.Subtotal.String(), "client subtotal is ignored")
		assert.Equal(t, "5.5", totals.Total.String())
		assert.Equal(t, "5", totals.Items[0].TotalPrice.String())
		assert.True(t, totals.Tax.IsZero())
		assert.True(t, totals.Discount.IsZero())
	})
}
