package service

import (
	"testing"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService(t *testing.T) {
	f := newFixture(t)
	customers := NewCustomerService(f.customers)

	dana := &model.Customer{Name: " Dana ", Phone: "777", Email: strPtr("dana@example.com"), IsActive: true}
	require.NoError(t, customers.CreateCustomer(dana, "u1"))
	assert.Equal(t, "Dana", dana.Name)

	blank := &model.Customer{Name: "Walk-in", Email: strPtr("   "), IsActive: true}
	require.NoError(t, customers.CreateCustomer(blank, "u1"))
	assert.Nil(t, blank.Email)

	assert.ErrorIs(t, customers.CreateCustomer(&model.Customer{Name: "Copy", Email: strPtr("dana@example.com")}, "u1"), ErrCustomerEmail)
	assert.Error(t, customers.CreateCustomer(&model.Customer{Name: "Bad", Email: strPtr("not-an-email")}, "u1"))

	_, err := customers.UpdateCustomer(blank.ID, &model.Customer{Name: "Walk-in", Email: strPtr("dana@example.com")}, "u1")
	assert.ErrorIs(t, err, ErrCustomerEmail)

	list, total, err := customers.ListCustomers("dan", repository.Page{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, dana.ID, list[0].ID)

	require.NoError(t, customers.DeleteCustomer(dana.ID))
	_, err = customers.GetCustomer(dana.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	// a deleted customer keeps its email reserved
	assert.ErrorIs(t, customers.CreateCustomer(&model.Customer{Name: "Dana again", Email: strPtr("dana@example.com")}, "u1"), ErrCustomerEmail)
}

func TestSettingService(t *testing.T) {
	f := newFixture(t)
	repo := repository.NewSettingRepo(f.db)
	require.NoError(t, repo.SeedDefaults())
	settings := NewSettingService(repo)

	all, err := settings.Update(map[string]interface{}{
		model.SettingTaxRate:  7.5,
		model.SettingShopName: "Corner Café",
		"printer_ip":          "10.0.0.9",
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "7.5", all[model.SettingTaxRate])
	assert.Equal(t, "Corner Café", all[model.SettingShopName])

	public, err := settings.GetAll(true)
	require.NoError(t, err)
	assert.Contains(t, public, model.SettingShopName)
	assert.NotContains(t, public, "printer_ip")

	_, err = settings.Update(map[string]interface{}{model.SettingTaxRate: "seven"}, "u1")
	assert.True(t, IsValidationError(err))
	_, err = settings.Update(nil, "u1")
	assert.True(t, IsValidationError(err))
}
