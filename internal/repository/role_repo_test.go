package repository

import (
	"testing"

	"cafe-pos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRolesAndPrivileges(t *testing.T) {
	db := openTestDB(t)
	privileges := NewPrivilegeRepo(db)
	roles := NewRoleRepo(db)

	// Seeding twice must not duplicate rows
	for i := 0; i < 2; i++ {
		require.NoError(t, privileges.SeedDefaults())
		require.NoError(t, roles.SeedDefaults())
	}

	all, err := privileges.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, len(model.DefaultPrivileges))

	list, err := roles.FindAll()
	require.NoError(t, err)
	assert.Len(t, list, len(model.DefaultRoles))

	cashier, err := privileges.FindByCodes(append([]string{"nope:none"}, model.CashierPrivileges...))
	require.NoError(t, err)
	assert.Len(t, cashier, len(model.CashierPrivileges))

	granted, err := roles.GrantIfEmpty(model.RoleCashier, cashier)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = roles.GrantIfEmpty(model.RoleCashier, all)
	require.NoError(t, err)
	assert.False(t, granted, "configured roles keep their privileges")

	role, err := roles.FindByCode(model.RoleCashier)
	require.NoError(t, err)
	assert.Len(t, role.Privileges, len(model.CashierPrivileges))

	_, err = roles.GrantIfEmpty("GHOST", all)
	assert.Error(t, err)
}
