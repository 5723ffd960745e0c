package main

import (
	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "admin123"
)

// seedDefaults creates default privileges, roles, admin user and shop
// settings if they don't exist
func seedDefaults(db *gorm.DB) {
	log := zap.L()
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	settingRepo := repository.NewSettingRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed privileges", zap.Error(err))
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed roles", zap.Error(err))
	}

	// 3. Grant privileges to roles that have none yet
	allPrivileges, _ := privilegeRepo.FindAll()
	cashier, _ := privilegeRepo.FindByCodes(model.CashierPrivileges)
	grants := []struct {
		role       string
		privileges []model.Privilege
	}{
		{model.RoleMasterAdmin, allPrivileges},
		{model.RoleAdmin, withoutUserManagement(allPrivileges)},
		{model.RoleCashier, cashier},
	}
	for _, g := range grants {
		granted, err := roleRepo.GrantIfEmpty(g.role, g.privileges)
		if err != nil {
			log.Warn("failed to assign role privileges", zap.String("role", g.role), zap.Error(err))
			continue
		}
		if granted {
			log.Info("role privileges assigned", zap.String("role", g.role), zap.Int("count", len(g.privileges)))
		}
	}

	// 4. Create default admin user with MASTER_ADMIN role
	if _, err := userRepo.FindByEmail(defaultAdminEmail); err != nil {
		masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
		if err != nil {
			log.Warn("master admin role missing", zap.Error(err))
			return
		}

		admin := &model.User{
			Email:      defaultAdminEmail,
			FullName:   "Master Administrator",
			RoleID:     &masterRole.ID,
			IsActive:   true,
			Privileges: masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword(defaultAdminPassword); err != nil {
			log.Warn("failed to hash admin password", zap.Error(err))
			return
		}
		if err := userRepo.Create(admin); err != nil {
			log.Warn("failed to create admin user", zap.Error(err))
		} else {
			log.Info("admin user created", zap.String("email", defaultAdminEmail), zap.String("role", model.RoleMasterAdmin))
		}
	}

	// 5. Shop settings
	if err := settingRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed settings", zap.Error(err))
	}
}

// withoutUserManagement is the ADMIN set: everything but user administration.
func withoutUserManagement(all []model.Privilege) []model.Privilege {
	var privileges []model.Privilege
	for _, p := range all {
		switch p.Code {
		case model.PrivUserCreate, model.PrivUserUpdate, model.PrivUserDelete, model.PrivUserUpdatePrivilege:
			continue
		}
		privileges = append(privileges, p)
	}
	return privileges
}
