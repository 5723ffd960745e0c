package service

import (
	"errors"
	"strings"
	"time"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrEmailExists      = errors.New("email already exists")
	ErrUnknownPrivilege = errors.New("unknown privilege code")
	ErrRoleNotFound     = errors.New("role not found")
)

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	DeleteUser(userID uuid.UUID) error
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error)
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
	GetLoginHistory(userID uuid.UUID, limit int) ([]model.LoginHistory, error)
	ListOnShift(roleCode string) ([]model.UserResponse, error)
	PurgeLoginHistory(olderThan time.Duration) (int64, error)
}

type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	BirthDate   *string `json:"birth_date"` // Format: YYYY-MM-DD
	RoleID      uint    `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"` // Optional
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	BirthDate   *string `json:"birth_date"` // Format: YYYY-MM-DD
	RoleID      uint    `json:"role_id" validate:"required"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	historyRepo   repository.LoginHistoryRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, historyRepo repository.LoginHistoryRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
		historyRepo:   historyRepo,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error) {
	// 1. Validate request
	if err := validator.Check(req); err != nil {
		return nil, newValidationError("%s", err.Error())
	}

	// 2. Check if email already exists
	existing, _ := s.userRepo.FindByEmail(req.Email)
	if existing != nil {
		return nil, ErrEmailExists
	}

	// 3. Validate role exists
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	// 4. Parse birthdate if provided
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	// 5. Create user
	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   birthDate,
		RoleID:      &req.RoleID,
		IsActive:    true,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID

	// 6. Set password
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	// 7. Auto-assign privileges based on role
	user.Privileges = role.Privileges

	// 8. Save to database
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	// 1. Validate request
	if err := validator.Check(req); err != nil {
		return nil, newValidationError("%s", err.Error())
	}

	// 2. Find existing user
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 3. Check if email is being changed and already exists
	if !strings.EqualFold(strings.TrimSpace(req.Email), user.Email) {
		existing, _ := s.userRepo.FindByEmail(req.Email)
		if existing != nil {
			return nil, ErrEmailExists
		}
	}

	// 4. Validate role exists
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	// 5. Parse birthdate if provided
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	// 6. Update user fields
	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.BirthDate = birthDate
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID

	// 7. Update password if provided
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}

	roleChanged := user.RoleID == nil || *user.RoleID != req.RoleID
	user.RoleID = &req.RoleID

	// 8. Save columns, then re-derive privileges when the role moved
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if roleChanged {
		if err := s.userRepo.UpdatePrivileges(userID, role.Privileges, updaterID); err != nil {
			return nil, err
		}
	}

	return s.userRepo.FindByID(userID)
}

func (s *userService) DeleteUser(userID uuid.UUID) error {
	return s.userRepo.Delete(userID)
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error) {
	// 1. Find user
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 2. Get privileges
	codes := uniqueCodes(privilegeCodes)
	privileges, err := s.privilegeRepo.FindByCodes(codes)
	if err != nil {
		return nil, errors.New("failed to find privileges")
	}
	if len(privileges) != len(codes) {
		return nil, ErrUnknownPrivilege
	}

	// 3. Replace privileges
	if err := s.userRepo.UpdatePrivileges(user.ID, privileges, updaterID); err != nil {
		return nil, err
	}

	// 4. Reload user with updated privileges
	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}

// ListOnShift returns active staff with a heartbeat inside the presence
// window, optionally narrowed to one role.
func (s *userService) ListOnShift(roleCode string) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	onShift := make([]model.UserResponse, 0, len(users))
	for _, user := range users {
		if !user.IsActive || !user.IsOnline(now) {
			continue
		}
		if roleCode != "" && !strings.EqualFold(user.RoleCode(), roleCode) {
			continue
		}
		onShift = append(onShift, user.ToResponse())
	}
	return onShift, nil
}

// GetLoginHistory lists the most recent login attempts of one user.
func (s *userService) GetLoginHistory(userID uuid.UUID, limit int) ([]model.LoginHistory, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, ErrUserNotFound
	}
	return s.historyRepo.FindByUserID(userID, limit)
}

func (s *userService) PurgeLoginHistory(olderThan time.Duration) (int64, error) {
	return s.historyRepo.DeleteBefore(time.Now().Add(-olderThan))
}

func uniqueCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func parseBirthDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, newValidationError("invalid birth_date format, use YYYY-MM-DD")
	}
	return &parsed, nil
}
