package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

// SessionIdleTimeout is how long a session survives without a heartbeat.
const SessionIdleTimeout = model.PresenceWindow

type AuthService interface {
	Login(email, password string, client ClientInfo) (*LoginResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error
	Session(userID uuid.UUID) (*TokenValidationResponse, error)
	EndShift(userID uuid.UUID) error
}

// ClientInfo identifies where a login attempt came from.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`       // Direct role object for Redux
	Privileges []string           `json:"privileges"` // Flat privileges array for easy checking
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo    repository.UserRepository
	historyRepo repository.LoginHistoryRepository
	hub         Broadcaster
}

func NewAuthService(userRepo repository.UserRepository, historyRepo repository.LoginHistoryRepository, hub Broadcaster) AuthService {
	return &authService{
		userRepo:    userRepo,
		historyRepo: historyRepo,
		hub:         hub,
	}
}

func (s *authService) Login(email, password string, client ClientInfo) (*LoginResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// 2. Check if user is active
	if !user.IsActive {
		s.recordLogin(user.ID, client, false, "inactive")
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		s.recordLogin(user.ID, client, false, "wrong password")
		return nil, ErrInvalidCredentials
	}

	// 4. Single session: a new token version invalidates older tokens.
	// LastSeenAt is bumped too so the fresh token is not idle on arrival.
	newTokenVersion := uuid.New().String()
	now := time.Now()
	user.TokenVersion = newTokenVersion
	user.LastSeenAt = &now

	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.New("failed to update session")
	}

	// 5. Generate JWT token with TokenVersion
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.GetPrivilegeCodes(), newTokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	s.recordLogin(user.ID, client, true, "")

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) recordLogin(userID uuid.UUID, client ClientInfo, success bool, reason string) {
	if s.historyRepo == nil {
		return
	}
	entry := &model.LoginHistory{
		UserID:    userID,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		Success:   success,
		Reason:    reason,
	}
	if err := s.historyRepo.Create(entry); err != nil {
		zap.L().Warn("failed to record login history", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	// 2. Verify old password
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	// 3. Set new password
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}

	// 4. Update in database
	return s.userRepo.Update(user)
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	// 1. Validate JWT token
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 2. Find user by ID from token claims
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 3. Check if user is still active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 4. Strict single session
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	// 5. A missing LastSeenAt counts as idle
	if user.LastSeenAt == nil || time.Since(*user.LastSeenAt) > SessionIdleTimeout {
		return nil, ErrSessionTimeout
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	// 1. Update timestamp in DB
	if err := s.userRepo.UpdateLastSeen(userID); err != nil {
		return err
	}

	// 2. Tell staff clients the user is online
	if s.hub != nil {
		s.hub.BroadcastJSON(map[string]interface{}{
			"type":         "user_status_update",
			"user_id":      userID.String(),
			"status":       "online",
			"last_seen_at": time.Now(),
		})
	}
	return nil
}

// Session returns the profile behind an already authenticated request.
func (s *authService) Session(userID uuid.UUID) (*TokenValidationResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// EndShift signs a till out: the token version rotates so the current token
// stops working, and dashboards see the user go offline.
func (s *authService) EndShift(userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.UpdateTokenVersion(userID, uuid.NewString()); err != nil {
		return err
	}
	if err := s.userRepo.ClearLastSeen(userID); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.BroadcastJSON(map[string]interface{}{
			"type":    "user_status_update",
			"user_id": userID.String(),
			"status":  "offline",
		})
	}
	return nil
}
