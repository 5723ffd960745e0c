package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cafe-pos/internal/model"
	"cafe-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	service.AuthService
	ended []uuid.UUID
	err   error
}

func (s *stubAuth) Login(email, password string, client service.ClientInfo) (*service.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.LoginResponse{Token: "t"}, nil
}

func (s *stubAuth) Heartbeat(userID uuid.UUID) error { return s.err }

func (s *stubAuth) Session(userID uuid.UUID) (*service.TokenValidationResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.TokenValidationResponse{
		User:       model.UserResponse{ID: userID, FullName: "Kim", RoleCode: model.RoleCashier},
		Privileges: []string{model.PrivSaleView},
	}, nil
}

func (s *stubAuth) EndShift(userID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.ended = append(s.ended, userID)
	return nil
}

type stubUserService struct {
	service.UserService
	role string
	err  error
}

func (s *stubUserService) ListOnShift(roleCode string) ([]model.UserResponse, error) {
	s.role = roleCode
	if s.err != nil {
		return nil, s.err
	}
	return []model.UserResponse{{ID: uuid.New(), FullName: "Kim", Online: true}}, nil
}

func (s *stubUserService) CreateUser(req *service.CreateUserRequest, creatorID string) (*model.User, error) {
	return nil, s.err
}

// signedIn stands in for RequireAuth.
func signedIn(id uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", id.String())
		return c.Next()
	}
}

func TestShiftEndpoints(t *testing.T) {
	cashier := uuid.New()
	auth := &stubAuth{}
	h := NewAuthHandler(auth)

	app := fiber.New()
	app.Get("/me", signedIn(cashier), h.Me)
	app.Post("/heartbeat", signedIn(cashier), h.Heartbeat)
	app.Post("/end-shift", signedIn(cashier), h.EndShift)
	app.Post("/anonymous/end-shift", h.EndShift)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me service.TokenValidationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, cashier, me.User.ID)
	assert.Equal(t, []string{model.PrivSaleView}, me.Privileges)

	resp, err = app.Test(httptest.NewRequest("POST", "/heartbeat", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var beat struct {
		Status     string    `json:"status"`
		LastSeenAt time.Time `json:"last_seen_at"`
		ExpiresAt  time.Time `json:"expires_at"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&beat))
	assert.Equal(t, "online", beat.Status)
	assert.WithinDuration(t, beat.LastSeenAt.Add(model.PresenceWindow), beat.ExpiresAt, time.Second)

	resp, err = app.Test(httptest.NewRequest("POST", "/end-shift", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []uuid.UUID{cashier}, auth.ended)

	resp, err = app.Test(httptest.NewRequest("POST", "/anonymous/end-shift", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{service.ErrUserInactive, fiber.StatusUnauthorized},
		{service.ErrSessionReplaced, fiber.StatusUnauthorized},
		{service.ErrUserNotFound, fiber.StatusNotFound},
		{assert.AnError, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := NewAuthHandler(&stubAuth{err: tc.err})
			app := fiber.New()
			app.Post("/login", h.Login)
			app.Post("/end-shift", signedIn(uuid.New()), h.EndShift)

			req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"email":"kim@example.com","password":"secret1"}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			resp, err = app.Test(httptest.NewRequest("POST", "/end-shift", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestGetOnShift(t *testing.T) {
	users := &stubUserService{}
	app := fiber.New()
	app.Get("/users/on-shift", NewUserHandler(users).GetOnShift)

	resp, err := app.Test(httptest.NewRequest("GET", "/users/on-shift?role=CASHIER", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, model.RoleCashier, users.role)

	var body struct {
		Count int                  `json:"count"`
		Data  []model.UserResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	assert.True(t, body.Data[0].Online)
}

func TestUserErrorStatuses(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"email taken":     {service.ErrEmailExists, fiber.StatusConflict},
		"unknown role":    {service.ErrRoleNotFound, fiber.StatusBadRequest},
		"bad field":       {&service.ValidationError{Message: "Validation failed"}, fiber.StatusBadRequest},
		"missing account": {service.ErrUserNotFound, fiber.StatusNotFound},
		"database down":   {assert.AnError, fiber.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/users", NewUserHandler(&stubUserService{err: tc.err}).CreateUser)

			req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"email":"kim@example.com"}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestUpdateUserRefusesSelfDeactivation(t *testing.T) {
	admin := uuid.New()
	app := fiber.New()
	app.Put("/users/:id", signedIn(admin), NewUserHandler(&stubUserService{}).UpdateUser)

	req := httptest.NewRequest("PUT", "/users/"+admin.String(), strings.NewReader(`{"is_active":false}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("PUT", "/users/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
