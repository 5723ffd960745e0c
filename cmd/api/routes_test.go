package main

import (
	"errors"
	"net/http/httptest"
	"testing"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/internal/ws"
	"cafe-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staffDirectory struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func (s staffDirectory) FindByID(id uuid.UUID) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func TestWebSocketRequiresStaffToken(t *testing.T) {
	jwt.SetSecretKey("test-secret")
	user := &model.User{BaseModel: model.BaseModel{ID: uuid.New()}, FullName: "Kim", IsActive: true, TokenVersion: "v1"}
	users := staffDirectory{users: map[uuid.UUID]*model.User{user.ID: user}}

	app := fiber.New()
	mountWebSocket(app, users, ws.NewHub())

	noPrivilege, err := jwt.GenerateToken(user.ID, "kim@example.com", "Kim", model.RoleCashier, []string{model.PrivSaleView}, "v1")
	require.NoError(t, err)

	cases := []struct {
		name    string
		target  string
		upgrade bool
		status  int
	}{
		{"plain request", "/ws", false, fiber.StatusUpgradeRequired},
		{"anonymous upgrade", "/ws", true, fiber.StatusUnauthorized},
		{"garbage token", "/ws?token=nope", true, fiber.StatusUnauthorized},
		{"missing privilege", "/ws?token=" + noPrivilege, true, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.target, nil)
			if tc.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Sec-WebSocket-Version", "13")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
