package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func (s stubUsers) FindByID(id uuid.UUID) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func whoAmI(c *fiber.Ctx) error {
	name, _ := c.Locals("user_name").(string)
	return c.SendString(name)
}

func TestRateLimit(t *testing.T) {
	limit, err := RateLimit("1-M")
	require.NoError(t, err)

	app := fiber.New()
	app.Post("/orders", limit, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	resp, err := app.Test(httptest.NewRequest("POST", "/orders", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	resp, err = app.Test(httptest.NewRequest("POST", "/orders", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitBadFormat(t *testing.T) {
	_, err := RateLimit("lots")
	assert.Error(t, err)
}

func TestOptionalAuth(t *testing.T) {
	jwt.SetSecretKey("test-secret")
	user := &model.User{BaseModel: model.BaseModel{ID: uuid.New()}, FullName: "Kim", IsActive: true, TokenVersion: "v1"}
	users := stubUsers{users: map[uuid.UUID]*model.User{user.ID: user}}

	app := fiber.New()
	app.Get("/me", OptionalAuth(users), whoAmI)

	token, err := jwt.GenerateToken(user.ID, "kim@example.com", "Kim", model.RoleCashier, nil, "v1")
	require.NoError(t, err)
	stale, err := jwt.GenerateToken(user.ID, "kim@example.com", "Kim", model.RoleCashier, nil, "v0")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"anonymous", "", fiber.StatusOK},
		{"valid token", "Bearer " + token, fiber.StatusOK},
		{"replaced session", "Bearer " + stale, fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + token, fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequirePrivilege(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_privileges", []string{model.PrivSaleView})
		return c.Next()
	})
	app.Get("/sales", RequirePrivilege(model.PrivSaleView), whoAmI)
	app.Get("/users", RequirePrivilege(model.PrivUserView), whoAmI)
	app.Get("/either", RequireAnyPrivilege(model.PrivUserView, model.PrivSaleView), whoAmI)

	for path, status := range map[string]int{"/sales": 200, "/users": 403, "/either": 200} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, path)
	}
}

func TestQueryToken(t *testing.T) {
	jwt.SetSecretKey("test-secret")
	user := &model.User{BaseModel: model.BaseModel{ID: uuid.New()}, FullName: "Kim", IsActive: true, TokenVersion: "v1"}
	users := stubUsers{users: map[uuid.UUID]*model.User{user.ID: user}}

	app := fiber.New()
	app.Get("/feed", QueryToken("token"), RequireAuth(users), whoAmI)

	token, err := jwt.GenerateToken(user.ID, "kim@example.com", "Kim", model.RoleCashier, nil, "v1")
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/feed?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/feed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// a header on the request is not overridden by the query
	req := httptest.NewRequest("GET", "/feed?token="+token, nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
