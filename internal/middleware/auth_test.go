package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"parkhub/internal/config"
	"parkhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func signToken(t *testing.T, secret string, userID uint, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(userID), 10),
		"email": "test@example.com",
		"role":  role,
		"iss":   "parkhub-api",
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func setupAuthApp() *fiber.App {
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiber.New()
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userID": c.Locals("userID"),
			"role":   c.Locals("role"),
		})
	})
	app.Get("/admin", AuthRequired, RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := setupAuthApp()

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "Missing Header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Header",
			header:         "Token abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Garbage Token",
			header:         "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Secret",
			header:         "Bearer " + signToken(t, "some-other-secret-entirely-here!!", 1, models.RoleUser, time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			header:         "Bearer " + signToken(t, testSecret, 1, models.RoleUser, -time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Token",
			header:         "Bearer " + signToken(t, testSecret, 1, models.RoleUser, time.Hour),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := setupAuthApp()

	t.Run("User Role Forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 1, models.RoleUser, time.Hour))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Admin Role Passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 1, models.RoleAdmin, time.Hour))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
