package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"parkhub/internal/config"
	"parkhub/internal/database"
	"parkhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// stubMailer records every send and can be told to fail the next delivery.
type stubMailer struct {
	otps       []string
	approvals  []string
	rejections []string
	failNext   bool
}

func (m *stubMailer) takeFailure() error {
	if m.failNext {
		m.failNext = false
		return errors.New("smtp unreachable")
	}
	return nil
}

func (m *stubMailer) SendOTP(toEmail, code string, validFor time.Duration) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.otps = append(m.otps, code)
	return nil
}

func (m *stubMailer) SendApproval(toEmail, plateNumber, slotNumber, location string) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.approvals = append(m.approvals, toEmail)
	return nil
}

func (m *stubMailer) SendRejection(toEmail, plateNumber, location, reason string) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.rejections = append(m.rejections, reason)
	return nil
}

// setupTestServer builds a Server over a fresh in-memory database with a
// recording mailer and no Redis (rate limiting fails open).
func setupTestServer(t *testing.T) (*fiber.App, *Server, *stubMailer, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:servertest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	m := &stubMailer{}
	cfg := &config.Config{
		JWTSecret: "test-secret-test-secret-test-secret",
		Port:      "0",
		Env:       "test",
	}
	s, err := NewServerWithDeps(cfg, db, nil, m)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupRoutes(app)
	return app, s, m, db
}

// createTestUser persists a verified user with password "password123".
func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:       "Test User",
		Email:      email,
		Password:   string(hashed),
		Role:       role,
		IsVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return token
}

// doJSON performs a request against the test app and decodes the JSON body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}
