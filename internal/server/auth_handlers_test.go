package server

import (
	"net/http"
	"testing"
	"time"

	"parkhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	app, _, m, db := setupTestServer(t)

	t.Run("Success", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Alice",
			"email":    "alice@example.com",
			"password": "Password123!",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		// Account starts unverified with a usable code on file.
		var stored models.User
		require.NoError(t, db.Where("email = ?", "alice@example.com").First(&stored).Error)
		assert.False(t, stored.IsVerified)
		assert.Equal(t, models.RoleUser, stored.Role)
		assert.EqualValues(t, stored.ID, body["userId"])

		var otpCount int64
		require.NoError(t, db.Model(&models.OtpCode{}).Where("user_id = ?", stored.ID).Count(&otpCount).Error)
		assert.EqualValues(t, 1, otpCount)
		require.Len(t, m.otps, 1)
		assert.Len(t, m.otps[0], 6)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Alice Again",
			"email":    "alice@example.com",
			"password": "Password123!",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "User with this email already exists", body["error"])
	})

	t.Run("Missing Fields", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "bob@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Email Failure Persists Nothing", func(t *testing.T) {
		m.failNext = true
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bob",
			"email":    "bob@example.com",
			"password": "Password123!",
		})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "EMAIL_DELIVERY_FAILED", body["code"])

		var count int64
		require.NoError(t, db.Model(&models.User{}).Where("email = ?", "bob@example.com").Count(&count).Error)
		assert.EqualValues(t, 0, count, "failed delivery must not leave a user behind")
	})
}

func TestVerifyOtp(t *testing.T) {
	app, _, m, db := setupTestServer(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Carol",
		"email":    "carol@example.com",
		"password": "Password123!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, m.otps, 1)
	code := m.otps[0]

	var carol models.User
	require.NoError(t, db.Where("email = ?", "carol@example.com").First(&carol).Error)

	t.Run("Unknown User Reads Like A Wrong Code", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", "", map[string]interface{}{
			"userId":  999999,
			"otpCode": code,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid or expired OTP", body["error"])
	})

	t.Run("Wrong Code", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", "", map[string]interface{}{
			"userId":  carol.ID,
			"otpCode": "000000",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid or expired OTP", body["error"])
	})

	t.Run("Success", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", "", map[string]interface{}{
			"userId":  carol.ID,
			"otpCode": code,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var user models.User
		require.NoError(t, db.First(&user, carol.ID).Error)
		assert.True(t, user.IsVerified)
	})

	t.Run("Code Is Consumed", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", "", map[string]interface{}{
			"userId":  carol.ID,
			"otpCode": code,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Expired Code", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Dave",
			"email":    "dave@example.com",
			"password": "Password123!",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		code := m.otps[len(m.otps)-1]

		var user models.User
		require.NoError(t, db.Where("email = ?", "dave@example.com").First(&user).Error)
		require.NoError(t, db.Model(&models.OtpCode{}).
			Where("user_id = ?", user.ID).
			Update("expires_at", time.Now().Add(-time.Minute)).Error)

		verifyResp, body := doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", "", map[string]interface{}{
			"userId":  user.ID,
			"otpCode": code,
		})
		assert.Equal(t, http.StatusBadRequest, verifyResp.StatusCode)
		assert.Equal(t, "Invalid or expired OTP", body["error"])
	})
}

func TestResendOtp(t *testing.T) {
	app, _, m, db := setupTestServer(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Erin",
		"email":    "erin@example.com",
		"password": "Password123!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user models.User
	require.NoError(t, db.Where("email = ?", "erin@example.com").First(&user).Error)

	t.Run("Replaces Old Codes", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/resend-otp", "", map[string]interface{}{
			"userId": user.ID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, m.otps, 2)

		var codes []models.OtpCode
		require.NoError(t, db.Where("user_id = ?", user.ID).Find(&codes).Error)
		require.Len(t, codes, 1, "old codes must be deleted")
		assert.Equal(t, m.otps[1], codes[0].Code)
	})

	t.Run("Delivery Failure Keeps New Code", func(t *testing.T) {
		m.failNext = true
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/resend-otp", "", map[string]interface{}{
			"userId": user.ID,
		})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		// The row was written before the send was attempted.
		var codes []models.OtpCode
		require.NoError(t, db.Where("user_id = ?", user.ID).Find(&codes).Error)
		assert.Len(t, codes, 1)
	})

	t.Run("Already Verified", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("is_verified", true).Error)

		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/resend-otp", "", map[string]interface{}{
			"userId": user.ID,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown User Reads Like Already Verified", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/resend-otp", "", map[string]interface{}{
			"userId": 999999,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "User not found or already verified", body["error"])
	})
}

func TestLogin(t *testing.T) {
	app, _, _, db := setupTestServer(t)

	createTestUser(t, db, "frank@example.com", models.RoleUser)

	unverified := createTestUser(t, db, "grace@example.com", models.RoleUser)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", unverified.ID).
		Update("is_verified", false).Error)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"email":    "frank@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Wrong Password",
			body: map[string]string{
				"email":    "frank@example.com",
				"password": "wrong",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown Email",
			body: map[string]string{
				"email":    "nobody@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unverified Account",
			body: map[string]string{
				"email":    "grace@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			// Verification is checked first, whatever the password.
			name: "Unverified Account Wrong Password",
			body: map[string]string{
				"email":    "grace@example.com",
				"password": "wrong",
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				assert.NotEmpty(t, body["token"])
				user := body["user"].(map[string]interface{})
				assert.Equal(t, "frank@example.com", user["email"])
				_, hasPassword := user["password"]
				assert.False(t, hasPassword)
			}
		})
	}
}
