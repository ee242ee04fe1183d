package server

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"parkhub/internal/middleware"
	"parkhub/internal/models"
	"parkhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpRegisterTTL = 15 * time.Minute
	otpResendTTL   = 5 * time.Minute
	tokenTTL       = time.Hour
)

// Register handles POST /api/auth/register
//
// The OTP email goes out before the user row is written: if delivery fails,
// nothing is persisted and the caller can simply retry.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Validate input
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name, email, and password are required"))
	}

	// Check if user already exists
	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("User with this email already exists"))
	}

	// Advisory only: self-registration always produces regular users.
	if adminCount, countErr := s.userRepo.CountAdmins(c.Context()); countErr == nil && adminCount == 0 {
		middleware.Logger.WarnContext(c.UserContext(),
			"no admin account exists yet; create one with the seed command")
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	code, err := generateOtpCode()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if sendErr := s.mailer.SendOTP(req.Email, code, otpRegisterTTL); sendErr != nil {
		observability.EmailDeliveries.WithLabelValues("otp", "failed").Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewEmailDeliveryError(sendErr))
	}
	observability.EmailDeliveries.WithLabelValues("otp", "sent").Inc()

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}
	if createErr := s.userRepo.Create(c.Context(), user); createErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, createErr)
	}

	otp := &models.OtpCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(otpRegisterTTL),
	}
	if otpErr := s.otpRepo.Create(c.Context(), otp); otpErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, otpErr)
	}

	s.audit(c, user.ID, "User registered")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful. Check your email for the verification code.",
		"userId":  user.ID,
	})
}

// VerifyOtp handles POST /api/auth/verify-otp
func (s *Server) VerifyOtp(c *fiber.Ctx) error {
	var req struct {
		UserID  uint   `json:"userId"`
		OtpCode string `json:"otpCode"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 || req.OtpCode == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("User ID and OTP code are required"))
	}

	// An unknown user, wrong code, expired code and consumed code all read
	// the same from outside.
	otp, err := s.otpRepo.FindUsable(c.Context(), req.UserID, req.OtpCode, time.Now())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if otp == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid or expired OTP"))
	}

	if err := s.otpRepo.Consume(c.Context(), req.UserID, req.OtpCode); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if err := s.userRepo.UpdateFields(c.Context(), req.UserID, map[string]interface{}{"is_verified": true}); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.audit(c, req.UserID, "User verified OTP")
	middleware.Logger.InfoContext(c.UserContext(), "account verified",
		slog.Uint64("user_id", uint64(req.UserID)))

	return c.JSON(fiber.Map{
		"message": "Account verified successfully",
	})
}

// ResendOtp handles POST /api/auth/resend-otp
//
// Unlike registration the new code row is persisted before delivery is
// attempted, so a failed send still leaves a valid code that a later resend
// will replace.
func (s *Server) ResendOtp(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("User ID is required"))
	}

	user, err := s.userRepo.GetByID(c.Context(), req.UserID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	// Missing and already-verified accounts read the same from outside.
	if user == nil || user.IsVerified {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("User not found or already verified"))
	}

	if err := s.otpRepo.DeleteForUser(c.Context(), user.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	code, err := generateOtpCode()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	otp := &models.OtpCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(otpResendTTL),
	}
	if otpErr := s.otpRepo.Create(c.Context(), otp); otpErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, otpErr)
	}

	if sendErr := s.mailer.SendOTP(user.Email, code, otpResendTTL); sendErr != nil {
		observability.EmailDeliveries.WithLabelValues("otp", "failed").Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewEmailDeliveryError(sendErr))
	}
	observability.EmailDeliveries.WithLabelValues("otp", "sent").Inc()

	s.audit(c, user.ID, "OTP resent")

	return c.JSON(fiber.Map{
		"message": "A new verification code has been sent to your email",
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Find user by email
	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	// Unverified accounts are turned away before the password is checked.
	if !user.IsVerified {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Account not verified. Check your email for the verification code."))
	}

	// Compare password
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	// Generate JWT token
	token, err := s.generateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.audit(c, user.ID, "User logged in")

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.ToProfile(),
	})
}

// generateToken creates a JWT token for the given user ID, email and role
func (s *Server) generateToken(userID uint, email, role string) (string, error) {
	// Validate secret exists
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(userID), 10), // Subject (user ID as string)
		"email": email,                                  // Email (cached in token)
		"role":  role,                                   // Role for authorization checks
		"iss":   "parkhub-api",                          // Issuer
		"exp":   now.Add(tokenTTL).Unix(),               // Expiration (1 hour)
		"iat":   now.Unix(),                             // Issued at
		"jti":   s.generateJTI(),                        // JWT ID (unique identifier)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// generateOtpCode returns a cryptographically random six digit code.
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
