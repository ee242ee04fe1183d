// Package middleware provides authentication, authorization, logging and
// rate limiting middleware for the application.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"parkhub/internal/config"
	"parkhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired enforces authentication for protected routes. On success it
// stores the caller's userID, email and role in Fiber locals and propagates
// the user ID into the request context for logging.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization header required"))
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid authorization header format"))
	}

	tokenString := parts[1]

	// Parse and validate token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token claims"))
	}

	// Extract user ID from "sub" claim (subject claim per RFC 7519)
	subStr, ok := claims["sub"].(string)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token structure - missing subject"))
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid user ID in token"))
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleUser
	}

	c.Locals("userID", uint(userIDVal))
	c.Locals("email", email)
	c.Locals("role", role)

	// Sync user ID into the request context for the context-aware logger.
	ctx := context.WithValue(c.UserContext(), UserIDKey, uint(userIDVal))
	c.SetUserContext(ctx)

	return c.Next()
}

// RequireAdmin rejects callers whose token role is not admin with 403.
// Must be placed after AuthRequired so that the role local is available.
func RequireAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != models.RoleAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Admin access required"))
	}
	return c.Next()
}
