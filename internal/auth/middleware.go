// Package auth gates protected routes behind a bearer token. The
// middleware extracts the token, verifies it, resolves the user it names
// and stashes the user in request locals; any ambiguity rejects the
// request outright.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"auth-backend/internal/token"
	"auth-backend/internal/user"
)

// Gate failure modes. Clients see the same generic 401 for all of them so
// a rejected request leaks nothing about accounts or token state.
var (
	ErrMissingToken = errors.New("authentication token is missing")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUserNotFound = errors.New("token user no longer exists")
)

// UserFinder resolves token claims back to a stored user.
type UserFinder interface {
	GetByID(id string) (user.User, error)
}

// Config wires the middleware's collaborators.
type Config struct {
	Codec *token.Codec
	Users UserFinder
}

// New returns the gate middleware. It never mutates state; on success the
// resolved user is available via user.FromCtx. Every failure mode answers
// with the same generic 401.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := resolve(c, cfg)
		if err != nil {
			return reject(c)
		}

		c.Locals(user.LocalsKey, u)
		return c.Next()
	}
}

// resolve walks the gate's three steps: extract, decode, look up.
func resolve(c *fiber.Ctx, cfg Config) (user.User, error) {
	raw, err := TokenFromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return user.User{}, err
	}

	claims, err := cfg.Codec.Decode(raw, time.Now())
	if err != nil {
		// Malformed, BadSignature and Expired are deliberately collapsed
		return user.User{}, ErrInvalidToken
	}

	u, err := cfg.Users.GetByID(claims.UserID)
	if err != nil {
		return user.User{}, ErrUserNotFound
	}

	return u, nil
}

// TokenFromHeader pulls the raw token out of an Authorization header
// value. The match is exact: the case-sensitive scheme "Bearer" followed
// by a single space and the token.
func TokenFromHeader(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrMissingToken
	}
	raw := header[len(prefix):]
	if raw == "" || strings.Contains(raw, " ") {
		return "", ErrMissingToken
	}
	return raw, nil
}

func reject(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Unauthorized",
	})
}
