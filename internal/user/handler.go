package user

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"auth-backend/internal/token"
)

type Handler struct {
	service *Service
	tokens  *token.Codec
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewHandler(service *Service, tokens *token.Codec) *Handler {
	return &Handler{service: service, tokens: tokens}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/auth/login", h.login)
}

// RegisterProtectedRoutes registers routes that expect the auth middleware
// to have resolved a user into locals beforehand.
func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/user/me", h.me)
	app.Patch("/user/update", h.update)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return fail(c, fiber.StatusBadRequest, "No data provided")
	}

	u, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return fail(c, fiber.StatusBadRequest, "Email and password are required")
		case errors.Is(err, ErrInvalidEmail):
			return fail(c, fiber.StatusBadRequest, "Invalid email format")
		case errors.Is(err, ErrInvalidCredentials):
			return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
		default:
			log.Printf("login error: %v", err)
			return fail(c, fiber.StatusInternalServerError, "An error occurred during login")
		}
	}

	signed, err := h.tokens.Issue(u.ID, time.Now())
	if err != nil {
		log.Printf("token issue error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "An error occurred during login")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"token":   signed,
		"user":    u.Profile(),
	})
}

func (h *Handler) me(c *fiber.Ctx) error {
	u, err := FromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    u.Profile(),
	})
}

func (h *Handler) update(c *fiber.Ctx) error {
	u, err := FromCtx(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	patch := new(ProfilePatch)
	if err := c.BodyParser(patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "No data provided")
	}

	updated, err := h.service.UpdateProfile(u.ID, *patch)
	if err != nil {
		var fieldErr *FieldError
		switch {
		case errors.Is(err, ErrNoFields):
			return fail(c, fiber.StatusBadRequest, "At least one field (first_name or last_name) is required")
		case errors.As(err, &fieldErr):
			return fail(c, fiber.StatusBadRequest, fieldErr.Error())
		case errors.Is(err, ErrNotFound):
			// the user vanished between the gate and the write
			return fail(c, fiber.StatusUnauthorized, "Unauthorized")
		default:
			log.Printf("profile update error: %v", err)
			return fail(c, fiber.StatusInternalServerError, "An error occurred while updating user")
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User updated successfully",
		"user":    updated.Profile(),
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}
