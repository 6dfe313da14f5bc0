package handlers

import (
	"errors"
	"strings"

	"tally/internal/services/auth"
	"tally/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return utils.BadRequest(c, "A valid email is required")
	}
	if len(input.Password) < 8 {
		return utils.BadRequest(c, "Password must be at least 8 characters")
	}

	user, err := h.authService.Register(c.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return utils.Conflict(c, "Email already registered")
		}
		return utils.InternalError(c, "Failed to register user")
	}

	return utils.Created(c, fiber.Map{"user": user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	token, user, err := h.authService.Login(c.Context(), strings.TrimSpace(strings.ToLower(input.Email)), input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return utils.Unauthorized(c, "Invalid email or password")
		}
		return utils.InternalError(c, "Failed to log in")
	}

	return utils.Success(c, fiber.Map{
		"token": token,
		"user":  user,
	})
}
