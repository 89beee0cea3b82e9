package handlers

import (
	"fmt"
	"log"
	"strings"

	"nictech/internal/models"
	"nictech/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for staff authentication and account
// management. Login is the only public route; account creation lives on the
// admin surface because the back office has no self-service sign-up.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterPublicRoutes registers the login route.
func (h *AuthHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Post("/auth/login", h.HandleLogin)
}

// RegisterAdminRoutes registers the staff account management routes,
// expected to be mounted behind the admin middleware.
func (h *AuthHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/auth/staff", h.HandleCreateStaff)
}

// HandleCreateStaff creates a staff account on behalf of an admin.
func (h *AuthHandler) HandleCreateStaff(c *fiber.Ctx) error {
	var account models.StaffAccount
	if err := c.BodyParser(&account); err != nil {
		log.Printf("Error parsing staff account request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(account); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.authService.CreateStaff(&account); err != nil {
		log.Printf("Error creating staff account: %v", err)
		if strings.Contains(err.Error(), "already taken") || strings.Contains(err.Error(), "already registered") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Account creation failed",
				"error":   err.Error(),
			})
		}
		if strings.Contains(err.Error(), "unknown role") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Account creation failed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create staff account",
			"error":   err.Error(),
		})
	}

	// For security, do not return the password hash
	account.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Staff account created successfully",
		"account": account,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles staff login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		log.Printf("Error during login for account %s: %v", req.Username, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
