package services

import (
	"fmt"
	"log"
	"time"

	"nictech/internal/models"
	"nictech/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates back-office staff and manages their accounts.
// There is no self-service registration: accounts are created by admins via
// CreateStaff, and the first admin comes from EnsureAdmin at startup.
type AuthService struct {
	staffRepo  repositories.StaffRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(staffRepo repositories.StaffRepository, jwtSecret string) *AuthService {
	return &AuthService{
		staffRepo:  staffRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// EnsureAdmin seeds the bootstrap admin account when no admin exists yet.
// It is a no-op once any admin is present, so rotating the configured
// credentials never touches existing accounts.
func (s *AuthService) EnsureAdmin(username, email, password string) error {
	count, err := s.staffRepo.CountAdmins()
	if err != nil {
		return fmt.Errorf("failed to count admin accounts: %w", err)
	}
	if count > 0 {
		return nil
	}
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("no admin account exists and bootstrap credentials are incomplete")
	}
	log.Printf("No admin account found; seeding bootstrap admin '%s'", username)
	return s.CreateStaff(&models.StaffAccount{
		Username: username,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
}

// CreateStaff creates a staff account, hashing the password before it is
// stored. An empty role defaults to staff.
func (s *AuthService) CreateStaff(account *models.StaffAccount) error {
	if account.Role == "" {
		account.Role = models.RoleStaff
	}
	if account.Role != models.RoleAdmin && account.Role != models.RoleStaff {
		return fmt.Errorf("unknown role '%s'", account.Role)
	}

	// Check if username or email already exists
	if existing, err := s.staffRepo.GetByUsername(account.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s' already taken", account.Username)
	}
	if existing, err := s.staffRepo.GetByEmail(account.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered", account.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.Password = string(hashedPassword) // Store the hashed password

	if err := s.staffRepo.Create(account); err != nil {
		return fmt.Errorf("failed to create staff account: %w", err)
	}
	return nil
}

// Login authenticates a staff account and returns a JWT token carrying the
// account's role claim.
func (s *AuthService) Login(username, password string) (string, error) {
	account, err := s.staffRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": account.ID,
		"username":   account.Username,
		"role":       account.Role,
		"exp":        time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":        time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
