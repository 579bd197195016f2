package admin

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Login authenticates the operations admin. Member identity lives in the
// main platform; this service only knows a single admin account configured
// via ADMIN_USERNAME and ADMIN_PASSWORD_HASH (bcrypt).
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Username and password are required",
		})
	}

	adminUser := os.Getenv("ADMIN_USERNAME")
	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminUser == "" || adminHash == "" {
		return c.Status(503).JSON(fiber.Map{
			"success": false,
			"error":   "Admin access not configured",
		})
	}

	if req.Username != adminUser {
		return c.Status(401).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid credentials",
		})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(adminHash), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid credentials",
		})
	}

	token, expiresAt, err := generateAdminToken(req.Username)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to generate token",
		})
	}

	return c.JSON(LoginResponse{
		Success:   true,
		Token:     token,
		Username:  req.Username,
		ExpiresAt: expiresAt,
	})
}

// VerifyToken confirms an admin token already validated by the middleware.
func VerifyToken(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":  true,
		"valid":    true,
		"username": c.Locals("username"),
		"is_admin": c.Locals("isAdmin"),
	})
}

func generateAdminToken(username string) (string, int64, error) {
	expiresAt := time.Now().Add(24 * time.Hour).Unix()

	claims := jwt.MapClaims{
		"username": username,
		"is_admin": true,
		"exp":      expiresAt,
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresAt, nil
}
