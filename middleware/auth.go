// middleware/auth.go
package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token issued by the identity provider
// and exposes the member's id to the handlers. This service never issues
// member tokens itself.
func AuthMiddleware(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Missing or malformed authorization header"})
	}

	claims, err := ParseToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid token claims"})
	}

	c.Locals("userId", userID)
	if name, ok := claims["user_name"].(string); ok {
		c.Locals("userName", name)
	}

	return c.Next()
}

// OptionalAuthMiddleware exposes the member's id when a valid token is
// present but lets anonymous requests through.
func OptionalAuthMiddleware(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Next()
	}
	claims, err := ParseToken(tokenString)
	if err != nil {
		return c.Next()
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		c.Locals("userId", userID)
		if name, ok := claims["user_name"].(string); ok {
			c.Locals("userName", name)
		}
	}
	return c.Next()
}

// AdminAuthMiddleware additionally requires the is_admin claim.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Missing or malformed authorization header"})
	}

	claims, err := ParseToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
	}

	isAdmin, ok := claims["is_admin"].(bool)
	if !ok || !isAdmin {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Access denied. Admin privileges required."})
	}

	c.Locals("username", claims["username"])
	c.Locals("isAdmin", true)

	return c.Next()
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// ParseToken validates an HMAC-signed JWT and returns its claims.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.NewError(401, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.NewError(401, "Invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, fiber.NewError(401, "Token expired")
	}

	return claims, nil
}

// GetUserID returns the authenticated member id set by AuthMiddleware.
func GetUserID(c *fiber.Ctx) (string, error) {
	userID := c.Locals("userId")
	if userID == nil {
		return "", fiber.NewError(401, "User not authenticated")
	}
	if id, ok := userID.(string); ok && id != "" {
		return id, nil
	}
	return "", fiber.NewError(401, "Invalid user ID format")
}

// GetUserName returns the display name claim, falling back to the id.
func GetUserName(c *fiber.Ctx) string {
	if name, ok := c.Locals("userName").(string); ok && name != "" {
		return name
	}
	id, _ := GetUserID(c)
	return id
}
