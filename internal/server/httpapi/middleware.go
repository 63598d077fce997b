package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// bearerAuth verifies the Authorization bearer token and stores its claims
// in the request locals.
func (s *HTTPServer) bearerAuth(c *fiber.Ctx) error {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}

	claims, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		s.logger.Debug(c.UserContext(), "Rejected bearer token", "error", err)
		return fiber.NewError(fiber.StatusUnauthorized, common.ErrInvalidToken.Error())
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

func claimsFrom(c *fiber.Ctx) (*auth.Claims, error) {
	claims, ok := c.Locals(claimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}
	return claims, nil
}
