package httpapi

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lighthouse-crew/profilesync/internal/server/auth"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

const principalKey = "principal"

// accessTokenMiddleware validates the Bearer JWT and stores the resulting
// principal in the request locals. Every session and upload route sits
// behind it; the auth provider issues the tokens, this server only verifies.
func (s *HTTPServer) accessTokenMiddleware(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if header == "" {
		return respondError(c, http.StatusUnauthorized, "missing Authorization header")
	}

	tokenStr := header
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		tokenStr = strings.TrimSpace(parts[1])
	}
	if tokenStr == "" {
		return respondError(c, http.StatusUnauthorized, "empty token")
	}

	principal, err := auth.PrincipalFromToken(tokenStr, s.jwtSecret)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, "invalid or expired token")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

func principalFromCtx(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals(principalKey).(models.Principal)
	return p, ok
}
