package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/pkg/jwt"
)

// Locals keys del principal autenticado en Fiber.
const (
	LocalPrincipalID   = "principal_id"
	LocalPrincipalType = "principal_type"
	LocalDealerID      = "dealer_id"
)

// AuthMiddleware valida el Bearer Token JWT y carga el principal a c.Locals.
// Falla cerrado: cualquier token ausente, malformado o expirado corta con 401.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalPrincipalID, claims.PrincipalID)
		c.Locals(LocalPrincipalType, claims.PrincipalType)
		c.Locals(LocalDealerID, claims.DealerID)
		return c.Next()
	}
}

// RequireRole autoriza solo a los tipos de principal indicados. Usar después
// de AuthMiddleware.
func RequireRole(types ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt := GetPrincipalType(c)
		for _, t := range types {
			if pt == t {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}

// GetPrincipalID devuelve el ID del principal autenticado.
func GetPrincipalID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalPrincipalID).(string)
	return s
}

// GetPrincipalType devuelve el tipo de principal (admin|user|dealer|sub_user).
func GetPrincipalType(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalPrincipalType).(string)
	return s
}

// GetDealerID devuelve el dealer padre cuando el principal es sub-usuario.
func GetDealerID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalDealerID).(string)
	return s
}

// isAdmin atajo para los checks de ownership.
func isAdmin(c *fiber.Ctx) bool {
	return GetPrincipalType(c) == jwt.PrincipalAdmin
}

// canActOnAccount autoriza operaciones sobre la cuenta userID: el dueño
// (user o dealer con ese ID) o un admin. Los sub-usuarios nunca pasan por
// aquí, usan las rutas espejo bajo su dealer.
func canActOnAccount(c *fiber.Ctx, userID string) bool {
	if isAdmin(c) {
		return true
	}
	pt := GetPrincipalType(c)
	return (pt == jwt.PrincipalUser || pt == jwt.PrincipalDealer) && GetPrincipalID(c) == userID
}

// canActOnSubUser autoriza las rutas espejo de sub-usuario: el dealer padre,
// el propio sub-usuario o un admin.
func canActOnSubUser(c *fiber.Ctx, dealerID, subUserID string) bool {
	if isAdmin(c) {
		return true
	}
	switch GetPrincipalType(c) {
	case jwt.PrincipalDealer:
		return GetPrincipalID(c) == dealerID
	case jwt.PrincipalSubUser:
		return GetPrincipalID(c) == subUserID && GetDealerID(c) == dealerID
	}
	return false
}
