package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/labelhub/labelhub-api/internal/application/auth"
	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
)

// AuthHandler maneja signup, login y sesión actual.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Signup godoc
// @Summary      Registrar cuenta
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "name, email, password"
// @Success      201   {object}  dto.UserDataResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.Email == "" || in.Password == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "password debe tener al menos 8 caracteres"})
	}
	out, err := h.uc.Signup(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password, device"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.Email == "" || in.Password == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.Login(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SubUserLogin godoc
// @Summary      Iniciar sesión como sub-usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        dealerId  path  string  true  "ID del dealer padre"
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.SubUserLoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/auth/dealer/{dealerId}/sub-users/login [post]
func (h *AuthHandler) SubUserLogin(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.Email == "" || in.Password == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.SubUserLogin(c.Context(), c.Params("dealerId"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CurrentUser godoc
// @Summary      Datos de la cuenta autenticada
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserDataResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/user [get]
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	out, err := h.uc.CurrentUser(c.Context(), GetPrincipalID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
