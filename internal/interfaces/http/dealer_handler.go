package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/labelhub/labelhub-api/internal/application/dealer"
	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/pkg/jwt"
)

// DealerHandler maneja la gestión de sub-usuarios de un dealer.
type DealerHandler struct {
	uc *dealer.DealerUseCase
}

// NewDealerHandler construye el handler de dealer.
func NewDealerHandler(uc *dealer.DealerUseCase) *DealerHandler {
	return &DealerHandler{uc: uc}
}

// canManageSubUsers solo el propio dealer o un admin gestionan sub-usuarios;
// un sub-usuario no puede tocar a sus pares.
func canManageSubUsers(c *fiber.Ctx, dealerID string) bool {
	if isAdmin(c) {
		return true
	}
	return GetPrincipalType(c) == jwt.PrincipalDealer && GetPrincipalID(c) == dealerID
}

func (h *DealerHandler) authorize(c *fiber.Ctx) (string, bool, error) {
	dealerID := c.Params("dealerId")
	if !canManageSubUsers(c, dealerID) {
		return "", false, c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code: "FORBIDDEN", Message: "solo el dealer o un admin gestionan sub-usuarios",
		})
	}
	return dealerID, true, nil
}

// AddSubUser godoc
// @Summary      Crear un sub-usuario bajo el dealer
// @Tags         dealer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        dealerId  path  string  true  "ID del dealer"
// @Param        body  body  dto.AddSubUserRequest  true  "name, email, password, rate"
// @Success      201   {object}  dto.SubUserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/dealer/{dealerId}/sub-users [post]
func (h *DealerHandler) AddSubUser(c *fiber.Ctx) error {
	dealerID, ok, err := h.authorize(c)
	if !ok {
		return err
	}
	var in dto.AddSubUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.Email == "" || in.Password == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.AddSubUser(c.Context(), dealerID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSubUsers godoc
// @Summary      Listar sub-usuarios del dealer
// @Tags         dealer
// @Produce      json
// @Security     BearerAuth
// @Param        dealerId  path   string  true   "ID del dealer"
// @Param        limit     query  int     false  "tamaño de página"
// @Param        offset    query  int     false  "desplazamiento"
// @Success      200  {array}  dto.SubUserResponse
// @Router       /api/auth/dealer/{dealerId}/sub-users [get]
func (h *DealerHandler) ListSubUsers(c *fiber.Ctx) error {
	dealerID, ok, err := h.authorize(c)
	if !ok {
		return err
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	out, err := h.uc.ListSubUsers(c.Context(), dealerID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetSubUser godoc
// @Summary      Datos de un sub-usuario
// @Tags         dealer
// @Produce      json
// @Security     BearerAuth
// @Param        dealerId   path  string  true  "ID del dealer"
// @Param        subUserId  path  string  true  "ID del sub-usuario"
// @Success      200  {object}  dto.SubUserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/auth/dealer/{dealerId}/sub-users/{subUserId} [get]
func (h *DealerHandler) GetSubUser(c *fiber.Ctx) error {
	dealerID := c.Params("dealerId")
	subUserID := c.Params("subUserId")
	// El propio sub-usuario también puede leer sus datos.
	if !canActOnSubUser(c, dealerID, subUserID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code: "FORBIDDEN", Message: "sin permiso sobre este sub-usuario",
		})
	}
	out, err := h.uc.GetSubUser(c.Context(), dealerID, subUserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteSubUser godoc
// @Summary      Eliminar un sub-usuario
// @Tags         dealer
// @Produce      json
// @Security     BearerAuth
// @Param        dealerId   path  string  true  "ID del dealer"
// @Param        subUserId  path  string  true  "ID del sub-usuario"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/auth/dealer/{dealerId}/sub-users/{subUserId} [delete]
func (h *DealerHandler) DeleteSubUser(c *fiber.Ctx) error {
	dealerID, ok, err := h.authorize(c)
	if !ok {
		return err
	}
	if err := h.uc.DeleteSubUser(c.Context(), dealerID, c.Params("subUserId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "sub-usuario eliminado"})
}

// TopUpSubUser godoc
// @Summary      Recargar saldo de un sub-usuario
// @Tags         dealer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        dealerId   path  string  true  "ID del dealer"
// @Param        subUserId  path  string  true  "ID del sub-usuario"
// @Param        body  body  dto.SubUserTopUpRequest  true  "amount"
// @Success      200   {object}  dto.SubUserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/dealer/{dealerId}/sub-users/{subUserId}/balance [put]
func (h *DealerHandler) TopUpSubUser(c *fiber.Ctx) error {
	dealerID, ok, err := h.authorize(c)
	if !ok {
		return err
	}
	var in dto.SubUserTopUpRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	out, err := h.uc.TopUpSubUser(c.Context(), dealerID, c.Params("subUserId"), in.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetSubUserRate godoc
// @Summary      Fijar el costo por etiqueta de un sub-usuario
// @Tags         dealer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        dealerId   path  string  true  "ID del dealer"
// @Param        subUserId  path  string  true  "ID del sub-usuario"
// @Param        body  body  dto.RateRequest  true  "rate"
// @Success      200   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/auth/dealer/{dealerId}/sub-users/{subUserId}/rate [put]
func (h *DealerHandler) SetSubUserRate(c *fiber.Ctx) error {
	dealerID, ok, err := h.authorize(c)
	if !ok {
		return err
	}
	var in dto.RateRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := h.uc.SetSubUserRate(c.Context(), dealerID, c.Params("subUserId"), in.Rate); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "rate actualizado"})
}
