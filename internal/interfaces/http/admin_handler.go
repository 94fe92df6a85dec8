package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/labelhub/labelhub-api/internal/application/admin"
	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
)

// AdminHandler maneja el panel admin: cuentas, overrides de saldo, pool de
// shipments y el passthrough de tracking.
type AdminHandler struct {
	uc *admin.AdminUseCase
}

// NewAdminHandler construye el handler admin.
func NewAdminHandler(uc *admin.AdminUseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdminRegisterRequest  true  "name, email, password"
// @Success      201   {object}  dto.MessageResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/register [post]
func (h *AdminHandler) Register(c *fiber.Ctx) error {
	var in dto.AdminRegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := h.uc.Register(c.Context(), in); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "admin registrado"})
}

// Login godoc
// @Summary      Login admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.AdminLoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/admin/login [post]
func (h *AdminHandler) Login(c *fiber.Ctx) error {
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

// ListUsers godoc
// @Summary      Listar cuentas
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "tamaño de página"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.UserDataResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	out, err := h.uc.ListUsers(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetUserStatus godoc
// @Summary      Bloquear/desbloquear una cuenta
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "ID de la cuenta"
// @Param        body  body  dto.UserStatusRequest  true  "status (true = bloqueada)"
// @Success      200   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id}/status [put]
func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	var in dto.UserStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := h.uc.SetUserStatus(c.Context(), c.Params("id"), in.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "status actualizado"})
}

// SetBalance godoc
// @Summary      Override directo de saldo y depósito
// @Description  Única mutación de saldo que no genera entrada de historial.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "ID de la cuenta"
// @Param        body  body  dto.BalanceOverrideRequest  true  "availableBalance, totalDeposit"
// @Success      200   {object}  dto.UserDataResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id}/balance [put]
func (h *AdminHandler) SetBalance(c *fiber.Ctx) error {
	var in dto.BalanceOverrideRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	out, err := h.uc.SetBalance(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetRate godoc
// @Summary      Fijar el costo por etiqueta de una cuenta
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "ID de la cuenta"
// @Param        body  body  dto.RateRequest  true  "rate"
// @Success      200   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id}/rate [put]
func (h *AdminHandler) SetRate(c *fiber.Ctx) error {
	var in dto.RateRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.Rate.IsNegative() {
		return respondError(c, domain.ErrInvalidInput)
	}
	if err := h.uc.SetRate(c.Context(), c.Params("id"), in.Rate); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "rate actualizado"})
}

// SetDealer godoc
// @Summary      Marcar/desmarcar una cuenta como dealer
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "ID de la cuenta"
// @Param        body  body  dto.DealerFlagRequest  true  "isDealer"
// @Success      200   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id}/is-dealer [put]
func (h *AdminHandler) SetDealer(c *fiber.Ctx) error {
	var in dto.DealerFlagRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.IsDealer == nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	if err := h.uc.SetDealer(c.Context(), c.Params("id"), *in.IsDealer); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "flag actualizado"})
}

// DeleteUser godoc
// @Summary      Eliminar una cuenta y todo lo que cuelga de ella
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.uc.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "cuenta eliminada"})
}

// SetBalanceEntryStatus godoc
// @Summary      Cambiar el status paid/unpaid de una entrada de saldo
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string  true  "ID de la cuenta"
// @Param        entryId  path  string  true  "ID de la entrada"
// @Param        body  body  dto.BalanceEntryStatusRequest  true  "status: paid | unpaid"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id}/balance-history/{entryId}/status [put]
func (h *AdminHandler) SetBalanceEntryStatus(c *fiber.Ctx) error {
	var in dto.BalanceEntryStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := h.uc.SetBalanceEntryStatus(c.Context(), c.Params("id"), c.Params("entryId"), in.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "status actualizado"})
}

// UploadShipments godoc
// @Summary      Cargar shipments pre-comprados al pool
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UploadShipmentsRequest  true  "filas del Excel"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/admin/upload-shipments [post]
func (h *AdminHandler) UploadShipments(c *fiber.Ctx) error {
	var in dto.UploadShipmentsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	n, err := h.uc.UploadShipments(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: strconv.Itoa(n) + " shipments cargados"})
}

// ListShipments godoc
// @Summary      Ver el pool de shipments
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.ShipmentResponse
// @Router       /api/admin/read/shipts [get]
func (h *AdminHandler) ListShipments(c *fiber.Ctx) error {
	out, err := h.uc.ListShipments(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PullShipment godoc
// @Summary      Consumir atómicamente un shipment del pool
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.PullShipmentRequest  true  "carrier, labelType"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/pull/shipts [post]
func (h *AdminHandler) PullShipment(c *fiber.Ctx) error {
	var in dto.PullShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.Carrier == "" || in.LabelType == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.PullShipment(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GenerateTracking godoc
// @Summary      Passthrough de generación de tracking (diagnóstico)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        vendor  query  string  true   "vendor"
// @Param        class   query  string  true   "clase de servicio"
// @Param        count   query  int     false  "cantidad (default 1)"
// @Success      200  {object}  map[string][]string
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/admin/generate-tracking [get]
func (h *AdminHandler) GenerateTracking(c *fiber.Ctx) error {
	vendor := c.Query("vendor")
	class := c.Query("class")
	if vendor == "" || class == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	count := c.QueryInt("count", 1)
	trackings, err := h.uc.GenerateTracking(c.Context(), vendor, class, count)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"trackingNumbers": trackings})
}
