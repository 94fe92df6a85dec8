package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/labelhub/labelhub-api/internal/application/carriers"
	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
)

// CarrierHandler maneja la allowlist de carriers/vendors. Las mutaciones son
// solo de admin (el userId viaja en el cuerpo); la lectura efectiva la hace
// el propio dueño.
type CarrierHandler struct {
	uc *carriers.CarrierUseCase
}

// NewCarrierHandler construye el handler de carriers.
func NewCarrierHandler(uc *carriers.CarrierUseCase) *CarrierHandler {
	return &CarrierHandler{uc: uc}
}

// AllowedCarriers godoc
// @Summary      Carriers habilitados de la cuenta (solo status activo)
// @Tags         carriers
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "ID de la cuenta"
// @Success      200  {array}  dto.CarrierResponse
// @Router       /api/auth/allowed-carriers/{userId} [get]
func (h *CarrierHandler) AllowedCarriers(c *fiber.Ctx) error {
	owner, ok, err := accountOwner(c)
	if !ok {
		return err
	}
	out, err := h.uc.EffectiveCarriers(c.Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SubUserAllowedCarriers carriers habilitados por la ruta espejo.
func (h *CarrierHandler) SubUserAllowedCarriers(c *fiber.Ctx) error {
	owner, ok, err := subUserOwner(c)
	if !ok {
		return err
	}
	out, err := h.uc.EffectiveCarriers(c.Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddCarrier godoc
// @Summary      Alta de un carrier en la allowlist de una cuenta (admin)
// @Tags         carriers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AddCarrierRequest  true  "userId, carrier"
// @Success      201   {object}  dto.MessageResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/add-carrier [post]
func (h *CarrierHandler) AddCarrier(c *fiber.Ctx) error {
	var in dto.AddCarrierRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.UserID == "" || in.Carrier == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	if err := h.uc.AddCarrier(c.Context(), entity.OwnerRef{AccountID: in.UserID}, in.Carrier); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "carrier agregado"})
}

// AddVendor godoc
// @Summary      Alta de un vendor dentro de un carrier (admin)
// @Tags         carriers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AddVendorRequest  true  "userId, carrier, vendor"
// @Success      201   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/add-vendor [post]
func (h *CarrierHandler) AddVendor(c *fiber.Ctx) error {
	var in dto.AddVendorRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.UserID == "" || in.Carrier == "" || in.Vendor == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	if err := h.uc.AddVendor(c.Context(), entity.OwnerRef{AccountID: in.UserID}, in.Carrier, in.Vendor); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "vendor agregado"})
}

// UpdateCarrierStatus godoc
// @Summary      Toggle de un carrier (admin)
// @Tags         carriers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CarrierStatusRequest  true  "userId, carrier, status"
// @Success      200   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/update-carrier-status [put]
func (h *CarrierHandler) UpdateCarrierStatus(c *fiber.Ctx) error {
	var in dto.CarrierStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.UserID == "" || in.Carrier == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	if err := h.uc.SetCarrierStatus(c.Context(), entity.OwnerRef{AccountID: in.UserID}, in.Carrier, in.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "status actualizado"})
}

// UpdateVendorStatus godoc
// @Summary      Toggle de un vendor (admin)
// @Tags         carriers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.VendorStatusRequest  true  "userId, carrier, vendor, status"
// @Success      200   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/update-vendor-status [put]
func (h *CarrierHandler) UpdateVendorStatus(c *fiber.Ctx) error {
	var in dto.VendorStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if in.UserID == "" || in.Carrier == "" || in.Vendor == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	if err := h.uc.SetVendorStatus(c.Context(), entity.OwnerRef{AccountID: in.UserID}, in.Carrier, in.Vendor, in.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "status actualizado"})
}

// ReplaceCarriers godoc
// @Summary      Reemplazar la allowlist completa de una cuenta (admin)
// @Tags         carriers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "ID de la cuenta"
// @Param        body  body  dto.ReplaceCarriersRequest  true  "allowlist nueva"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/admin/{userId}/carriers [put]
func (h *CarrierHandler) ReplaceCarriers(c *fiber.Ctx) error {
	var in dto.ReplaceCarriersRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	owner := entity.OwnerRef{AccountID: c.Params("userId")}
	if err := h.uc.ReplaceCarriers(c.Context(), owner, in.AllowedCarriers); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "allowlist reemplazada"})
}
