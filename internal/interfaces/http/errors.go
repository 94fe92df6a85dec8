package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
)

// httpError par status + code estable para el frontend.
type httpError struct {
	status int
	code   string
}

// errorTable mapeo de errores de dominio a HTTP. El mensaje siempre sale del
// error de dominio; aquí solo se decide status y code.
var errorTable = []struct {
	err  error
	resp httpError
}{
	{domain.ErrUnauthorized, httpError{fiber.StatusUnauthorized, "UNAUTHORIZED"}},
	{domain.ErrForbidden, httpError{fiber.StatusForbidden, "FORBIDDEN"}},
	{domain.ErrAccountBlocked, httpError{fiber.StatusForbidden, "ACCOUNT_BLOCKED"}},
	{domain.ErrInsufficientBalance, httpError{fiber.StatusPaymentRequired, "INSUFFICIENT_BALANCE"}},
	{domain.ErrEmailAlreadyExists, httpError{fiber.StatusConflict, "EMAIL_EXISTS"}},
	{domain.ErrConflict, httpError{fiber.StatusConflict, "CONFLICT"}},
	{domain.ErrInvalidInput, httpError{fiber.StatusBadRequest, "VALIDATION"}},
	{domain.ErrAccountNotFound, httpError{fiber.StatusNotFound, "ACCOUNT_NOT_FOUND"}},
	{domain.ErrSubUserNotFound, httpError{fiber.StatusNotFound, "SUB_USER_NOT_FOUND"}},
	{domain.ErrCarrierNotFound, httpError{fiber.StatusNotFound, "CARRIER_NOT_FOUND"}},
	{domain.ErrVendorNotFound, httpError{fiber.StatusNotFound, "VENDOR_NOT_FOUND"}},
	{domain.ErrPoolEmpty, httpError{fiber.StatusNotFound, "POOL_EMPTY"}},
	{domain.ErrNotFound, httpError{fiber.StatusNotFound, "NOT_FOUND"}},
	{domain.ErrProviderMismatch, httpError{fiber.StatusBadGateway, "PROVIDER_MISMATCH"}},
	{domain.ErrBarcodeGeneration, httpError{fiber.StatusBadGateway, "BARCODE_GENERATION"}},
}

// respondError traduce un error de dominio a la respuesta HTTP. Errores no
// mapeados son 500 con mensaje genérico: el detalle queda en logs, no en el
// cliente.
func respondError(c *fiber.Ctx, err error) error {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return c.Status(e.resp.status).JSON(dto.ErrorResponse{Code: e.resp.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code:    "INTERNAL",
		Message: "error interno",
	})
}

// badRequest respuesta 400 con mensaje propio (cuerpos malformados).
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: msg})
}
