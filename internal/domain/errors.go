package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrAccountNotFound     = errors.New("cuenta no encontrada")
	ErrSubUserNotFound     = errors.New("sub-usuario no encontrado")
	ErrCarrierNotFound     = errors.New("carrier no encontrado")
	ErrVendorNotFound      = errors.New("vendor no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrAccountBlocked      = errors.New("cuenta bloqueada")
	ErrInsufficientBalance = errors.New("saldo insuficiente")
	ErrProviderMismatch    = errors.New("el proveedor devolvió una cantidad distinta de trackings")
	ErrBarcodeGeneration   = errors.New("falló la generación del código de barras")
	ErrPoolEmpty           = errors.New("no hay shipments disponibles en el pool")
)
