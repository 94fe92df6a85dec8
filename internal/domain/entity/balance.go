package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una entrada del historial de saldo. Solo este campo es mutable
// después de insertada la entrada (lo ajusta un admin).
const (
	BalanceStatusPaid   = "paid"
	BalanceStatusUnpaid = "unpaid"
)

// BalanceEntry es una entrada append-only del historial de saldo: captura el
// saldo antes y después de cada mutación que no sea un override directo de
// admin.
type BalanceEntry struct {
	ID              string
	AccountID       string
	SubUserID       string // vacío para cuentas top-level
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	TotalDeposit    decimal.Decimal
	Status          string // paid | unpaid
	UpdatedAt       time.Time
}
