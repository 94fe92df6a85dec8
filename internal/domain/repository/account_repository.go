package repository

import (
	"github.com/shopspring/decimal"

	"github.com/labelhub/labelhub-api/internal/domain/entity"
)

// AccountRepository define el puerto de persistencia para Account (DIP).
type AccountRepository interface {
	Create(a *entity.Account) error
	GetByID(id string) (*entity.Account, error)
	GetByEmail(email string) (*entity.Account, error)
	// GetByIDForUpdate bloquea la fila (SELECT FOR UPDATE); usar solo dentro
	// de una transacción para serializar mutaciones de saldo por cuenta.
	GetByIDForUpdate(id string) (*entity.Account, error)
	List(limit, offset int) ([]*entity.Account, error)
	// UpdateLedger persiste los campos contables (saldo, depósito, contador).
	UpdateLedger(a *entity.Account) error
	SetBlocked(id string, blocked bool) error
	SetDealer(id string, isDealer bool) error
	SetRate(id string, rate decimal.Decimal) error
	SetLoggedIn(id string, loggedIn bool, lastDevice string) error
	Delete(id string) error
}
