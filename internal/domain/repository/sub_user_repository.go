package repository

import (
	"github.com/shopspring/decimal"

	"github.com/labelhub/labelhub-api/internal/domain/entity"
)

// SubUserRepository persiste sub-usuarios como relación padre-hijo de primera
// clase: toda operación está acotada al dealer padre (nunca lookup global).
type SubUserRepository interface {
	Create(su *entity.SubUser) error
	GetByID(dealerID, subUserID string) (*entity.SubUser, error)
	GetByIDForUpdate(dealerID, subUserID string) (*entity.SubUser, error)
	GetByEmail(dealerID, email string) (*entity.SubUser, error)
	ListByDealer(dealerID string, limit, offset int) ([]*entity.SubUser, error)
	UpdateLedger(su *entity.SubUser) error
	SetRate(dealerID, subUserID string, rate decimal.Decimal) error
	Delete(dealerID, subUserID string) error
}
