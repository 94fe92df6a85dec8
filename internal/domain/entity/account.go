package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account representa una cuenta facturable: un usuario plano o un dealer
// (mismo registro, discriminado por IsDealer). Los sub-usuarios de un dealer
// viven en su propia tabla (SubUser) y se direccionan siempre vía el dealer.
type Account struct {
	ID                   string
	Name                 string
	Email                string // siempre en minúsculas
	PasswordHash         string // bcrypt, nunca plano después de persistir
	IsDealer             bool
	IsBlocked            bool
	IsLoggedIn           bool
	LastDevice           string
	AvailableBalance     decimal.Decimal // puede quedar negativa de forma transitoria
	Rate                 decimal.Decimal // costo por etiqueta, >= 0
	TotalDeposit         decimal.Decimal
	TotalGeneratedLabels decimal.Decimal // contador escalado por rate (ver labels.IssueLabels)
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// SubUser es una cuenta embebida bajo un dealer: no tiene identidad top-level
// propia, se resuelve siempre como (DealerID, ID). El email es único dentro
// del dealer, no globalmente.
type SubUser struct {
	ID                   string
	DealerID             string
	Name                 string
	Email                string
	PasswordHash         string
	AvailableBalance     decimal.Decimal
	Rate                 decimal.Decimal
	TotalDeposit         decimal.Decimal
	TotalGeneratedLabels decimal.Decimal
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// OwnerRef identifica al dueño de saldos, historiales y allowlists: una
// cuenta top-level (SubUserID vacío) o un sub-usuario de un dealer.
type OwnerRef struct {
	AccountID string
	SubUserID string
}

// IsSubUser indica si la referencia apunta a un sub-usuario.
func (o OwnerRef) IsSubUser() bool { return o.SubUserID != "" }
