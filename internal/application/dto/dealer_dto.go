package dto

import "github.com/shopspring/decimal"

// AddSubUserRequest alta de un sub-usuario bajo un dealer.
type AddSubUserRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Rate     *decimal.Decimal `json:"rate,omitempty"` // default 0
}

// SubUserTopUpRequest recarga de saldo de un sub-usuario (la hace el dealer);
// a diferencia del override admin, sí genera entrada de historial.
type SubUserTopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
