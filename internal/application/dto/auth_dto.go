package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignupRequest registro de usuario top-level.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest credenciales de login (usuario, sub-usuario o admin).
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Device   string `json:"device,omitempty"`
}

// UserDataResponse datos públicos de la cuenta (sin hash de password).
type UserDataResponse struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	IsDealer             bool            `json:"isDealer"`
	IsBlocked            bool            `json:"isBlocked"`
	Rate                 decimal.Decimal `json:"rate"`
	AvailableBalance     decimal.Decimal `json:"availableBalance"`
	TotalDeposit         decimal.Decimal `json:"totalDeposit"`
	TotalGeneratedLabels decimal.Decimal `json:"totalGeneratedLabels"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// LoginResponse token + datos de usuario, forma que espera el frontend.
type LoginResponse struct {
	Token    string           `json:"token"`
	UserData UserDataResponse `json:"userData"`
}

// SubUserResponse datos públicos de un sub-usuario.
type SubUserResponse struct {
	ID                   string          `json:"id"`
	DealerID             string          `json:"dealerId"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	Rate                 decimal.Decimal `json:"rate"`
	AvailableBalance     decimal.Decimal `json:"availableBalance"`
	TotalDeposit         decimal.Decimal `json:"totalDeposit"`
	TotalGeneratedLabels decimal.Decimal `json:"totalGeneratedLabels"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// SubUserLoginResponse token + datos del sub-usuario.
type SubUserLoginResponse struct {
	Token    string          `json:"token"`
	UserData SubUserResponse `json:"userData"`
}

// AdminRegisterRequest registro de admin.
type AdminRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginResponse el login admin solo devuelve el token.
type AdminLoginResponse struct {
	Token string `json:"token"`
}
