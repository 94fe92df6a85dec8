package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
	"github.com/labelhub/labelhub-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: signup y login de cuentas,
// login de sub-usuarios y sesión actual. En cada login se marca la sesión y
// se programa un job durable de auto-logout al expirar el token.
type AuthUseCase struct {
	accountRepo repository.AccountRepository
	subUserRepo repository.SubUserRepository
	jobRepo     repository.JobRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	accountRepo repository.AccountRepository,
	subUserRepo repository.SubUserRepository,
	jobRepo repository.JobRepository,
	jwtCfg JWTConfig,
) *AuthUseCase {
	return &AuthUseCase{accountRepo: accountRepo, subUserRepo: subUserRepo, jobRepo: jobRepo, jwtCfg: jwtCfg}
}

// Signup crea una cuenta top-level: email en minúsculas, password con bcrypt.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.UserDataResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.accountRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = email
	}
	account := &entity.Account{
		ID:                   uuid.New().String(),
		Name:                 name,
		Email:                email,
		PasswordHash:         string(hash),
		AvailableBalance:     decimal.Zero,
		Rate:                 decimal.Zero,
		TotalDeposit:         decimal.Zero,
		TotalGeneratedLabels: decimal.Zero,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := uc.accountRepo.Create(account); err != nil {
		return nil, err
	}
	resp := toUserData(account)
	return &resp, nil
}

// Login verifica credenciales, genera el token, marca la sesión como activa y
// programa el auto-logout durable al expirar el token.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := uc.accountRepo.GetByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if account.IsBlocked {
		return nil, domain.ErrAccountBlocked
	}
	principalType := jwt.PrincipalUser
	if account.IsDealer {
		principalType = jwt.PrincipalDealer
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, account.ID, principalType, "", uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	if err := uc.accountRepo.SetLoggedIn(account.ID, true, in.Device); err != nil {
		return nil, err
	}
	if err := uc.scheduleAutoLogout(account.ID); err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, UserData: toUserData(account)}, nil
}

// SubUserLogin autentica un sub-usuario dentro del dealer indicado: el email
// solo es único dentro del dealer, nunca se busca globalmente.
func (uc *AuthUseCase) SubUserLogin(ctx context.Context, dealerID string, in dto.LoginRequest) (*dto.SubUserLoginResponse, error) {
	dealer, err := uc.accountRepo.GetByID(dealerID)
	if err != nil {
		return nil, err
	}
	if dealer == nil || !dealer.IsDealer {
		return nil, domain.ErrAccountNotFound
	}
	if dealer.IsBlocked {
		return nil, domain.ErrAccountBlocked
	}
	su, err := uc.subUserRepo.GetByEmail(dealerID, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if su == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(su.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, su.ID, jwt.PrincipalSubUser, dealerID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.SubUserLoginResponse{Token: token, UserData: toSubUserData(su)}, nil
}

// CurrentUser devuelve los datos de la cuenta autenticada (GET /auth/user).
func (uc *AuthUseCase) CurrentUser(ctx context.Context, accountID string) (*dto.UserDataResponse, error) {
	account, err := uc.accountRepo.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	resp := toUserData(account)
	return &resp, nil
}

// scheduleAutoLogout registra el job diferido que apaga is_logged_in cuando
// expira el token. Durable: sobrevive reinicios del proceso.
func (uc *AuthUseCase) scheduleAutoLogout(accountID string) error {
	return uc.jobRepo.Schedule(&entity.ScheduledJob{
		ID:        uuid.New().String(),
		Kind:      entity.JobKindAutoLogout,
		RunAt:     time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		Payload:   map[string]string{"account_id": accountID},
		CreatedAt: time.Now(),
	})
}

func toUserData(a *entity.Account) dto.UserDataResponse {
	return dto.UserDataResponse{
		ID:                   a.ID,
		Name:                 a.Name,
		Email:                a.Email,
		IsDealer:             a.IsDealer,
		IsBlocked:            a.IsBlocked,
		Rate:                 a.Rate,
		AvailableBalance:     a.AvailableBalance,
		TotalDeposit:         a.TotalDeposit,
		TotalGeneratedLabels: a.TotalGeneratedLabels,
		CreatedAt:            a.CreatedAt,
	}
}

func toSubUserData(su *entity.SubUser) dto.SubUserResponse {
	return dto.SubUserResponse{
		ID:                   su.ID,
		DealerID:             su.DealerID,
		Name:                 su.Name,
		Email:                su.Email,
		Rate:                 su.Rate,
		AvailableBalance:     su.AvailableBalance,
		TotalDeposit:         su.TotalDeposit,
		TotalGeneratedLabels: su.TotalGeneratedLabels,
		CreatedAt:            su.CreatedAt,
	}
}
