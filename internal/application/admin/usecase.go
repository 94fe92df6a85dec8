package admin

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/application/labels"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
	"github.com/labelhub/labelhub-api/pkg/jwt"
)

// JWTConfig configuración para tokens de admin.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AdminUseCase operaciones de administración: identidades admin, gestión de
// cuentas (saldo, tarifa, bloqueo, dealer flag), pool de shipments y
// passthrough de tracking.
type AdminUseCase struct {
	adminRepo    repository.AdminRepository
	accountRepo  repository.AccountRepository
	historyRepo  repository.HistoryRepository
	shipmentRepo repository.ShipmentPoolRepository
	provider     labels.ProviderClient
	jwtCfg       JWTConfig
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(
	adminRepo repository.AdminRepository,
	accountRepo repository.AccountRepository,
	historyRepo repository.HistoryRepository,
	shipmentRepo repository.ShipmentPoolRepository,
	provider labels.ProviderClient,
	jwtCfg JWTConfig,
) *AdminUseCase {
	return &AdminUseCase{
		adminRepo:    adminRepo,
		accountRepo:  accountRepo,
		historyRepo:  historyRepo,
		shipmentRepo: shipmentRepo,
		provider:     provider,
		jwtCfg:       jwtCfg,
	}
}

// Register crea un admin (email en minúsculas, bcrypt).
func (uc *AdminUseCase) Register(ctx context.Context, in dto.AdminRegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || email == "" {
		return domain.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return domain.ErrInvalidInput
	}
	existing, err := uc.adminRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	return uc.adminRepo.Create(&entity.Admin{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Login autentica un admin. No revela si el email existe: credenciales
// inválidas y email inexistente devuelven el mismo error.
func (uc *AdminUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AdminLoginResponse, error) {
	admin, err := uc.adminRepo.GetByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, admin.ID, jwt.PrincipalAdmin, "", uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.AdminLoginResponse{Token: token}, nil
}

// ListUsers lista todas las cuentas, sin hash de password.
func (uc *AdminUseCase) ListUsers(ctx context.Context, page dto.PageRequest) ([]dto.UserDataResponse, error) {
	page.DefaultPage()
	list, err := uc.accountRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserDataResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.UserDataResponse{
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
		})
	}
	return out, nil
}

func (uc *AdminUseCase) ensureAccount(id string) (*entity.Account, error) {
	account, err := uc.accountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// SetUserStatus bloquea o desbloquea una cuenta.
func (uc *AdminUseCase) SetUserStatus(ctx context.Context, accountID string, blocked bool) error {
	if _, err := uc.ensureAccount(accountID); err != nil {
		return err
	}
	return uc.accountRepo.SetBlocked(accountID, blocked)
}

// SetBalance es el override directo de admin: fija saldo y depósito sin
// generar entrada de historial (es la única mutación de saldo exenta).
func (uc *AdminUseCase) SetBalance(ctx context.Context, accountID string, in dto.BalanceOverrideRequest) (*dto.UserDataResponse, error) {
	account, err := uc.ensureAccount(accountID)
	if err != nil {
		return nil, err
	}
	account.AvailableBalance = in.AvailableBalance
	account.TotalDeposit = in.TotalDeposit
	account.UpdatedAt = time.Now()
	if err := uc.accountRepo.UpdateLedger(account); err != nil {
		return nil, err
	}
	return &dto.UserDataResponse{
		ID:                   account.ID,
		Name:                 account.Name,
		Email:                account.Email,
		IsDealer:             account.IsDealer,
		IsBlocked:            account.IsBlocked,
		Rate:                 account.Rate,
		AvailableBalance:     account.AvailableBalance,
		TotalDeposit:         account.TotalDeposit,
		TotalGeneratedLabels: account.TotalGeneratedLabels,
		CreatedAt:            account.CreatedAt,
	}, nil
}

// SetRate fija el costo por etiqueta de una cuenta (>= 0).
func (uc *AdminUseCase) SetRate(ctx context.Context, accountID string, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return domain.ErrInvalidInput
	}
	if _, err := uc.ensureAccount(accountID); err != nil {
		return err
	}
	return uc.accountRepo.SetRate(accountID, rate)
}

// SetDealer marca o desmarca una cuenta como dealer.
func (uc *AdminUseCase) SetDealer(ctx context.Context, accountID string, isDealer bool) error {
	if _, err := uc.ensureAccount(accountID); err != nil {
		return err
	}
	return uc.accountRepo.SetDealer(accountID, isDealer)
}

// DeleteUser elimina una cuenta (duro; arrastra sub-usuarios e historiales
// por FK ON DELETE CASCADE).
func (uc *AdminUseCase) DeleteUser(ctx context.Context, accountID string) error {
	if _, err := uc.ensureAccount(accountID); err != nil {
		return err
	}
	return uc.accountRepo.Delete(accountID)
}

// SetBalanceEntryStatus cambia el status paid/unpaid de una entrada del
// historial de saldo (único campo mutable de una entrada).
func (uc *AdminUseCase) SetBalanceEntryStatus(ctx context.Context, accountID, entryID, status string) error {
	if status != entity.BalanceStatusPaid && status != entity.BalanceStatusUnpaid {
		return domain.ErrInvalidInput
	}
	if _, err := uc.ensureAccount(accountID); err != nil {
		return err
	}
	return uc.historyRepo.SetBalanceEntryStatus(accountID, entryID, status)
}

// UploadShipments carga filas de Excel al pool; el carrier se normaliza a
// minúsculas como hacía la importación original.
func (uc *AdminUseCase) UploadShipments(ctx context.Context, in dto.UploadShipmentsRequest) (int, error) {
	if len(in.Rows) == 0 {
		return 0, domain.ErrInvalidInput
	}
	now := time.Now()
	shipments := make([]*entity.PoolShipment, 0, len(in.Rows))
	for _, row := range in.Rows {
		if row.Carrier == "" || row.Tracking == "" || row.LabelType == "" {
			return 0, domain.ErrInvalidInput
		}
		shipments = append(shipments, &entity.PoolShipment{
			ID:        uuid.New().String(),
			Carrier:   strings.ToLower(row.Carrier),
			Tracking:  row.Tracking,
			LabelType: row.LabelType,
			CreatedAt: now,
		})
	}
	if err := uc.shipmentRepo.InsertMany(shipments); err != nil {
		return 0, err
	}
	return len(shipments), nil
}

// ListShipments devuelve el pool completo.
func (uc *AdminUseCase) ListShipments(ctx context.Context) ([]dto.ShipmentResponse, error) {
	list, err := uc.shipmentRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShipmentResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ShipmentResponse{ID: s.ID, Carrier: s.Carrier, Tracking: s.Tracking, LabelType: s.LabelType})
	}
	return out, nil
}

// PullShipment consume atómicamente un shipment del pool que coincida con
// (carrier, labelType). El shipment sale del pool en la misma operación:
// nunca puede entregarse dos veces.
func (uc *AdminUseCase) PullShipment(ctx context.Context, in dto.PullShipmentRequest) (*dto.ShipmentResponse, error) {
	if in.Carrier == "" || in.LabelType == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.shipmentRepo.PullOne(strings.ToLower(in.Carrier), in.LabelType)
	if err != nil {
		return nil, err
	}
	return &dto.ShipmentResponse{ID: s.ID, Carrier: s.Carrier, Tracking: s.Tracking, LabelType: s.LabelType}, nil
}

// GenerateTracking passthrough de diagnóstico al proveedor externo.
func (uc *AdminUseCase) GenerateTracking(ctx context.Context, vendor, class string, count int) ([]string, error) {
	if vendor == "" || class == "" || count <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.provider.GenerateTracking(ctx, vendor, class, count)
}
