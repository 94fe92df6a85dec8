package dealer

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
)

// LedgerTxRunner ejecuta fn con los repos contables en una transacción.
// Lo implementa postgres.TxRunner (misma firma que usa el motor de emisión).
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(
		accountRepo repository.AccountRepository,
		subUserRepo repository.SubUserRepository,
		historyRepo repository.HistoryRepository,
	) error) error
}

// DealerUseCase gestión de sub-usuarios de un dealer: alta, listado, borrado,
// recarga de saldo y tarifa. Todo direccionado como (dealerID, subUserID).
type DealerUseCase struct {
	accountRepo repository.AccountRepository
	subUserRepo repository.SubUserRepository
	txRunner    LedgerTxRunner
}

// NewDealerUseCase construye el caso de uso.
func NewDealerUseCase(
	accountRepo repository.AccountRepository,
	subUserRepo repository.SubUserRepository,
	txRunner LedgerTxRunner,
) *DealerUseCase {
	return &DealerUseCase{accountRepo: accountRepo, subUserRepo: subUserRepo, txRunner: txRunner}
}

func (uc *DealerUseCase) ensureDealer(dealerID string) (*entity.Account, error) {
	dealer, err := uc.accountRepo.GetByID(dealerID)
	if err != nil {
		return nil, err
	}
	if dealer == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !dealer.IsDealer {
		return nil, domain.ErrForbidden
	}
	return dealer, nil
}

// AddSubUser crea un sub-usuario bajo el dealer. El email solo debe ser único
// dentro del dealer; ErrEmailAlreadyExists si ya existe ahí.
func (uc *DealerUseCase) AddSubUser(ctx context.Context, dealerID string, in dto.AddSubUserRequest) (*dto.SubUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.ensureDealer(dealerID); err != nil {
		return nil, err
	}
	existing, err := uc.subUserRepo.GetByEmail(dealerID, email)
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
	rate := decimal.Zero
	if in.Rate != nil {
		if in.Rate.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		rate = *in.Rate
	}
	now := time.Now()
	su := &entity.SubUser{
		ID:                   uuid.New().String(),
		DealerID:             dealerID,
		Name:                 in.Name,
		Email:                email,
		PasswordHash:         string(hash),
		AvailableBalance:     decimal.Zero,
		Rate:                 rate,
		TotalDeposit:         decimal.Zero,
		TotalGeneratedLabels: decimal.Zero,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := uc.subUserRepo.Create(su); err != nil {
		return nil, err
	}
	resp := toSubUserResponse(su)
	return &resp, nil
}

// ListSubUsers lista los sub-usuarios del dealer con paginación.
func (uc *DealerUseCase) ListSubUsers(ctx context.Context, dealerID string, page dto.PageRequest) ([]dto.SubUserResponse, error) {
	if _, err := uc.ensureDealer(dealerID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.subUserRepo.ListByDealer(dealerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubUserResponse, 0, len(list))
	for _, su := range list {
		out = append(out, toSubUserResponse(su))
	}
	return out, nil
}

// GetSubUser devuelve un sub-usuario del dealer.
func (uc *DealerUseCase) GetSubUser(ctx context.Context, dealerID, subUserID string) (*dto.SubUserResponse, error) {
	if _, err := uc.ensureDealer(dealerID); err != nil {
		return nil, err
	}
	su, err := uc.subUserRepo.GetByID(dealerID, subUserID)
	if err != nil {
		return nil, err
	}
	if su == nil {
		return nil, domain.ErrSubUserNotFound
	}
	resp := toSubUserResponse(su)
	return &resp, nil
}

// DeleteSubUser elimina un sub-usuario del dealer (borrado duro, como el
// splice del original).
func (uc *DealerUseCase) DeleteSubUser(ctx context.Context, dealerID, subUserID string) error {
	if _, err := uc.ensureDealer(dealerID); err != nil {
		return err
	}
	su, err := uc.subUserRepo.GetByID(dealerID, subUserID)
	if err != nil {
		return err
	}
	if su == nil {
		return domain.ErrSubUserNotFound
	}
	return uc.subUserRepo.Delete(dealerID, subUserID)
}

// TopUpSubUser recarga el saldo de un sub-usuario. A diferencia del override
// admin, sí registra una entrada de historial con el antes y el después.
func (uc *DealerUseCase) TopUpSubUser(ctx context.Context, dealerID, subUserID string, amount decimal.Decimal) (*dto.SubUserResponse, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.ensureDealer(dealerID); err != nil {
		return nil, err
	}

	var updated *entity.SubUser
	err := uc.txRunner.RunLedger(ctx, func(
		_ repository.AccountRepository,
		subUserRepo repository.SubUserRepository,
		historyRepo repository.HistoryRepository,
	) error {
		su, err := subUserRepo.GetByIDForUpdate(dealerID, subUserID)
		if err != nil {
			return err
		}
		if su == nil {
			return domain.ErrSubUserNotFound
		}
		prev := su.AvailableBalance
		now := time.Now()
		su.AvailableBalance = su.AvailableBalance.Add(amount)
		su.TotalDeposit = su.TotalDeposit.Add(amount)
		su.UpdatedAt = now
		if err := subUserRepo.UpdateLedger(su); err != nil {
			return err
		}
		updated = su
		status := entity.BalanceStatusPaid
		if su.AvailableBalance.IsNegative() {
			status = entity.BalanceStatusUnpaid
		}
		return historyRepo.AppendBalanceEntry(&entity.BalanceEntry{
			ID:              uuid.New().String(),
			AccountID:       dealerID,
			SubUserID:       subUserID,
			PreviousBalance: prev,
			NewBalance:      su.AvailableBalance,
			TotalDeposit:    su.TotalDeposit,
			Status:          status,
			UpdatedAt:       now,
		})
	})
	if err != nil {
		return nil, err
	}
	resp := toSubUserResponse(updated)
	return &resp, nil
}

// SetSubUserRate fija la tarifa por etiqueta del sub-usuario (>= 0).
func (uc *DealerUseCase) SetSubUserRate(ctx context.Context, dealerID, subUserID string, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return domain.ErrInvalidInput
	}
	if _, err := uc.ensureDealer(dealerID); err != nil {
		return err
	}
	su, err := uc.subUserRepo.GetByID(dealerID, subUserID)
	if err != nil {
		return err
	}
	if su == nil {
		return domain.ErrSubUserNotFound
	}
	return uc.subUserRepo.SetRate(dealerID, subUserID, rate)
}

func toSubUserResponse(su *entity.SubUser) dto.SubUserResponse {
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
