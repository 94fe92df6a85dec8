package labels

import (
	"context"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
)

// HistoryUseCase lecturas de historial de etiquetas y de saldo.
type HistoryUseCase struct {
	accountRepo repository.AccountRepository
	subUserRepo repository.SubUserRepository
	historyRepo repository.HistoryRepository
}

// NewHistoryUseCase construye el caso de uso de lecturas.
func NewHistoryUseCase(
	accountRepo repository.AccountRepository,
	subUserRepo repository.SubUserRepository,
	historyRepo repository.HistoryRepository,
) *HistoryUseCase {
	return &HistoryUseCase{accountRepo: accountRepo, subUserRepo: subUserRepo, historyRepo: historyRepo}
}

func (uc *HistoryUseCase) ensureOwner(owner entity.OwnerRef) error {
	account, err := uc.accountRepo.GetByID(owner.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrAccountNotFound
	}
	if owner.IsSubUser() {
		su, err := uc.subUserRepo.GetByID(owner.AccountID, owner.SubUserID)
		if err != nil {
			return err
		}
		if su == nil {
			return domain.ErrSubUserNotFound
		}
	}
	return nil
}

// GetLabelHistory devuelve ambas vistas: historial individual y eventos bulk
// con sus etiquetas.
func (uc *HistoryUseCase) GetLabelHistory(ctx context.Context, owner entity.OwnerRef) (*dto.LabelHistoryResponse, error) {
	if err := uc.ensureOwner(owner); err != nil {
		return nil, err
	}
	singles, err := uc.historyRepo.ListLabels(owner)
	if err != nil {
		return nil, err
	}
	events, err := uc.historyRepo.ListBulkEvents(owner)
	if err != nil {
		return nil, err
	}
	out := &dto.LabelHistoryResponse{
		LabelHistory:     toLabelResponses(singles),
		BulkLabelHistory: make([]dto.BulkEventResponse, 0, len(events)),
	}
	for _, ev := range events {
		evLabels, err := uc.historyRepo.ListLabelsByBulkEvent(ev.ID)
		if err != nil {
			return nil, err
		}
		out.BulkLabelHistory = append(out.BulkLabelHistory, dto.BulkEventResponse{
			ID:          ev.ID,
			GeneratedAt: ev.GeneratedAt,
			Labels:      toLabelResponses(evLabels),
		})
	}
	return out, nil
}

// GetBalanceHistory devuelve el historial de saldo paginado, más reciente primero.
func (uc *HistoryUseCase) GetBalanceHistory(ctx context.Context, owner entity.OwnerRef, page dto.PageRequest) ([]dto.BalanceEntryResponse, error) {
	if err := uc.ensureOwner(owner); err != nil {
		return nil, err
	}
	page.DefaultPage()
	entries, err := uc.historyRepo.ListBalanceEntries(owner, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BalanceEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.BalanceEntryResponse{
			ID:              e.ID,
			PreviousBalance: e.PreviousBalance,
			NewBalance:      e.NewBalance,
			TotalDeposit:    e.TotalDeposit,
			Status:          e.Status,
			UpdatedAt:       e.UpdatedAt,
		})
	}
	return out, nil
}

// GetBulkEventLabels devuelve un evento bulk del dueño con sus etiquetas
// (entidades completas, para el renderizado PDF).
func (uc *HistoryUseCase) GetBulkEventLabels(ctx context.Context, owner entity.OwnerRef, eventID string) (*entity.BulkEvent, []*entity.Label, error) {
	if err := uc.ensureOwner(owner); err != nil {
		return nil, nil, err
	}
	ev, err := uc.historyRepo.GetBulkEvent(owner, eventID)
	if err != nil {
		return nil, nil, err
	}
	if ev == nil {
		return nil, nil, domain.ErrNotFound
	}
	list, err := uc.historyRepo.ListLabelsByBulkEvent(ev.ID)
	if err != nil {
		return nil, nil, err
	}
	return ev, list, nil
}
