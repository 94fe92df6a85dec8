package labels

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
	"github.com/labelhub/labelhub-api/pkg/logger"
)

// IssueUseCase es el motor de emisión: convierte un batch de envíos en
// etiquetas con tracking y barcode, debitando el saldo y registrando el
// historial en una sola transacción con la fila del dueño bloqueada.
//
// Propiedad central: cualquier fallo antes del débito (precheck de saldo,
// mismatch del proveedor, fallo de barcode) deja la cuenta exactamente igual
// que antes de la llamada.
type IssueUseCase struct {
	accountRepo repository.AccountRepository
	subUserRepo repository.SubUserRepository
	txRunner    LedgerTxRunner
	provider    ProviderClient
	log         *logger.Logger
}

// NewIssueUseCase construye el motor.
func NewIssueUseCase(
	accountRepo repository.AccountRepository,
	subUserRepo repository.SubUserRepository,
	txRunner LedgerTxRunner,
	provider ProviderClient,
	log *logger.Logger,
) *IssueUseCase {
	return &IssueUseCase{
		accountRepo: accountRepo,
		subUserRepo: subUserRepo,
		txRunner:    txRunner,
		provider:    provider,
		log:         log,
	}
}

// ledgerView es la vista contable del dueño resuelto (cuenta o sub-usuario).
type ledgerView struct {
	rate         decimal.Decimal
	balance      decimal.Decimal
	totalDeposit decimal.Decimal
}

// resolveOwner carga al dueño y verifica que la cuenta (o el dealer padre)
// no esté bloqueada.
func (uc *IssueUseCase) resolveOwner(owner entity.OwnerRef) (*ledgerView, error) {
	account, err := uc.accountRepo.GetByID(owner.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if account.IsBlocked {
		return nil, domain.ErrAccountBlocked
	}
	if !owner.IsSubUser() {
		return &ledgerView{rate: account.Rate, balance: account.AvailableBalance, totalDeposit: account.TotalDeposit}, nil
	}
	su, err := uc.subUserRepo.GetByID(owner.AccountID, owner.SubUserID)
	if err != nil {
		return nil, err
	}
	if su == nil {
		return nil, domain.ErrSubUserNotFound
	}
	return &ledgerView{rate: su.Rate, balance: su.AvailableBalance, totalDeposit: su.TotalDeposit}, nil
}

// validateBatch exige batch no vacío y un único par (vendor, labelType):
// el tracking se pide al proveedor en una sola llamada por batch.
func validateBatch(requests []dto.ShipRequest) (vendor, labelType string, err error) {
	if len(requests) == 0 {
		return "", "", domain.ErrInvalidInput
	}
	vendor = requests[0].Vendor
	labelType = requests[0].LabelType
	if vendor == "" || labelType == "" {
		return "", "", domain.ErrInvalidInput
	}
	for _, r := range requests[1:] {
		if r.Vendor != vendor || r.LabelType != labelType {
			return "", "", domain.ErrInvalidInput
		}
	}
	return vendor, labelType, nil
}

// IssueLabels emite un batch: pide count trackings, un barcode por etiqueta y
// solo entonces debita saldo, incrementa el contador y registra un único
// evento bulk. Para sub-usuarios el saldo insuficiente se rechaza antes de
// tocar al proveedor.
func (uc *IssueUseCase) IssueLabels(ctx context.Context, owner entity.OwnerRef, requests []dto.ShipRequest) (*dto.IssueResponse, error) {
	vendor, labelType, err := validateBatch(requests)
	if err != nil {
		return nil, err
	}

	view, err := uc.resolveOwner(owner)
	if err != nil {
		return nil, err
	}

	count := len(requests)
	cost := view.rate.Mul(decimal.NewFromInt(int64(count)))

	// Precheck de saldo para sub-usuarios: sin débito parcial y sin llamadas
	// al proveedor si no alcanza.
	if owner.IsSubUser() && view.balance.LessThan(cost) {
		return nil, domain.ErrInsufficientBalance
	}

	trackings, err := uc.provider.GenerateTracking(ctx, vendor, labelType, count)
	if err != nil {
		uc.log.Error().Err(err).Str("vendor", vendor).Str("class", labelType).Int("count", count).
			Msg("fallo pidiendo trackings al proveedor")
		return nil, domain.ErrProviderMismatch
	}
	if len(trackings) != count {
		uc.log.Error().Int("want", count).Int("got", len(trackings)).Strs("trackings", trackings).
			Msg("el proveedor devolvió una cantidad distinta de trackings; abortando sin mutar la cuenta")
		return nil, domain.ErrProviderMismatch
	}

	now := time.Now()
	eventID := uuid.New().String()
	formed := make([]*entity.Label, 0, count)
	for i, req := range requests {
		barcode, err := uc.provider.GenerateBarcode(ctx, req.RecipientZip, trackings[i])
		if err != nil || strings.TrimSpace(barcode) == "" {
			// Los trackings ya fueron emitidos por el proveedor: quedan en el
			// log para reconciliación en vez de re-pedirse a ciegas.
			uc.log.Warn().Err(err).Str("tracking", trackings[i]).Strs("issued_trackings", trackings).
				Msg("fallo de barcode; batch abortado, trackings emitidos pendientes de reconciliar")
			return nil, domain.ErrBarcodeGeneration
		}
		l := labelFromRequest(req, owner, now)
		l.BulkEventID = eventID
		l.TrackingNumber = trackings[i]
		l.Barcode = barcode
		formed = append(formed, l)
	}

	var newBalance, newCounter decimal.Decimal
	err = uc.txRunner.RunLedger(ctx, func(
		accountRepo repository.AccountRepository,
		subUserRepo repository.SubUserRepository,
		historyRepo repository.HistoryRepository,
	) error {
		prev, deposit, counter, applyErr := uc.applyDebit(accountRepo, subUserRepo, owner, cost, now)
		if applyErr != nil {
			return applyErr
		}
		newBalance = prev.Sub(cost)
		newCounter = counter

		if err := historyRepo.CreateBulkEvent(&entity.BulkEvent{
			ID:          eventID,
			AccountID:   owner.AccountID,
			SubUserID:   owner.SubUserID,
			LabelCount:  count,
			GeneratedAt: now,
		}); err != nil {
			return err
		}
		for _, l := range formed {
			if err := historyRepo.AppendLabel(l); err != nil {
				return err
			}
		}
		return historyRepo.AppendBalanceEntry(&entity.BalanceEntry{
			ID:              uuid.New().String(),
			AccountID:       owner.AccountID,
			SubUserID:       owner.SubUserID,
			PreviousBalance: prev,
			NewBalance:      newBalance,
			TotalDeposit:    deposit,
			Status:          balanceStatus(newBalance),
			UpdatedAt:       now,
		})
	})
	if err != nil {
		return nil, err
	}

	return &dto.IssueResponse{
		Message:              "Label generated successfully",
		AvailableBalance:     newBalance,
		TotalGeneratedLabels: newCounter,
		Labels:               toLabelResponses(formed),
	}, nil
}

// applyDebit bloquea la fila del dueño, re-verifica el saldo bajo el lock
// (cierra la carrera lost-update entre el precheck y el débito) y persiste
// saldo y contador. El contador crece rate×count por emisión; devuelve el
// saldo previo, el depósito total y el contador ya actualizado.
func (uc *IssueUseCase) applyDebit(
	accountRepo repository.AccountRepository,
	subUserRepo repository.SubUserRepository,
	owner entity.OwnerRef,
	cost decimal.Decimal,
	now time.Time,
) (prev, deposit, counter decimal.Decimal, err error) {
	if owner.IsSubUser() {
		su, err := subUserRepo.GetByIDForUpdate(owner.AccountID, owner.SubUserID)
		if err != nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, err
		}
		if su == nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, domain.ErrSubUserNotFound
		}
		if su.AvailableBalance.LessThan(cost) {
			return decimal.Zero, decimal.Zero, decimal.Zero, domain.ErrInsufficientBalance
		}
		prev = su.AvailableBalance
		su.AvailableBalance = su.AvailableBalance.Sub(cost)
		su.TotalGeneratedLabels = su.TotalGeneratedLabels.Add(cost)
		su.UpdatedAt = now
		return prev, su.TotalDeposit, su.TotalGeneratedLabels, subUserRepo.UpdateLedger(su)
	}

	account, err := accountRepo.GetByIDForUpdate(owner.AccountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, domain.ErrAccountNotFound
	}
	// Comportamiento legado para cuentas top-level: el saldo puede quedar
	// negativo de forma transitoria; no se bloquea la emisión.
	prev = account.AvailableBalance
	account.AvailableBalance = account.AvailableBalance.Sub(cost)
	account.TotalGeneratedLabels = account.TotalGeneratedLabels.Add(cost)
	account.UpdatedAt = now
	return prev, account.TotalDeposit, account.TotalGeneratedLabels, accountRepo.UpdateLedger(account)
}

// IssueOneLabel emite una sola etiqueta sobre el historial individual.
// Soporta las dos formas de llamada: pre-resuelta (tracking/barcode ya
// provistos por el caller) y resuelta por el motor (se piden al proveedor).
func (uc *IssueUseCase) IssueOneLabel(ctx context.Context, owner entity.OwnerRef, labelData dto.ShipRequest) (*dto.IssueResponse, error) {
	view, err := uc.resolveOwner(owner)
	if err != nil {
		return nil, err
	}

	cost := view.rate
	if owner.IsSubUser() && view.balance.LessThan(cost) {
		return nil, domain.ErrInsufficientBalance
	}

	now := time.Now()
	l := labelFromRequest(labelData, owner, now)

	if l.TrackingNumber == "" {
		if labelData.Vendor == "" || labelData.LabelType == "" {
			return nil, domain.ErrInvalidInput
		}
		trackings, err := uc.provider.GenerateTracking(ctx, labelData.Vendor, labelData.LabelType, 1)
		if err != nil || len(trackings) != 1 {
			uc.log.Error().Err(err).Str("vendor", labelData.Vendor).Msg("fallo pidiendo tracking individual")
			return nil, domain.ErrProviderMismatch
		}
		l.TrackingNumber = trackings[0]
		barcode, err := uc.provider.GenerateBarcode(ctx, labelData.RecipientZip, l.TrackingNumber)
		if err != nil || strings.TrimSpace(barcode) == "" {
			uc.log.Warn().Err(err).Str("tracking", l.TrackingNumber).
				Msg("fallo de barcode en emisión individual; tracking emitido pendiente de reconciliar")
			return nil, domain.ErrBarcodeGeneration
		}
		l.Barcode = barcode
	}

	var newBalance, newCounter decimal.Decimal
	err = uc.txRunner.RunLedger(ctx, func(
		accountRepo repository.AccountRepository,
		subUserRepo repository.SubUserRepository,
		historyRepo repository.HistoryRepository,
	) error {
		prev, deposit, counter, applyErr := uc.applyDebit(accountRepo, subUserRepo, owner, cost, now)
		if applyErr != nil {
			return applyErr
		}
		newBalance = prev.Sub(cost)
		newCounter = counter

		if err := historyRepo.AppendLabel(l); err != nil {
			return err
		}
		return historyRepo.AppendBalanceEntry(&entity.BalanceEntry{
			ID:              uuid.New().String(),
			AccountID:       owner.AccountID,
			SubUserID:       owner.SubUserID,
			PreviousBalance: prev,
			NewBalance:      newBalance,
			TotalDeposit:    deposit,
			Status:          balanceStatus(newBalance),
			UpdatedAt:       now,
		})
	})
	if err != nil {
		return nil, err
	}

	return &dto.IssueResponse{
		Message:              "Label generated successfully",
		AvailableBalance:     newBalance,
		TotalGeneratedLabels: newCounter,
		Labels:               toLabelResponses([]*entity.Label{l}),
	}, nil
}

// AddBulkHistory registra etiquetas ya formadas como un evento bulk, sin
// débito ni entrada de saldo (flujo legado /add-bulk-label-history).
func (uc *IssueUseCase) AddBulkHistory(ctx context.Context, owner entity.OwnerRef, in dto.BulkHistoryRequest) (*dto.BulkEventResponse, error) {
	if len(in.Labels) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.resolveOwner(owner); err != nil {
		return nil, err
	}

	now := time.Now()
	eventID := uuid.New().String()
	formed := make([]*entity.Label, 0, len(in.Labels))
	for _, req := range in.Labels {
		l := labelFromRequest(req, owner, now)
		l.BulkEventID = eventID
		formed = append(formed, l)
	}

	err := uc.txRunner.RunLedger(ctx, func(
		_ repository.AccountRepository,
		_ repository.SubUserRepository,
		historyRepo repository.HistoryRepository,
	) error {
		if err := historyRepo.CreateBulkEvent(&entity.BulkEvent{
			ID:          eventID,
			AccountID:   owner.AccountID,
			SubUserID:   owner.SubUserID,
			LabelCount:  len(formed),
			GeneratedAt: now,
		}); err != nil {
			return err
		}
		for _, l := range formed {
			if err := historyRepo.AppendLabel(l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.BulkEventResponse{
		ID:          eventID,
		GeneratedAt: now,
		Labels:      toLabelResponses(formed),
	}, nil
}

// balanceStatus decide paid/unpaid tras un débito: positivo o cero = paid.
// (El original computaba "unpaid" en ambas ramas; ver DESIGN.md.)
func balanceStatus(newBalance decimal.Decimal) string {
	if newBalance.IsNegative() {
		return entity.BalanceStatusUnpaid
	}
	return entity.BalanceStatusPaid
}

func labelFromRequest(req dto.ShipRequest, owner entity.OwnerRef, now time.Time) *entity.Label {
	return &entity.Label{
		ID:               uuid.New().String(),
		AccountID:        owner.AccountID,
		SubUserID:        owner.SubUserID,
		TrackingNumber:   req.TrackingNumber,
		Carrier:          req.Carrier,
		Vendor:           req.Vendor,
		LabelType:        req.LabelType,
		Weight:           req.Weight,
		SenderName:       req.SenderName,
		SenderAddress:    req.SenderAddress,
		SenderCity:       req.SenderCity,
		SenderState:      req.SenderState,
		SenderZip:        req.SenderZip,
		RecipientName:    req.RecipientName,
		RecipientAddress: req.RecipientAddress,
		RecipientCity:    req.RecipientCity,
		RecipientState:   req.RecipientState,
		RecipientZip:     req.RecipientZip,
		Barcode:          req.Barcode,
		GeneratedAt:      now,
	}
}

func toLabelResponses(list []*entity.Label) []dto.LabelResponse {
	out := make([]dto.LabelResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.LabelResponse{
			ID:               l.ID,
			TrackingNumber:   l.TrackingNumber,
			Carrier:          l.Carrier,
			Vendor:           l.Vendor,
			LabelType:        l.LabelType,
			Weight:           l.Weight,
			SenderName:       l.SenderName,
			SenderAddress:    l.SenderAddress,
			SenderCity:       l.SenderCity,
			SenderState:      l.SenderState,
			SenderZip:        l.SenderZip,
			RecipientName:    l.RecipientName,
			RecipientAddress: l.RecipientAddress,
			RecipientCity:    l.RecipientCity,
			RecipientState:   l.RecipientState,
			RecipientZip:     l.RecipientZip,
			Barcode:          l.Barcode,
			GeneratedAt:      l.GeneratedAt,
		})
	}
	return out
}
