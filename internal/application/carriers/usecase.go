package carriers

import (
	"context"

	"github.com/google/uuid"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
)

// CarrierUseCase CRUD de la allowlist de carriers/vendors por cuenta o
// sub-usuario. Los nombres de carrier son únicos por dueño (comparación
// exacta); los vendors son únicos dentro del carrier.
type CarrierUseCase struct {
	accountRepo repository.AccountRepository
	subUserRepo repository.SubUserRepository
	carrierRepo repository.CarrierRepository
}

// NewCarrierUseCase construye el caso de uso.
func NewCarrierUseCase(
	accountRepo repository.AccountRepository,
	subUserRepo repository.SubUserRepository,
	carrierRepo repository.CarrierRepository,
) *CarrierUseCase {
	return &CarrierUseCase{accountRepo: accountRepo, subUserRepo: subUserRepo, carrierRepo: carrierRepo}
}

func (uc *CarrierUseCase) ensureOwner(owner entity.OwnerRef) error {
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

// AddCarrier agrega un carrier con vendors vacíos y status=false.
// Devuelve ErrConflict si el carrier ya existe para el dueño.
func (uc *CarrierUseCase) AddCarrier(ctx context.Context, owner entity.OwnerRef, carrier string) error {
	if carrier == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.ensureOwner(owner); err != nil {
		return err
	}
	existing, err := uc.carrierRepo.GetByOwnerAndName(owner, carrier)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrConflict
	}
	return uc.carrierRepo.AddCarrier(&entity.CarrierEntry{
		ID:        uuid.New().String(),
		AccountID: owner.AccountID,
		SubUserID: owner.SubUserID,
		Carrier:   carrier,
		Status:    false,
	})
}

// AddVendor agrega un vendor a un carrier existente. ErrCarrierNotFound si el
// carrier no existe; ErrConflict si el vendor ya está listado.
func (uc *CarrierUseCase) AddVendor(ctx context.Context, owner entity.OwnerRef, carrier, vendor string) error {
	if carrier == "" || vendor == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.ensureOwner(owner); err != nil {
		return err
	}
	entry, err := uc.carrierRepo.GetByOwnerAndName(owner, carrier)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrCarrierNotFound
	}
	for _, v := range entry.AllowedVendors {
		if v.Vendor == vendor {
			return domain.ErrConflict
		}
	}
	return uc.carrierRepo.AddVendor(entry.ID, &entity.VendorEntry{
		ID:     uuid.New().String(),
		Vendor: vendor,
		Status: false,
	})
}

// SetCarrierStatus fija el toggle del carrier. Idempotente.
func (uc *CarrierUseCase) SetCarrierStatus(ctx context.Context, owner entity.OwnerRef, carrier string, status bool) error {
	if err := uc.ensureOwner(owner); err != nil {
		return err
	}
	entry, err := uc.carrierRepo.GetByOwnerAndName(owner, carrier)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrCarrierNotFound
	}
	return uc.carrierRepo.SetCarrierStatus(entry.ID, status)
}

// SetVendorStatus fija el toggle de un vendor dentro de un carrier. Idempotente.
func (uc *CarrierUseCase) SetVendorStatus(ctx context.Context, owner entity.OwnerRef, carrier, vendor string, status bool) error {
	if err := uc.ensureOwner(owner); err != nil {
		return err
	}
	entry, err := uc.carrierRepo.GetByOwnerAndName(owner, carrier)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrCarrierNotFound
	}
	for _, v := range entry.AllowedVendors {
		if v.Vendor == vendor {
			return uc.carrierRepo.SetVendorStatus(v.ID, status)
		}
	}
	return domain.ErrVendorNotFound
}

// ListCarriers devuelve la allowlist completa (vista admin).
func (uc *CarrierUseCase) ListCarriers(ctx context.Context, owner entity.OwnerRef) ([]dto.CarrierResponse, error) {
	if err := uc.ensureOwner(owner); err != nil {
		return nil, err
	}
	entries, err := uc.carrierRepo.ListByOwner(owner)
	if err != nil {
		return nil, err
	}
	return toCarrierResponses(entries), nil
}

// EffectiveCarriers devuelve solo los carriers habilitados (status=true),
// la vista que consume la UI de generación de etiquetas.
func (uc *CarrierUseCase) EffectiveCarriers(ctx context.Context, owner entity.OwnerRef) ([]dto.CarrierResponse, error) {
	if err := uc.ensureOwner(owner); err != nil {
		return nil, err
	}
	entries, err := uc.carrierRepo.ListByOwner(owner)
	if err != nil {
		return nil, err
	}
	enabled := entries[:0:0]
	for _, e := range entries {
		if e.Status {
			enabled = append(enabled, e)
		}
	}
	return toCarrierResponses(enabled), nil
}

// ReplaceCarriers reemplaza la allowlist completa del dueño (PUT admin).
func (uc *CarrierUseCase) ReplaceCarriers(ctx context.Context, owner entity.OwnerRef, in []dto.CarrierResponse) error {
	if err := uc.ensureOwner(owner); err != nil {
		return err
	}
	seen := make(map[string]bool, len(in))
	entries := make([]*entity.CarrierEntry, 0, len(in))
	for _, c := range in {
		if c.Carrier == "" || seen[c.Carrier] {
			return domain.ErrInvalidInput
		}
		seen[c.Carrier] = true
		entry := &entity.CarrierEntry{
			ID:        uuid.New().String(),
			AccountID: owner.AccountID,
			SubUserID: owner.SubUserID,
			Carrier:   c.Carrier,
			Status:    c.Status,
		}
		seenVendors := make(map[string]bool, len(c.AllowedVendors))
		for _, v := range c.AllowedVendors {
			if v.Vendor == "" || seenVendors[v.Vendor] {
				return domain.ErrInvalidInput
			}
			seenVendors[v.Vendor] = true
			entry.AllowedVendors = append(entry.AllowedVendors, entity.VendorEntry{
				ID:     uuid.New().String(),
				Vendor: v.Vendor,
				Status: v.Status,
			})
		}
		entries = append(entries, entry)
	}
	return uc.carrierRepo.ReplaceForOwner(owner, entries)
}

func toCarrierResponses(entries []*entity.CarrierEntry) []dto.CarrierResponse {
	out := make([]dto.CarrierResponse, 0, len(entries))
	for _, e := range entries {
		c := dto.CarrierResponse{
			Carrier:        e.Carrier,
			Status:         e.Status,
			AllowedVendors: make([]dto.VendorResponse, 0, len(e.AllowedVendors)),
		}
		for _, v := range e.AllowedVendors {
			c.AllowedVendors = append(c.AllowedVendors, dto.VendorResponse{Vendor: v.Vendor, Status: v.Status})
		}
		out = append(out, c)
	}
	return out
}
