package repository

import "github.com/labelhub/labelhub-api/internal/domain/entity"

// CarrierRepository persiste la allowlist de carriers/vendors por dueño
// (cuenta o sub-usuario).
type CarrierRepository interface {
	ListByOwner(owner entity.OwnerRef) ([]*entity.CarrierEntry, error)
	// GetByOwnerAndName busca por nombre exacto (sensible a mayúsculas).
	GetByOwnerAndName(owner entity.OwnerRef, carrier string) (*entity.CarrierEntry, error)
	AddCarrier(e *entity.CarrierEntry) error
	AddVendor(carrierEntryID string, v *entity.VendorEntry) error
	SetCarrierStatus(carrierEntryID string, status bool) error
	SetVendorStatus(vendorEntryID string, status bool) error
	// ReplaceForOwner reemplaza la allowlist completa (PUT admin).
	ReplaceForOwner(owner entity.OwnerRef, entries []*entity.CarrierEntry) error
}
