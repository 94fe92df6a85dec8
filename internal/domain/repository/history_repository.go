package repository

import "github.com/labelhub/labelhub-api/internal/domain/entity"

// HistoryRepository persiste los historiales append-only: saldo, etiquetas
// individuales y eventos bulk. Ninguna entrada se muta después de insertada,
// salvo el status de BalanceEntry (ajustable por admin).
type HistoryRepository interface {
	AppendBalanceEntry(e *entity.BalanceEntry) error
	ListBalanceEntries(owner entity.OwnerRef, limit, offset int) ([]*entity.BalanceEntry, error)
	SetBalanceEntryStatus(accountID, entryID, status string) error

	CreateBulkEvent(ev *entity.BulkEvent) error
	AppendLabel(l *entity.Label) error
	// ListLabels devuelve el historial individual (etiquetas sin evento bulk).
	ListLabels(owner entity.OwnerRef) ([]*entity.Label, error)
	ListBulkEvents(owner entity.OwnerRef) ([]*entity.BulkEvent, error)
	GetBulkEvent(owner entity.OwnerRef, eventID string) (*entity.BulkEvent, error)
	ListLabelsByBulkEvent(eventID string) ([]*entity.Label, error)
}
