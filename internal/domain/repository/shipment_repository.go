package repository

import "github.com/labelhub/labelhub-api/internal/domain/entity"

// ShipmentPoolRepository persiste el pool de shipments pre-comprados.
type ShipmentPoolRepository interface {
	InsertMany(shipments []*entity.PoolShipment) error
	List() ([]*entity.PoolShipment, error)
	// PullOne consume atómicamente la primera fila que coincida con
	// (carrier, labelType): la devuelve y la elimina en la misma operación.
	// Retorna domain.ErrPoolEmpty si no hay coincidencias.
	PullOne(carrier, labelType string) (*entity.PoolShipment, error)
}
