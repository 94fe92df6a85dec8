package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
)

var _ repository.ShipmentPoolRepository = (*ShipmentPoolRepo)(nil)

// ShipmentPoolRepo implementación del puerto ShipmentPoolRepository sobre
// PostgreSQL. El pull es un DELETE ... RETURNING sobre una fila bloqueada con
// SKIP LOCKED: dos pulls concurrentes nunca consumen el mismo shipment.
type ShipmentPoolRepo struct {
	q Querier
}

// NewShipmentPoolRepository construye el adaptador del pool de shipments.
func NewShipmentPoolRepository(q Querier) *ShipmentPoolRepo {
	return &ShipmentPoolRepo{q: q}
}

// InsertMany inserta las filas cargadas desde el Excel de compra.
func (r *ShipmentPoolRepo) InsertMany(shipments []*entity.PoolShipment) error {
	for _, s := range shipments {
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO shipment_pool (id, carrier, tracking, label_type, created_at) VALUES ($1, $2, $3, $4, $5)`,
			s.ID, s.Carrier, s.Tracking, s.LabelType, s.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert pool shipment: %w", err)
		}
	}
	return nil
}

// List devuelve el pool completo, más antiguo primero.
func (r *ShipmentPoolRepo) List() ([]*entity.PoolShipment, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, carrier, tracking, label_type, created_at FROM shipment_pool ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pool shipments: %w", err)
	}
	defer rows.Close()
	var list []*entity.PoolShipment
	for rows.Next() {
		var s entity.PoolShipment
		if err := rows.Scan(&s.ID, &s.Carrier, &s.Tracking, &s.LabelType, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pool shipment: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// PullOne consume atómicamente el shipment más antiguo que coincida con
// (carrier, labelType). La subconsulta con FOR UPDATE SKIP LOCKED garantiza
// que cada fila se entregue como mucho una vez bajo concurrencia.
func (r *ShipmentPoolRepo) PullOne(carrier, labelType string) (*entity.PoolShipment, error) {
	query := `
		DELETE FROM shipment_pool
		WHERE id = (
			SELECT id FROM shipment_pool
			WHERE carrier = $1 AND label_type = $2
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, carrier, tracking, label_type, created_at`
	var s entity.PoolShipment
	err := r.q.QueryRow(context.Background(), query, carrier, labelType).
		Scan(&s.ID, &s.Carrier, &s.Tracking, &s.LabelType, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPoolEmpty
		}
		return nil, fmt.Errorf("pull pool shipment: %w", err)
	}
	return &s, nil
}
