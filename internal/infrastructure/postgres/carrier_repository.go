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

var _ repository.CarrierRepository = (*CarrierRepo)(nil)

// CarrierRepo implementación del puerto CarrierRepository sobre PostgreSQL.
// Dos tablas: allowed_carriers (una fila por carrier y dueño) y
// allowed_vendors (filas hijas por carrier_entry_id).
type CarrierRepo struct {
	q Querier
}

// NewCarrierRepository construye el adaptador de la allowlist.
func NewCarrierRepository(q Querier) *CarrierRepo {
	return &CarrierRepo{q: q}
}

func (r *CarrierRepo) loadVendors(carrierEntryID string) ([]entity.VendorEntry, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, vendor, status FROM allowed_vendors WHERE carrier_entry_id = $1 ORDER BY vendor ASC`,
		carrierEntryID)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()
	var vendors []entity.VendorEntry
	for rows.Next() {
		var v entity.VendorEntry
		if err := rows.Scan(&v.ID, &v.Vendor, &v.Status); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// ListByOwner devuelve la allowlist completa del dueño con sus vendors.
func (r *CarrierRepo) ListByOwner(owner entity.OwnerRef) ([]*entity.CarrierEntry, error) {
	clause, args := ownerClause(owner, 1)
	query := fmt.Sprintf(`
		SELECT id, account_id, COALESCE(sub_user_id, ''), carrier, status
		FROM allowed_carriers WHERE %s ORDER BY carrier ASC`, clause)
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	var list []*entity.CarrierEntry
	for rows.Next() {
		var e entity.CarrierEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.SubUserID, &e.Carrier, &e.Status); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan carrier: %w", err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	for _, e := range list {
		vendors, err := r.loadVendors(e.ID)
		if err != nil {
			return nil, err
		}
		e.AllowedVendors = vendors
	}
	return list, nil
}

// GetByOwnerAndName busca un carrier por nombre exacto dentro del dueño.
func (r *CarrierRepo) GetByOwnerAndName(owner entity.OwnerRef, carrier string) (*entity.CarrierEntry, error) {
	clause, args := ownerClause(owner, 2)
	args = append([]any{carrier}, args...)
	query := fmt.Sprintf(`
		SELECT id, account_id, COALESCE(sub_user_id, ''), carrier, status
		FROM allowed_carriers WHERE carrier = $1 AND %s`, clause)
	var e entity.CarrierEntry
	err := r.q.QueryRow(context.Background(), query, args...).
		Scan(&e.ID, &e.AccountID, &e.SubUserID, &e.Carrier, &e.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get carrier by name: %w", err)
	}
	vendors, err := r.loadVendors(e.ID)
	if err != nil {
		return nil, err
	}
	e.AllowedVendors = vendors
	return &e, nil
}

// AddCarrier inserta un carrier (y sus vendors iniciales si los trae).
func (r *CarrierRepo) AddCarrier(e *entity.CarrierEntry) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO allowed_carriers (id, account_id, sub_user_id, carrier, status) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.AccountID, nullable(e.SubUserID), e.Carrier, e.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert carrier: %w", err)
	}
	for i := range e.AllowedVendors {
		if err := r.AddVendor(e.ID, &e.AllowedVendors[i]); err != nil {
			return err
		}
	}
	return nil
}

// AddVendor inserta un vendor bajo el carrier dado.
func (r *CarrierRepo) AddVendor(carrierEntryID string, v *entity.VendorEntry) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO allowed_vendors (id, carrier_entry_id, vendor, status) VALUES ($1, $2, $3, $4)`,
		v.ID, carrierEntryID, v.Vendor, v.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// SetCarrierStatus enciende o apaga un carrier.
func (r *CarrierRepo) SetCarrierStatus(carrierEntryID string, status bool) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE allowed_carriers SET status = $2 WHERE id = $1`, carrierEntryID, status)
	if err != nil {
		return fmt.Errorf("set carrier status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCarrierNotFound
	}
	return nil
}

// SetVendorStatus enciende o apaga un vendor.
func (r *CarrierRepo) SetVendorStatus(vendorEntryID string, status bool) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE allowed_vendors SET status = $2 WHERE id = $1`, vendorEntryID, status)
	if err != nil {
		return fmt.Errorf("set vendor status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVendorNotFound
	}
	return nil
}

// ReplaceForOwner reemplaza la allowlist completa del dueño: borra las filas
// actuales (los vendors caen por cascada) e inserta las nuevas.
func (r *CarrierRepo) ReplaceForOwner(owner entity.OwnerRef, entries []*entity.CarrierEntry) error {
	clause, args := ownerClause(owner, 1)
	if _, err := r.q.Exec(context.Background(),
		fmt.Sprintf(`DELETE FROM allowed_carriers WHERE %s`, clause), args...); err != nil {
		return fmt.Errorf("clear carriers: %w", err)
	}
	for _, e := range entries {
		if err := r.AddCarrier(e); err != nil {
			return err
		}
	}
	return nil
}
