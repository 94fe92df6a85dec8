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

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implementación del puerto HistoryRepository sobre PostgreSQL.
// Cubre las tres colecciones append-only: balance_history, labels y
// bulk_events. sub_user_id NULL identifica a la cuenta top-level.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador de persistencia de historiales.
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// ownerClause arma el filtro WHERE por dueño a partir de los placeholders
// base+1 y base+2. Para top-level el sub_user_id debe ser NULL, no vacío.
func ownerClause(owner entity.OwnerRef, base int) (string, []any) {
	if owner.IsSubUser() {
		return fmt.Sprintf("account_id = $%d AND sub_user_id = $%d", base, base+1),
			[]any{owner.AccountID, owner.SubUserID}
	}
	return fmt.Sprintf("account_id = $%d AND sub_user_id IS NULL", base),
		[]any{owner.AccountID}
}

// AppendBalanceEntry inserta una entrada del historial de saldo.
func (r *HistoryRepo) AppendBalanceEntry(e *entity.BalanceEntry) error {
	query := `
		INSERT INTO balance_history (id, account_id, sub_user_id, previous_balance, new_balance,
			total_deposit, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.AccountID, nullable(e.SubUserID), e.PreviousBalance, e.NewBalance,
		e.TotalDeposit, e.Status, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert balance entry: %w", err)
	}
	return nil
}

// ListBalanceEntries lista el historial de saldo del dueño, más reciente primero.
func (r *HistoryRepo) ListBalanceEntries(owner entity.OwnerRef, limit, offset int) ([]*entity.BalanceEntry, error) {
	clause, args := ownerClause(owner, 1)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, account_id, COALESCE(sub_user_id, ''), previous_balance, new_balance, total_deposit, status, updated_at
		FROM balance_history WHERE %s
		ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balance entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.BalanceEntry
	for rows.Next() {
		var e entity.BalanceEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.SubUserID, &e.PreviousBalance, &e.NewBalance,
			&e.TotalDeposit, &e.Status, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// SetBalanceEntryStatus actualiza el status (paid/unpaid) de una entrada.
// El account_id en el WHERE evita cruzar entradas de otra cuenta.
func (r *HistoryRepo) SetBalanceEntryStatus(accountID, entryID, status string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE balance_history SET status = $3 WHERE account_id = $1 AND id = $2`,
		accountID, entryID, status)
	if err != nil {
		return fmt.Errorf("set balance entry status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateBulkEvent inserta el registro de una emisión masiva.
func (r *HistoryRepo) CreateBulkEvent(ev *entity.BulkEvent) error {
	query := `
		INSERT INTO bulk_events (id, account_id, sub_user_id, label_count, generated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		ev.ID, ev.AccountID, nullable(ev.SubUserID), ev.LabelCount, ev.GeneratedAt)
	if err != nil {
		return fmt.Errorf("insert bulk event: %w", err)
	}
	return nil
}

const labelColumns = `id, account_id, COALESCE(sub_user_id, ''), COALESCE(bulk_event_id, ''), tracking_number,
		carrier, vendor, label_type, weight,
		sender_name, sender_address, sender_city, sender_state, sender_zip,
		recipient_name, recipient_address, recipient_city, recipient_state, recipient_zip,
		barcode, generated_at`

func scanLabelRows(rows pgx.Rows) ([]*entity.Label, error) {
	defer rows.Close()
	var list []*entity.Label
	for rows.Next() {
		var l entity.Label
		if err := rows.Scan(
			&l.ID, &l.AccountID, &l.SubUserID, &l.BulkEventID, &l.TrackingNumber,
			&l.Carrier, &l.Vendor, &l.LabelType, &l.Weight,
			&l.SenderName, &l.SenderAddress, &l.SenderCity, &l.SenderState, &l.SenderZip,
			&l.RecipientName, &l.RecipientAddress, &l.RecipientCity, &l.RecipientState, &l.RecipientZip,
			&l.Barcode, &l.GeneratedAt,
		); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// AppendLabel inserta una etiqueta emitida.
func (r *HistoryRepo) AppendLabel(l *entity.Label) error {
	query := `
		INSERT INTO labels (id, account_id, sub_user_id, bulk_event_id, tracking_number,
			carrier, vendor, label_type, weight,
			sender_name, sender_address, sender_city, sender_state, sender_zip,
			recipient_name, recipient_address, recipient_city, recipient_state, recipient_zip,
			barcode, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.AccountID, nullable(l.SubUserID), nullable(l.BulkEventID), l.TrackingNumber,
		l.Carrier, l.Vendor, l.LabelType, l.Weight,
		l.SenderName, l.SenderAddress, l.SenderCity, l.SenderState, l.SenderZip,
		l.RecipientName, l.RecipientAddress, l.RecipientCity, l.RecipientState, l.RecipientZip,
		l.Barcode, l.GeneratedAt)
	if err != nil {
		return fmt.Errorf("insert label: %w", err)
	}
	return nil
}

// ListLabels devuelve el historial individual del dueño: solo etiquetas que
// no pertenecen a un evento bulk.
func (r *HistoryRepo) ListLabels(owner entity.OwnerRef) ([]*entity.Label, error) {
	clause, args := ownerClause(owner, 1)
	query := fmt.Sprintf(`
		SELECT %s FROM labels
		WHERE %s AND bulk_event_id IS NULL
		ORDER BY generated_at DESC`, labelColumns, clause)
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return scanLabelRows(rows)
}

// ListBulkEvents lista los eventos bulk del dueño, más recientes primero.
func (r *HistoryRepo) ListBulkEvents(owner entity.OwnerRef) ([]*entity.BulkEvent, error) {
	clause, args := ownerClause(owner, 1)
	query := fmt.Sprintf(`
		SELECT id, account_id, COALESCE(sub_user_id, ''), label_count, generated_at
		FROM bulk_events WHERE %s
		ORDER BY generated_at DESC`, clause)
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bulk events: %w", err)
	}
	defer rows.Close()
	var list []*entity.BulkEvent
	for rows.Next() {
		var ev entity.BulkEvent
		if err := rows.Scan(&ev.ID, &ev.AccountID, &ev.SubUserID, &ev.LabelCount, &ev.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan bulk event: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}

// GetBulkEvent obtiene un evento bulk verificando que pertenezca al dueño.
func (r *HistoryRepo) GetBulkEvent(owner entity.OwnerRef, eventID string) (*entity.BulkEvent, error) {
	clause, args := ownerClause(owner, 2)
	args = append([]any{eventID}, args...)
	query := fmt.Sprintf(`
		SELECT id, account_id, COALESCE(sub_user_id, ''), label_count, generated_at
		FROM bulk_events WHERE id = $1 AND %s`, clause)
	var ev entity.BulkEvent
	err := r.q.QueryRow(context.Background(), query, args...).
		Scan(&ev.ID, &ev.AccountID, &ev.SubUserID, &ev.LabelCount, &ev.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bulk event: %w", err)
	}
	return &ev, nil
}

// ListLabelsByBulkEvent devuelve las etiquetas de un evento bulk en orden
// de emisión.
func (r *HistoryRepo) ListLabelsByBulkEvent(eventID string) ([]*entity.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels WHERE bulk_event_id = $1 ORDER BY generated_at ASC`
	rows, err := r.q.Query(context.Background(), query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list labels by bulk event: %w", err)
	}
	return scanLabelRows(rows)
}
