package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
)

var _ repository.SubUserRepository = (*SubUserRepo)(nil)

// SubUserRepo implementación del puerto SubUserRepository sobre PostgreSQL.
// Toda consulta filtra por dealer_id: los sub-usuarios no tienen lookup global.
type SubUserRepo struct {
	q Querier
}

// NewSubUserRepository construye el adaptador de persistencia para sub-usuarios.
func NewSubUserRepository(q Querier) *SubUserRepo {
	return &SubUserRepo{q: q}
}

const subUserColumns = `id, dealer_id, name, email, password_hash,
		available_balance, rate, total_deposit, total_generated_labels, created_at, updated_at`

func scanSubUser(row pgx.Row) (*entity.SubUser, error) {
	var su entity.SubUser
	err := row.Scan(
		&su.ID, &su.DealerID, &su.Name, &su.Email, &su.PasswordHash,
		&su.AvailableBalance, &su.Rate, &su.TotalDeposit, &su.TotalGeneratedLabels, &su.CreatedAt, &su.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &su, nil
}

// Create persiste un sub-usuario. El email es único dentro del dealer
// (constraint UNIQUE(dealer_id, email)).
func (r *SubUserRepo) Create(su *entity.SubUser) error {
	query := `
		INSERT INTO sub_users (id, dealer_id, name, email, password_hash,
			available_balance, rate, total_deposit, total_generated_labels, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		su.ID, su.DealerID, su.Name, strings.ToLower(su.Email), su.PasswordHash,
		su.AvailableBalance, su.Rate, su.TotalDeposit, su.TotalGeneratedLabels, su.CreatedAt, su.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert sub user: %w", err)
	}
	return nil
}

// GetByID obtiene un sub-usuario acotado a su dealer padre.
func (r *SubUserRepo) GetByID(dealerID, subUserID string) (*entity.SubUser, error) {
	su, err := scanSubUser(r.q.QueryRow(context.Background(),
		`SELECT `+subUserColumns+` FROM sub_users WHERE dealer_id = $1 AND id = $2`, dealerID, subUserID))
	if err != nil {
		return nil, fmt.Errorf("get sub user by id: %w", err)
	}
	return su, nil
}

// GetByIDForUpdate obtiene y bloquea la fila del sub-usuario (SELECT FOR UPDATE).
func (r *SubUserRepo) GetByIDForUpdate(dealerID, subUserID string) (*entity.SubUser, error) {
	su, err := scanSubUser(r.q.QueryRow(context.Background(),
		`SELECT `+subUserColumns+` FROM sub_users WHERE dealer_id = $1 AND id = $2 FOR UPDATE`, dealerID, subUserID))
	if err != nil {
		return nil, fmt.Errorf("get sub user for update: %w", err)
	}
	return su, nil
}

// GetByEmail busca por email dentro del dealer dado.
func (r *SubUserRepo) GetByEmail(dealerID, email string) (*entity.SubUser, error) {
	su, err := scanSubUser(r.q.QueryRow(context.Background(),
		`SELECT `+subUserColumns+` FROM sub_users WHERE dealer_id = $1 AND email = $2 LIMIT 1`,
		dealerID, strings.ToLower(email)))
	if err != nil {
		return nil, fmt.Errorf("get sub user by email: %w", err)
	}
	return su, nil
}

// ListByDealer lista los sub-usuarios de un dealer con paginación.
func (r *SubUserRepo) ListByDealer(dealerID string, limit, offset int) ([]*entity.SubUser, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+subUserColumns+` FROM sub_users WHERE dealer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		dealerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sub users: %w", err)
	}
	defer rows.Close()
	var list []*entity.SubUser
	for rows.Next() {
		var su entity.SubUser
		if err := rows.Scan(
			&su.ID, &su.DealerID, &su.Name, &su.Email, &su.PasswordHash,
			&su.AvailableBalance, &su.Rate, &su.TotalDeposit, &su.TotalGeneratedLabels, &su.CreatedAt, &su.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sub user: %w", err)
		}
		list = append(list, &su)
	}
	return list, rows.Err()
}

// UpdateLedger persiste los campos contables del sub-usuario.
func (r *SubUserRepo) UpdateLedger(su *entity.SubUser) error {
	query := `
		UPDATE sub_users
		SET available_balance = $3, total_deposit = $4, total_generated_labels = $5, updated_at = $6
		WHERE dealer_id = $1 AND id = $2`
	_, err := r.q.Exec(context.Background(), query,
		su.DealerID, su.ID, su.AvailableBalance, su.TotalDeposit, su.TotalGeneratedLabels, su.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sub user ledger: %w", err)
	}
	return nil
}

// SetRate fija el costo por etiqueta del sub-usuario.
func (r *SubUserRepo) SetRate(dealerID, subUserID string, rate decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE sub_users SET rate = $3, updated_at = now() WHERE dealer_id = $1 AND id = $2`,
		dealerID, subUserID, rate)
	if err != nil {
		return fmt.Errorf("set sub user rate: %w", err)
	}
	return nil
}

// Delete elimina el sub-usuario; historiales y allowlists caen por cascada.
func (r *SubUserRepo) Delete(dealerID, subUserID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM sub_users WHERE dealer_id = $1 AND id = $2`, dealerID, subUserID)
	if err != nil {
		return fmt.Errorf("delete sub user: %w", err)
	}
	return nil
}
