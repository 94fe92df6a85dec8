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

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo implementación del puerto AccountRepository sobre PostgreSQL.
// Usable con pool o tx (Querier).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador de persistencia para cuentas.
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

const accountColumns = `id, name, email, password_hash, is_dealer, is_blocked, is_logged_in, last_device,
		available_balance, rate, total_deposit, total_generated_labels, created_at, updated_at`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var a entity.Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsDealer, &a.IsBlocked, &a.IsLoggedIn, &a.LastDevice,
		&a.AvailableBalance, &a.Rate, &a.TotalDeposit, &a.TotalGeneratedLabels, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Create persiste una cuenta nueva. El email se almacena en minúsculas.
func (r *AccountRepo) Create(a *entity.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, is_dealer, is_blocked, is_logged_in, last_device,
			available_balance, rate, total_deposit, total_generated_labels, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.Name, strings.ToLower(a.Email), a.PasswordHash, a.IsDealer, a.IsBlocked, a.IsLoggedIn, a.LastDevice,
		a.AvailableBalance, a.Rate, a.TotalDeposit, a.TotalGeneratedLabels, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por ID.
func (r *AccountRepo) GetByID(id string) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByEmail obtiene una cuenta por email (case-insensitive: se guarda en minúsculas).
func (r *AccountRepo) GetByEmail(email string) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1 LIMIT 1`, strings.ToLower(email)))
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// GetByIDForUpdate obtiene la cuenta y bloquea la fila (SELECT FOR UPDATE).
func (r *AccountRepo) GetByIDForUpdate(id string) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// List lista cuentas con paginación, más recientes primero.
func (r *AccountRepo) List(limit, offset int) ([]*entity.Account, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Account
	for rows.Next() {
		var a entity.Account
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsDealer, &a.IsBlocked, &a.IsLoggedIn, &a.LastDevice,
			&a.AvailableBalance, &a.Rate, &a.TotalDeposit, &a.TotalGeneratedLabels, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// UpdateLedger persiste los campos contables de la cuenta.
func (r *AccountRepo) UpdateLedger(a *entity.Account) error {
	query := `
		UPDATE accounts
		SET available_balance = $2, total_deposit = $3, total_generated_labels = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.AvailableBalance, a.TotalDeposit, a.TotalGeneratedLabels, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update account ledger: %w", err)
	}
	return nil
}

// SetBlocked bloquea o desbloquea la cuenta.
func (r *AccountRepo) SetBlocked(id string, blocked bool) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE accounts SET is_blocked = $2, updated_at = now() WHERE id = $1`, id, blocked)
	if err != nil {
		return fmt.Errorf("set account blocked: %w", err)
	}
	return nil
}

// SetDealer marca o desmarca la cuenta como dealer.
func (r *AccountRepo) SetDealer(id string, isDealer bool) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE accounts SET is_dealer = $2, updated_at = now() WHERE id = $1`, id, isDealer)
	if err != nil {
		return fmt.Errorf("set account dealer: %w", err)
	}
	return nil
}

// SetRate fija el costo por etiqueta.
func (r *AccountRepo) SetRate(id string, rate decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE accounts SET rate = $2, updated_at = now() WHERE id = $1`, id, rate)
	if err != nil {
		return fmt.Errorf("set account rate: %w", err)
	}
	return nil
}

// SetLoggedIn marca la sesión y el último dispositivo.
func (r *AccountRepo) SetLoggedIn(id string, loggedIn bool, lastDevice string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE accounts SET is_logged_in = $2, last_device = COALESCE(NULLIF($3, ''), last_device), updated_at = now() WHERE id = $1`,
		id, loggedIn, lastDevice)
	if err != nil {
		return fmt.Errorf("set account logged in: %w", err)
	}
	return nil
}

// Delete elimina la cuenta; las FKs con ON DELETE CASCADE arrastran
// sub-usuarios, historiales y allowlists.
func (r *AccountRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
