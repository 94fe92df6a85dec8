package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
)

var _ repository.AdminRepository = (*AdminRepo)(nil)

// AdminRepo implementación del puerto AdminRepository sobre PostgreSQL.
type AdminRepo struct {
	q Querier
}

// NewAdminRepository construye el adaptador de persistencia para admins.
func NewAdminRepository(q Querier) *AdminRepo {
	return &AdminRepo{q: q}
}

func scanAdmin(row pgx.Row) (*entity.Admin, error) {
	var a entity.Admin
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Create persiste un admin nuevo.
func (r *AdminRepo) Create(a *entity.Admin) error {
	query := `
		INSERT INTO admins (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.Name, strings.ToLower(a.Email), a.PasswordHash, a.Role, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetByID obtiene un admin por ID.
func (r *AdminRepo) GetByID(id string) (*entity.Admin, error) {
	a, err := scanAdmin(r.q.QueryRow(context.Background(),
		`SELECT id, name, email, password_hash, role, created_at, updated_at FROM admins WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get admin by id: %w", err)
	}
	return a, nil
}

// GetByEmail obtiene un admin por email.
func (r *AdminRepo) GetByEmail(email string) (*entity.Admin, error) {
	a, err := scanAdmin(r.q.QueryRow(context.Background(),
		`SELECT id, name, email, password_hash, role, created_at, updated_at FROM admins WHERE email = $1 LIMIT 1`,
		strings.ToLower(email)))
	if err != nil {
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return a, nil
}
