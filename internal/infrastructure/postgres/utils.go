package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullable convierte cadena vacía a NULL (columnas sub_user_id, bulk_event_id).
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// fromNullable convierte un *string escaneado a cadena (NULL -> "").
func fromNullable(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
