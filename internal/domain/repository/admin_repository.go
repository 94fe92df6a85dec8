package repository

import "github.com/labelhub/labelhub-api/internal/domain/entity"

// AdminRepository persiste identidades admin (colección separada de Account).
type AdminRepository interface {
	Create(a *entity.Admin) error
	GetByID(id string) (*entity.Admin, error)
	GetByEmail(email string) (*entity.Admin, error)
}
