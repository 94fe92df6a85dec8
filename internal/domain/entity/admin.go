package entity

import "time"

// RoleAdmin es el único rol válido para Admin.
const RoleAdmin = "admin"

// Admin es una identidad separada de Account; se registra y autentica de
// forma independiente.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
